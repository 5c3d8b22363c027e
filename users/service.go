package users

import (
	"context"

	"github.com/pkg/errors"

	"github.com/openjobs/go-jobboard/transport"
)

// Service wraps the profile endpoints. Every call requires a logged-in
// session; the transport handles token attachment and silent refresh.
type Service struct {
	client *transport.Client
}

func NewService(client *transport.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[users.NewService] transport client is required")
	}
	return &Service{client: client}, nil
}

// Profile returns the current user's full profile.
func (s *Service) Profile(ctx context.Context) (*User, error) {
	var user User
	if err := s.client.Get(ctx, "/users/profile", &user); err != nil {
		return nil, errors.Wrap(err, "[Service.Profile]")
	}
	return &user, nil
}

// UpdateProfile replaces the editable profile fields and returns the stored
// profile.
func (s *Service) UpdateProfile(ctx context.Context, profile User) (*User, error) {
	var updated User
	if err := s.client.Put(ctx, "/users/profile", profile, &updated); err != nil {
		return nil, errors.Wrap(err, "[Service.UpdateProfile]")
	}
	return &updated, nil
}

func (s *Service) AddEducation(ctx context.Context, education Education) (*Education, error) {
	var created Education
	if err := s.client.Post(ctx, "/users/education", education, &created); err != nil {
		return nil, errors.Wrap(err, "[Service.AddEducation]")
	}
	return &created, nil
}

func (s *Service) UpdateEducation(ctx context.Context, id string, education Education) (*Education, error) {
	var updated Education
	if err := s.client.Put(ctx, "/users/education/"+id, education, &updated); err != nil {
		return nil, errors.Wrap(err, "[Service.UpdateEducation]")
	}
	return &updated, nil
}

func (s *Service) DeleteEducation(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, "/users/education/"+id, nil); err != nil {
		return errors.Wrap(err, "[Service.DeleteEducation]")
	}
	return nil
}

func (s *Service) AddExperience(ctx context.Context, experience Experience) (*Experience, error) {
	var created Experience
	if err := s.client.Post(ctx, "/users/experience", experience, &created); err != nil {
		return nil, errors.Wrap(err, "[Service.AddExperience]")
	}
	return &created, nil
}

func (s *Service) UpdateExperience(ctx context.Context, id string, experience Experience) (*Experience, error) {
	var updated Experience
	if err := s.client.Put(ctx, "/users/experience/"+id, experience, &updated); err != nil {
		return nil, errors.Wrap(err, "[Service.UpdateExperience]")
	}
	return &updated, nil
}

func (s *Service) DeleteExperience(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, "/users/experience/"+id, nil); err != nil {
		return errors.Wrap(err, "[Service.DeleteExperience]")
	}
	return nil
}

// AddSkill attaches a skill by name, creating it server-side if new.
func (s *Service) AddSkill(ctx context.Context, name string) (*Skill, error) {
	body := struct {
		Name string `json:"name"`
	}{Name: name}
	var created Skill
	if err := s.client.Post(ctx, "/users/skills", body, &created); err != nil {
		return nil, errors.Wrap(err, "[Service.AddSkill]")
	}
	return &created, nil
}

func (s *Service) RemoveSkill(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, "/users/skills/"+id, nil); err != nil {
		return errors.Wrap(err, "[Service.RemoveSkill]")
	}
	return nil
}
