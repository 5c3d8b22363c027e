package jobs

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/openjobs/go-jobboard/transport"
)

// Service is the thin wrapper around the job endpoints. All calls go through
// the authenticated transport; unauthenticated search and detail lookups work
// the same way, just without a bearer token attached.
type Service struct {
	client *transport.Client
}

func NewService(client *transport.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[jobs.NewService] transport client is required")
	}
	return &Service{client: client}, nil
}

// Search returns one page of active jobs matching the filters.
func (s *Service) Search(ctx context.Context, filters SearchFilters) (*Page, error) {
	params := url.Values{}
	if filters.Keyword != "" {
		params.Set("keyword", filters.Keyword)
	}
	if filters.Location != "" {
		params.Set("location", filters.Location)
	}
	for _, jt := range filters.JobTypes {
		params.Add("jobTypes", jt)
	}
	for _, lvl := range filters.ExperienceLevels {
		params.Add("experienceLevels", lvl)
	}
	for _, id := range filters.SkillIDs {
		params.Add("skillIds", id)
	}
	params.Set("page", strconv.Itoa(filters.Page))
	size := filters.Size
	if size <= 0 {
		size = 10
	}
	params.Set("size", strconv.Itoa(size))

	var page Page
	if err := s.client.Get(ctx, "/jobs?"+params.Encode(), &page); err != nil {
		return nil, errors.Wrap(err, "[Service.Search]")
	}
	return &page, nil
}

// Get returns one job by ID.
func (s *Service) Get(ctx context.Context, id string) (*Job, error) {
	var job Job
	if err := s.client.Get(ctx, "/jobs/"+id, &job); err != nil {
		return nil, errors.Wrap(err, "[Service.Get]")
	}
	return &job, nil
}

// Create posts a new job. Employer accounts only.
func (s *Service) Create(ctx context.Context, job Job) (*Job, error) {
	var created Job
	if err := s.client.Post(ctx, "/jobs", job, &created); err != nil {
		return nil, errors.Wrap(err, "[Service.Create]")
	}
	return &created, nil
}

// Update replaces a job's fields. Only the owning employer may update.
func (s *Service) Update(ctx context.Context, id string, job Job) (*Job, error) {
	var updated Job
	if err := s.client.Put(ctx, "/jobs/"+id, job, &updated); err != nil {
		return nil, errors.Wrap(err, "[Service.Update]")
	}
	return &updated, nil
}

// Delete closes a job posting. Only the owning employer may delete.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, "/jobs/"+id, nil); err != nil {
		return errors.Wrap(err, "[Service.Delete]")
	}
	return nil
}

// Apply submits an application with a cover letter.
func (s *Service) Apply(ctx context.Context, jobID, coverLetter string) error {
	body := struct {
		CoverLetter string `json:"coverLetter"`
	}{CoverLetter: coverLetter}
	if err := s.client.Post(ctx, "/jobs/"+jobID+"/apply", body, nil); err != nil {
		return errors.Wrap(err, "[Service.Apply]")
	}
	return nil
}

// ByCompany lists a company's postings, including closed ones.
func (s *Service) ByCompany(ctx context.Context, companyID string) ([]Job, error) {
	var listed []Job
	if err := s.client.Get(ctx, "/companies/"+companyID+"/jobs", &listed); err != nil {
		return nil, errors.Wrap(err, "[Service.ByCompany]")
	}
	return listed, nil
}

// SavedJobs lists the jobs the current user has saved.
func (s *Service) SavedJobs(ctx context.Context) ([]Job, error) {
	var saved []Job
	if err := s.client.Get(ctx, "/users/saved-jobs", &saved); err != nil {
		return nil, errors.Wrap(err, "[Service.SavedJobs]")
	}
	return saved, nil
}

// Applications lists the current user's applications.
func (s *Service) Applications(ctx context.Context) ([]Application, error) {
	var apps []Application
	if err := s.client.Get(ctx, "/users/applications", &apps); err != nil {
		return nil, errors.Wrap(err, "[Service.Applications]")
	}
	return apps, nil
}
