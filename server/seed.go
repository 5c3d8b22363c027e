package server

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/openjobs/go-jobboard/companies"
	"github.com/openjobs/go-jobboard/jobs"
	"github.com/openjobs/go-jobboard/users"
)

// seedFile is the YAML fixture layout the development server can preload:
// employer accounts, their companies, and open postings.
type seedFile struct {
	Users []struct {
		Email     string `yaml:"email"`
		Password  string `yaml:"password"`
		FirstName string `yaml:"firstName"`
		LastName  string `yaml:"lastName"`
		Role      string `yaml:"role"`
	} `yaml:"users"`
	Companies []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Website     string `yaml:"website"`
		Location    string `yaml:"location"`
		Industry    string `yaml:"industry"`
		OwnerEmail  string `yaml:"ownerEmail"`
	} `yaml:"companies"`
	Jobs []struct {
		Title           string   `yaml:"title"`
		Description     string   `yaml:"description"`
		Location        string   `yaml:"location"`
		JobType         string   `yaml:"jobType"`
		ExperienceLevel string   `yaml:"experienceLevel"`
		SalaryMin       float64  `yaml:"salaryMin"`
		SalaryMax       float64  `yaml:"salaryMax"`
		Company         string   `yaml:"company"`
		Skills          []string `yaml:"skills"`
	} `yaml:"jobs"`
}

func (s *Server) loadSeed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "[Server.loadSeed] os.ReadFile")
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "[Server.loadSeed] yaml.Unmarshal")
	}

	for _, u := range seed.Users {
		passwordHash, err := users.HashPassword(u.Password)
		if err != nil {
			return errors.Wrapf(err, "[Server.loadSeed] hashing password for %s", u.Email)
		}
		role := users.RoleType(u.Role)
		if role == "" {
			role = users.RoleUser
		}
		if err := s.store.CreateUser(&users.User{
			Email:        u.Email,
			PasswordHash: passwordHash,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			Role:         role,
		}); err != nil {
			return errors.Wrapf(err, "[Server.loadSeed] user %s", u.Email)
		}
	}

	companiesByName := map[string]*companies.Company{}
	for _, c := range seed.Companies {
		owner, err := s.store.GetUserByEmail(c.OwnerEmail)
		if err != nil {
			return errors.Wrapf(err, "[Server.loadSeed] owner %s for company %s", c.OwnerEmail, c.Name)
		}
		company := &companies.Company{
			Name:        c.Name,
			Description: c.Description,
			Website:     c.Website,
			Location:    c.Location,
			Industry:    c.Industry,
			OwnerID:     owner.ID,
		}
		s.store.CreateCompany(company)
		companiesByName[c.Name] = company
	}

	for _, j := range seed.Jobs {
		company, ok := companiesByName[j.Company]
		if !ok {
			return errors.Errorf("[Server.loadSeed] job %q references unknown company %q", j.Title, j.Company)
		}
		skills := make([]users.Skill, 0, len(j.Skills))
		for _, name := range j.Skills {
			skills = append(skills, *s.store.GetOrCreateSkill(name))
		}
		s.store.CreateJob(&jobs.Job{
			Title:           j.Title,
			Description:     j.Description,
			Location:        j.Location,
			JobType:         j.JobType,
			ExperienceLevel: j.ExperienceLevel,
			SalaryMin:       j.SalaryMin,
			SalaryMax:       j.SalaryMax,
			Company:         company,
			Skills:          skills,
		})
	}

	log.Info().
		Int("users", len(seed.Users)).
		Int("companies", len(seed.Companies)).
		Int("jobs", len(seed.Jobs)).
		Msg("seed data loaded")
	return nil
}
