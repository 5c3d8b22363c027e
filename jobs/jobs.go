package jobs

import (
	"time"

	"github.com/openjobs/go-jobboard/companies"
	"github.com/openjobs/go-jobboard/users"
)

// JobStatus is the lifecycle state of a posting. Deleting a job closes it
// rather than removing it, so existing applications keep their context.
type JobStatus string

const (
	StatusActive JobStatus = "ACTIVE"
	StatusClosed JobStatus = "CLOSED"
)

type Job struct {
	ID              string             `json:"id,omitempty"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Location        string             `json:"location,omitempty"`
	JobType         string             `json:"jobType,omitempty"`         // e.g. FULL_TIME, PART_TIME, CONTRACT
	ExperienceLevel string             `json:"experienceLevel,omitempty"` // e.g. ENTRY, MID, SENIOR
	SalaryMin       float64            `json:"salaryMin,omitempty"`
	SalaryMax       float64            `json:"salaryMax,omitempty"`
	Company         *companies.Company `json:"company,omitempty"`
	Status          JobStatus          `json:"status,omitempty"`
	Skills          []users.Skill      `json:"skills,omitempty"`
	CreatedAt       time.Time          `json:"createdAt,omitempty"`
	UpdatedAt       time.Time          `json:"updatedAt,omitempty"`
}

// ApplicationStatus tracks an application through review.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationReviewed ApplicationStatus = "REVIEWED"
	ApplicationRejected ApplicationStatus = "REJECTED"
	ApplicationAccepted ApplicationStatus = "ACCEPTED"
)

type Application struct {
	ID          string            `json:"id,omitempty"`
	Job         *Job              `json:"job,omitempty"`
	CoverLetter string            `json:"coverLetter,omitempty"`
	Status      ApplicationStatus `json:"status,omitempty"`
	CreatedAt   time.Time         `json:"createdAt,omitempty"`
}

// SearchFilters narrows a job search. Zero values mean "no filter"; Size
// defaults to 10 on the server.
type SearchFilters struct {
	Keyword          string
	Location         string
	JobTypes         []string
	ExperienceLevels []string
	SkillIDs         []string
	Page             int
	Size             int
}

// Page is one page of search results, in the shape the backend returns.
type Page struct {
	Content       []Job `json:"content"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int   `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}
