package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openjobs/go-jobboard/jobs"
)

func (s *Server) handleSearchJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters := jobs.SearchFilters{
		Keyword:          query.Get("keyword"),
		Location:         query.Get("location"),
		JobTypes:         query["jobTypes"],
		ExperienceLevels: query["experienceLevels"],
		SkillIDs:         query["skillIds"],
		Page:             atoiDefault(query.Get("page"), 0),
		Size:             atoiDefault(query.Get("size"), 10),
	}
	writeJSON(w, http.StatusOK, s.store.SearchJobs(filters))
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.GetJob(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var job jobs.Job
	if err := decodeJSON(r, &job); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if job.Title == "" || job.Description == "" {
		writeError(w, http.StatusBadRequest, "title and description are required")
		return
	}
	if job.Company == nil || job.Company.ID == "" {
		writeError(w, http.StatusBadRequest, "company is required")
		return
	}

	company, err := s.store.GetCompany(job.Company.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if company.OwnerID != currentUser(r).ID {
		writeError(w, http.StatusForbidden, "not the company owner")
		return
	}

	job.Company = company
	s.store.CreateJob(&job)
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	var incoming jobs.Job
	if err := decodeJSON(r, &incoming); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	jobID := chi.URLParam(r, "id")
	if !s.ownsJob(r, jobID) {
		writeError(w, http.StatusForbidden, "not the job owner")
		return
	}

	updated, err := s.store.UpdateJob(jobID, func(job *jobs.Job) {
		job.Title = incoming.Title
		job.Description = incoming.Description
		job.Location = incoming.Location
		job.JobType = incoming.JobType
		job.ExperienceLevel = incoming.ExperienceLevel
		job.SalaryMin = incoming.SalaryMin
		job.SalaryMax = incoming.SalaryMax
		job.Skills = incoming.Skills
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteJob closes the posting instead of removing it, keeping
// applications attached to a resolvable job.
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if !s.ownsJob(r, jobID) {
		writeError(w, http.StatusForbidden, "not the job owner")
		return
	}

	if _, err := s.store.UpdateJob(jobID, func(job *jobs.Job) {
		job.Status = jobs.StatusClosed
	}); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleApplyForJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CoverLetter string `json:"coverLetter"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := s.store.GetJob(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.store.CreateApplication(currentUser(r).ID, &jobs.Application{
		Job:         job,
		CoverLetter: req.CoverLetter,
	})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleSaveJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if _, err := s.store.GetJob(jobID); err != nil {
		writeDomainError(w, err)
		return
	}
	s.store.SaveJob(currentUser(r).ID, jobID)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleUnsaveJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if _, err := s.store.GetJob(jobID); err != nil {
		writeDomainError(w, err)
		return
	}
	s.store.UnsaveJob(currentUser(r).ID, jobID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSavedJobs(w http.ResponseWriter, r *http.Request) {
	saved := s.store.SavedJobsByUser(currentUser(r).ID)
	if saved == nil {
		saved = []jobs.Job{}
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleApplications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ApplicationsByUser(currentUser(r).ID))
}

func (s *Server) ownsJob(r *http.Request, jobID string) bool {
	job, err := s.store.GetJob(jobID)
	if err != nil || job.Company == nil {
		return false
	}
	company, err := s.store.GetCompany(job.Company.ID)
	if err != nil {
		return false
	}
	return company.OwnerID == currentUser(r).ID
}
