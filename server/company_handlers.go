package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openjobs/go-jobboard/companies"
	"github.com/openjobs/go-jobboard/jobs"
)

const maxLogoSize = 5 << 20 // 5 MiB

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	company, err := s.store.GetCompany(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var company companies.Company
	if err := decodeJSON(r, &company); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if company.Name == "" {
		writeError(w, http.StatusBadRequest, "company name is required")
		return
	}

	company.OwnerID = currentUser(r).ID
	s.store.CreateCompany(&company)
	writeJSON(w, http.StatusOK, company)
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	var incoming companies.Company
	if err := decodeJSON(r, &incoming); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	if !s.ownsCompany(r, id) {
		writeError(w, http.StatusForbidden, "not the company owner")
		return
	}

	updated, err := s.store.UpdateCompany(id, func(company *companies.Company) {
		company.Name = incoming.Name
		company.Description = incoming.Description
		company.Website = incoming.Website
		company.Location = incoming.Location
		company.Industry = incoming.Industry
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleCompanyJobs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetCompany(id); err != nil {
		writeDomainError(w, err)
		return
	}
	listed := s.store.JobsByCompany(id)
	if listed == nil {
		listed = []jobs.Job{}
	}
	writeJSON(w, http.StatusOK, listed)
}

// handleUploadLogo accepts a multipart logo upload. The development server
// does not persist blobs; it records a pseudo-URL derived from the filename.
func (s *Server) handleUploadLogo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.ownsCompany(r, id) {
		writeError(w, http.StatusForbidden, "not the company owner")
		return
	}

	if err := r.ParseMultipartForm(maxLogoSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "logo file required")
		return
	}
	defer file.Close()

	updated, err := s.store.UpdateCompany(id, func(company *companies.Company) {
		company.LogoURL = fmt.Sprintf("/static/logos/%s-%s", id, header.Filename)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) ownsCompany(r *http.Request, companyID string) bool {
	company, err := s.store.GetCompany(companyID)
	if err != nil {
		return false
	}
	return company.OwnerID == currentUser(r).ID
}
