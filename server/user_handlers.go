package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/openjobs/go-jobboard/users"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var incoming users.User
	if err := decodeJSON(r, &incoming); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.store.UpdateUser(currentUser(r).ID, func(user *users.User) {
		user.FirstName = incoming.FirstName
		user.LastName = incoming.LastName
		user.Headline = incoming.Headline
		user.About = incoming.About
		user.Location = incoming.Location
		user.ProfilePicture = incoming.ProfilePicture
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleAddEducation(w http.ResponseWriter, r *http.Request) {
	var education users.Education
	if err := decodeJSON(r, &education); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	education.ID = uuid.New().String()

	if _, err := s.store.UpdateUser(currentUser(r).ID, func(user *users.User) {
		user.Educations = append(user.Educations, education)
	}); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, education)
}

func (s *Server) handleUpdateEducation(w http.ResponseWriter, r *http.Request) {
	var incoming users.Education
	if err := decodeJSON(r, &incoming); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	found := false
	if _, err := s.store.UpdateUser(currentUser(r).ID, func(user *users.User) {
		for i := range user.Educations {
			if user.Educations[i].ID == id {
				incoming.ID = id
				user.Educations[i] = incoming
				found = true
				return
			}
		}
	}); err != nil {
		writeDomainError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "education entry not found")
		return
	}
	writeJSON(w, http.StatusOK, incoming)
}

func (s *Server) handleDeleteEducation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.UpdateUser(currentUser(r).ID, func(user *users.User) {
		for i := range user.Educations {
			if user.Educations[i].ID == id {
				user.Educations = append(user.Educations[:i], user.Educations[i+1:]...)
				return
			}
		}
	}); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddExperience(w http.ResponseWriter, r *http.Request) {
	var experience users.Experience
	if err := decodeJSON(r, &experience); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	experience.ID = uuid.New().String()

	if _, err := s.store.UpdateUser(currentUser(r).ID, func(user *users.User) {
		user.Experiences = append(user.Experiences, experience)
	}); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, experience)
}

func (s *Server) handleUpdateExperience(w http.ResponseWriter, r *http.Request) {
	var incoming users.Experience
	if err := decodeJSON(r, &incoming); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	found := false
	if _, err := s.store.UpdateUser(currentUser(r).ID, func(user *users.User) {
		for i := range user.Experiences {
			if user.Experiences[i].ID == id {
				incoming.ID = id
				user.Experiences[i] = incoming
				found = true
				return
			}
		}
	}); err != nil {
		writeDomainError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "experience entry not found")
		return
	}
	writeJSON(w, http.StatusOK, incoming)
}

func (s *Server) handleDeleteExperience(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.UpdateUser(currentUser(r).ID, func(user *users.User) {
		for i := range user.Experiences {
			if user.Experiences[i].ID == id {
				user.Experiences = append(user.Experiences[:i], user.Experiences[i+1:]...)
				return
			}
		}
	}); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddSkill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "skill name required")
		return
	}

	skill := s.store.GetOrCreateSkill(req.Name)
	if _, err := s.store.UpdateUser(currentUser(r).ID, func(user *users.User) {
		for _, existing := range user.Skills {
			if existing.ID == skill.ID {
				return
			}
		}
		user.Skills = append(user.Skills, *skill)
	}); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, skill)
}

func (s *Server) handleRemoveSkill(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.UpdateUser(currentUser(r).ID, func(user *users.User) {
		for i := range user.Skills {
			if user.Skills[i].ID == id {
				user.Skills = append(user.Skills[:i], user.Skills[i+1:]...)
				return
			}
		}
	}); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
