// Package server is the development backend for the job board SDK. It
// implements the REST contract the client consumes (auth, jobs, profiles,
// companies) against an in-memory store, so the SDK and its tests have a
// real peer without a database.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/openjobs/go-jobboard/internal/config"
)

type Server struct {
	config config.Config
	store  *memStore
	router chi.Router
}

func New(cfg config.Config) (*Server, error) {
	s := &Server{
		config: cfg,
		store:  newMemStore(),
	}

	if seedFile := cfg.GetSeedFile(); seedFile != "" {
		if err := s.loadSeed(seedFile); err != nil {
			return nil, err
		}
	}

	s.initRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.GetAllowedOrigins(),
		AllowedMethods:   s.config.GetAllowedMethods(),
		AllowedHeaders:   s.config.GetAllowedHeaders(),
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/refresh-token", s.handleRefreshToken)

		r.Get("/jobs", s.handleSearchJobs)
		r.Get("/jobs/{id}", s.handleGetJob)
		r.Get("/companies/{id}", s.handleGetCompany)
		r.Get("/companies/{id}/jobs", s.handleCompanyJobs)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/auth/me", s.handleWhoAmI)

			r.With(s.requireEmployer).Post("/jobs", s.handleCreateJob)
			r.With(s.requireEmployer).Put("/jobs/{id}", s.handleUpdateJob)
			r.With(s.requireEmployer).Delete("/jobs/{id}", s.handleDeleteJob)
			r.Post("/jobs/{id}/apply", s.handleApplyForJob)
			r.Post("/jobs/{id}/save", s.handleSaveJob)
			r.Delete("/jobs/{id}/save", s.handleUnsaveJob)

			r.Get("/users/saved-jobs", s.handleSavedJobs)
			r.Get("/users/applications", s.handleApplications)
			r.Get("/users/profile", s.handleGetProfile)
			r.Put("/users/profile", s.handleUpdateProfile)
			r.Post("/users/education", s.handleAddEducation)
			r.Put("/users/education/{id}", s.handleUpdateEducation)
			r.Delete("/users/education/{id}", s.handleDeleteEducation)
			r.Post("/users/experience", s.handleAddExperience)
			r.Put("/users/experience/{id}", s.handleUpdateExperience)
			r.Delete("/users/experience/{id}", s.handleDeleteExperience)
			r.Post("/users/skills", s.handleAddSkill)
			r.Delete("/users/skills/{id}", s.handleRemoveSkill)

			r.With(s.requireEmployer).Post("/companies", s.handleCreateCompany)
			r.With(s.requireEmployer).Put("/companies/{id}", s.handleUpdateCompany)
			r.With(s.requireEmployer).Post("/companies/{id}/logo", s.handleUploadLogo)
		})
	})

	s.router = r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
