package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/openjobs/go-jobboard/users"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// requireAuth verifies the bearer token and loads the current user into the
// request context. Missing, malformed and expired tokens are all a 401; the
// client's refresh protocol depends on that status.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := verifyAccessToken(strings.TrimPrefix(header, "Bearer "), s.config.GetJWTSecret())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		user, err := s.store.GetUserByID(claims.Subject)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unknown user")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireEmployer gates employer-only routes. Runs after requireAuth.
func (s *Server) requireEmployer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r).IsEmployer() {
			writeError(w, http.StatusForbidden, "employer role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request) *users.User {
	user, _ := r.Context().Value(userContextKey).(*users.User)
	return user
}
