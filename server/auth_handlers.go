package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/openjobs/go-jobboard/internal/errors"
	"github.com/openjobs/go-jobboard/users"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email     string         `json:"email"`
	Password  string         `json:"password"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Role      users.RoleType `json:"role"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// authResponse is the token-pair-plus-user body returned by login and
// registration. Refresh responses reuse it without the user.
type authResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	User         *users.User `json:"user,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.store.GetUserByEmail(req.Email)
	if err != nil || !users.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		log.Error().Err(err).Msg("issuing tokens at login")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.FirstName == "" || req.LastName == "" {
		writeError(w, http.StatusBadRequest, "email, first name and last name are required")
		return
	}
	if err := users.ValidatePasswordStrength(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	role := req.Role
	if role == "" {
		role = users.RoleUser
	}

	passwordHash, err := users.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user := &users.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
	}
	if err := s.store.CreateUser(user); err != nil {
		if apperrors.Is(err, apperrors.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "email already registered")
			return
		}
		writeDomainError(w, err)
		return
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		log.Error().Err(err).Msg("issuing tokens at registration")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleRefreshToken exchanges a valid refresh token for a new access token.
// The refresh token is rotated: the old one is invalidated and the new one
// returned alongside the access token.
func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh token required")
		return
	}

	session, err := s.store.GetSessionByToken(req.RefreshToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	user, err := s.store.GetUserByID(session.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unknown user")
		return
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		log.Error().Err(err).Msg("issuing tokens at refresh")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	resp.User = nil
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

// issueTokens mints an access token and rotates the user's refresh session.
func (s *Server) issueTokens(user *users.User) (*authResponse, error) {
	accessToken, err := generateAccessToken(user.ID, string(user.Role), s.config.GetJWTSecret(), s.config.GetAccessTokenExpiry())
	if err != nil {
		return nil, err
	}

	refreshToken, err := generateRefreshToken(s.config.GetRefreshTokenLength())
	if err != nil {
		return nil, err
	}

	s.store.CreateSession(&refreshSession{
		TokenHash: hashRefreshToken(refreshToken),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.config.GetRefreshTokenExpiry()),
	})

	return &authResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}
