package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "github.com/openjobs/go-jobboard/internal/errors"
)

func atoiDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func decodeJSON(r *http.Request, out interface{}) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError responds with the {"message": ...} envelope the client expects.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeDomainError translates taxonomy errors into status codes, falling back
// to 500 for everything else.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case apperrors.Is(err, apperrors.ErrDuplicate):
		writeError(w, http.StatusConflict, err.Error())
	case apperrors.Is(err, apperrors.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case apperrors.Is(err, apperrors.ErrInvalidRefreshToken),
		apperrors.Is(err, apperrors.ErrRefreshTokenExpired),
		apperrors.Is(err, apperrors.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
