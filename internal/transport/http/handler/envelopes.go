package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taskbox-api/internal/domain"
)

// MessageEnvelope is the generic `{"message": ...}` response wrapper used for
// confirmations and for every error.
type MessageEnvelope struct {
	Message string `json:"message"`
}

// SafeUser is the client-facing projection of a user. The password hash never
// leaves the server.
type SafeUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthEnvelope wraps sign-in and registration responses.
type AuthEnvelope struct {
	Message string    `json:"message"`
	Token   string    `json:"token,omitempty"`
	User    *SafeUser `json:"user,omitempty"`
}

func toSafeUser(u *domain.User) *SafeUser {
	if u == nil {
		return nil
	}
	return &SafeUser{ID: u.UserID, Name: u.Name, Email: u.Email}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Message: msg})
}

// httpError maps domain sentinel errors to HTTP statuses. Unexpected errors
// become a 500 with the message passed through.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
