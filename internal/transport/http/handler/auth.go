package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/taskbox-api/internal/application/auth"
	"github.com/taskbox-api/internal/transport/http/middleware"
)

// sessionCookiePath scopes the token cookie to the user routes so the
// cookie-fallback authentication and the refresh endpoint both see it.
const sessionCookiePath = "/api/user"

// AuthHandler handles verification, sign-in and token refresh endpoints.
type AuthHandler struct {
	svc        auth.Service
	sessionTTL time.Duration
}

func NewAuthHandler(svc auth.Service, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{svc: svc, sessionTTL: sessionTTL}
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Email verified successfully"})
}

func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ActivationToken string `json:"activation_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ActivationToken == "" {
		writeError(w, http.StatusBadRequest, "activation_token required")
		return
	}
	u, err := h.svc.Activate(r.Context(), req.ActivationToken)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Message: "Account has been activated!",
		User:    toSafeUser(u),
	})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	token, u, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		httpError(w, err)
		return
	}
	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Message: "Sign In successfully!",
		Token:   token,
		User:    toSafeUser(u),
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(middleware.RefreshTokenCookie)
	if err != nil || c.Value == "" {
		writeError(w, http.StatusForbidden, "Token Expired or Invalid Authentication.")
		return
	}
	token, err := h.svc.Refresh(r.Context(), c.Value)
	if err != nil {
		httpError(w, err)
		return
	}
	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, AuthEnvelope{Message: "Token refreshed", Token: token})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.RefreshTokenCookie,
		Value:    token,
		Path:     sessionCookiePath,
		HttpOnly: true,
		MaxAge:   int(h.sessionTTL.Seconds()),
		Expires:  time.Now().Add(h.sessionTTL),
		SameSite: http.SameSiteLaxMode,
	})
}
