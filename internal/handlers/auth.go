package handlers

import (
	"net/http"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and lands on the dashboard.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "Invalid request body")
		return
	}

	ctrl := h.controllerFor(w, r)
	if err := ctrl.Register(r.Context(), req.Email, req.Name, req.Password); err != nil {
		h.fail(w, r, ctrl, err)
		return
	}

	h.syncSession(w, r, ctrl)
	h.ok(w, ctrl, "Account created successfully")
}

// Login signs in and lands on the dashboard.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "Invalid request body")
		return
	}

	ctrl := h.controllerFor(w, r)
	if err := ctrl.Login(r.Context(), req.Email, req.Password); err != nil {
		h.fail(w, r, ctrl, err)
		return
	}

	h.syncSession(w, r, ctrl)
	h.ok(w, ctrl, "Signed in successfully")
}

// Logout signs out. It always succeeds; provider errors are only logged.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controllerFor(w, r)
	ctrl.Logout(r.Context())

	h.syncSession(w, r, ctrl)
	h.ok(w, ctrl, "Signed out")
}
