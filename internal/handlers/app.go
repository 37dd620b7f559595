package handlers

import (
	"errors"
	"net/http"

	"github.com/AnshRaj112/aura-backend/internal/models"
)

// GetApp returns the current screen, creating the client's controller on first sight.
// A signed-in client whose session has ended is moved to the landing page.
func (h *Handler) GetApp(w http.ResponseWriter, r *http.Request) {
	ctrl, err := h.liveController(w, r)
	if errors.Is(err, models.ErrNoUser) {
		h.ok(w, ctrl, "Your session has ended. Please sign in again.")
		return
	}
	if err != nil {
		h.fail(w, r, ctrl, err)
		return
	}
	h.ok(w, ctrl, "")
}

// RequestAuth opens the sign-in screen from the landing page.
func (h *Handler) RequestAuth(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controllerFor(w, r)
	if err := ctrl.RequestAuth(); err != nil {
		h.fail(w, r, ctrl, err)
		return
	}
	h.ok(w, ctrl, "")
}

// CancelAuth goes back to the landing page.
func (h *Handler) CancelAuth(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controllerFor(w, r)
	if err := ctrl.CancelAuth(); err != nil {
		h.fail(w, r, ctrl, err)
		return
	}
	h.ok(w, ctrl, "")
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}
