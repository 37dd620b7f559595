package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/aura-backend/internal/views"
)

// SaveEntryRequest is the editor content sent by PUT /api/entries.
type SaveEntryRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Mood    string `json:"mood,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// AnalyzeRequest is the body of POST /api/entries/analyze.
type AnalyzeRequest struct {
	Content string `json:"content"`
}

// NewEntry opens an empty editor.
func (h *Handler) NewEntry(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controllerFor(w, r)
	if err := ctrl.CreateNew(r.Context()); err != nil {
		h.fail(w, r, ctrl, err)
		return
	}
	h.ok(w, ctrl, "")
}

// EditEntry opens the editor on one of the loaded entries.
func (h *Handler) EditEntry(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controllerFor(w, r)
	if err := ctrl.EditEntryByID(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, ctrl, err)
		return
	}
	h.ok(w, ctrl, "")
}

// CancelEdit closes the editor without saving.
func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controllerFor(w, r)
	if err := ctrl.CancelEdit(); err != nil {
		h.fail(w, r, ctrl, err)
		return
	}
	h.ok(w, ctrl, "")
}

// AnalyzeEntry asks for mood, summary and advice on the editor content.
// A failing provider still answers 200 with the fallback analysis.
func (h *Handler) AnalyzeEntry(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "Invalid request body")
		return
	}

	ctrl := h.controllerFor(w, r)
	result, err := ctrl.Analyze(r.Context(), req.Content)
	if err != nil {
		h.fail(w, r, ctrl, err)
		return
	}

	screen := views.Render(ctrl.State())
	h.respond(w, http.StatusOK, AppResponse{Success: true, Screen: &screen, Analysis: &result})
}

// SaveEntry saves the editor content and returns to the dashboard.
func (h *Handler) SaveEntry(w http.ResponseWriter, r *http.Request) {
	var req SaveEntryRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "Invalid request body")
		return
	}

	ctrl := h.controllerFor(w, r)
	if err := ctrl.SaveDraft(r.Context(), req.Title, req.Content, req.Mood, req.Summary); err != nil {
		h.fail(w, r, ctrl, err)
		return
	}
	h.ok(w, ctrl, "Entry saved")
}

// DeleteEntry deletes an entry and stays on the dashboard.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controllerFor(w, r)
	if err := ctrl.DeleteEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, ctrl, err)
		return
	}
	h.ok(w, ctrl, "Entry deleted")
}

// SearchEntries filters the dashboard by the q query parameter.
func (h *Handler) SearchEntries(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controllerFor(w, r)
	if _, err := ctrl.Search(r.Context(), r.URL.Query().Get("q")); err != nil {
		h.fail(w, r, ctrl, err)
		return
	}
	h.ok(w, ctrl, "")
}
