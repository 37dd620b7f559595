package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/aura-backend/internal/handlers"
	"github.com/AnshRaj112/aura-backend/internal/middleware"
)

type route struct {
	method  string
	pattern string
	serve   func(*handlers.Handler, http.ResponseWriter, *http.Request)
	// paid marks routes that call the analysis model.
	paid bool
}

var table = []route{
	// Screen and navigation
	{http.MethodGet, "/api/app", (*handlers.Handler).GetApp, false},
	{http.MethodPost, "/api/app/auth", (*handlers.Handler).RequestAuth, false},
	{http.MethodPost, "/api/app/auth/cancel", (*handlers.Handler).CancelAuth, false},

	// Identity
	{http.MethodPost, "/api/auth/register", (*handlers.Handler).Register, false},
	{http.MethodPost, "/api/auth/login", (*handlers.Handler).Login, false},
	{http.MethodPost, "/api/auth/logout", (*handlers.Handler).Logout, false},

	// Journal entries
	{http.MethodGet, "/api/entries", (*handlers.Handler).SearchEntries, false},
	{http.MethodPut, "/api/entries", (*handlers.Handler).SaveEntry, false},
	{http.MethodPost, "/api/entries/new", (*handlers.Handler).NewEntry, false},
	{http.MethodPost, "/api/entries/cancel", (*handlers.Handler).CancelEdit, false},
	{http.MethodPost, "/api/entries/analyze", (*handlers.Handler).AnalyzeEntry, true},
	{http.MethodPost, "/api/entries/{id}/edit", (*handlers.Handler).EditEntry, false},
	{http.MethodDelete, "/api/entries/{id}", (*handlers.Handler).DeleteEntry, false},

	// State stream
	{http.MethodGet, "/ws/state", (*handlers.Handler).StateWebSocket, false},
}

// SetupRoutes mounts every route of the table on r. sessions decides which
// analysis callers get the signed-in rate budget.
func SetupRoutes(r chi.Router, h *handlers.Handler, sessions middleware.SessionValidator) {
	limitAnalysis := middleware.AnalyzeRateLimit(handlers.SessionCookie, sessions)

	for _, rt := range table {
		serve := rt.serve
		var next http.Handler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			serve(h, w, req)
		})
		if rt.paid {
			next = limitAnalysis(next)
		}
		r.Method(rt.method, rt.pattern, next)
	}
}

// Methods returns the HTTP methods the route table serves, in table order.
func Methods() []string {
	var out []string
	seen := make(map[string]bool)
	for _, rt := range table {
		if !seen[rt.method] {
			seen[rt.method] = true
			out = append(out, rt.method)
		}
	}
	return out
}
