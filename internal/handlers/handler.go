package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/AnshRaj112/aura-backend/internal/controller"
	"github.com/AnshRaj112/aura-backend/internal/logger"
	"github.com/AnshRaj112/aura-backend/internal/models"
	"github.com/AnshRaj112/aura-backend/internal/views"
)

const (
	// ClientCookie identifies the browser's view controller.
	ClientCookie = "aura_client"
	// SessionCookie carries the identity session token.
	SessionCookie = "aura_session"

	clientCookieMaxAge  = 30 * 24 * time.Hour
	sessionCookieMaxAge = 7 * 24 * time.Hour
)

// Handler serves the intents of every client against its controller.
type Handler struct {
	registry       *controller.Registry
	log            *logger.Logger
	secureCookies  bool
	allowedOrigins []string
}

// Options configures a Handler.
type Options struct {
	// SecureCookies marks cookies Secure (production, HTTPS only).
	SecureCookies bool
	// AllowedOrigins restricts WebSocket origins. Empty allows any.
	AllowedOrigins []string
}

func New(registry *controller.Registry, log *logger.Logger, opts Options) *Handler {
	return &Handler{
		registry:       registry,
		log:            log,
		secureCookies:  opts.SecureCookies,
		allowedOrigins: opts.AllowedOrigins,
	}
}

// AppResponse is the envelope of every intent: the outcome plus the screen to show next.
type AppResponse struct {
	Success  bool                   `json:"success"`
	Message  string                 `json:"message,omitempty"`
	Screen   *views.Screen          `json:"screen,omitempty"`
	Analysis *models.AnalysisResult `json:"analysis,omitempty"`
}

// controllerFor returns the caller's controller, issuing a client cookie on first visit.
func (h *Handler) controllerFor(w http.ResponseWriter, r *http.Request) *controller.Controller {
	ctrl, _ := h.clientController(w, r)
	return ctrl
}

// liveController is controllerFor for requests that only read the screen:
// an existing controller has its session rechecked first, so a browser whose
// session ended sees the landing page instead of cached entries.
func (h *Handler) liveController(w http.ResponseWriter, r *http.Request) (*controller.Controller, error) {
	ctrl, created := h.clientController(w, r)
	if created {
		return ctrl, nil
	}
	err := ctrl.Revalidate(r.Context())
	h.syncSession(w, r, ctrl)
	return ctrl, err
}

func (h *Handler) clientController(w http.ResponseWriter, r *http.Request) (*controller.Controller, bool) {
	clientID := ""
	if c, err := r.Cookie(ClientCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			clientID = c.Value
		}
	}
	if clientID == "" {
		clientID = uuid.NewString()
		h.setCookie(w, ClientCookie, clientID, clientCookieMaxAge)
	}

	token := ""
	if c, err := r.Cookie(SessionCookie); err == nil {
		token = c.Value
	}

	ctrl, created := h.registry.Get(r.Context(), clientID, token)
	if created {
		h.syncSession(w, r, ctrl)
	}
	return ctrl, created
}

// syncSession makes the session cookie match the controller's token.
func (h *Handler) syncSession(w http.ResponseWriter, r *http.Request, ctrl *controller.Controller) {
	token := ctrl.SessionToken()
	current := ""
	if c, err := r.Cookie(SessionCookie); err == nil {
		current = c.Value
	}
	if token == current {
		return
	}
	if token == "" {
		h.setCookie(w, SessionCookie, "", -1)
		return
	}
	h.setCookie(w, SessionCookie, token, sessionCookieMaxAge)
}

func (h *Handler) setCookie(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		c.MaxAge = -1
	} else {
		c.MaxAge = int(maxAge.Seconds())
	}
	http.SetCookie(w, c)
}

func (h *Handler) respond(w http.ResponseWriter, status int, resp AppResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error("failed to write response", "error", err)
	}
}

// ok answers with the controller's current screen.
func (h *Handler) ok(w http.ResponseWriter, ctrl *controller.Controller, message string) {
	screen := views.Render(ctrl.State())
	h.respond(w, http.StatusOK, AppResponse{Success: true, Message: message, Screen: &screen})
}

// fail answers an intent rejected with err, still carrying the current screen.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, ctrl *controller.Controller, err error) {
	status := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "path", r.URL.Path, "error", err)
		message = "Something went wrong. Please try again."
	} else {
		h.log.Debug("intent rejected", "path", r.URL.Path, "error", err)
	}

	resp := AppResponse{Success: false, Message: message}
	if ctrl != nil {
		// an ended session clears the cookie along with the rejection
		h.syncSession(w, r, ctrl)
		screen := views.Render(ctrl.State())
		resp.Screen = &screen
	}
	h.respond(w, status, resp)
}

func (h *Handler) badRequest(w http.ResponseWriter, message string) {
	h.respond(w, http.StatusBadRequest, AppResponse{Success: false, Message: message})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrAuth), errors.Is(err, models.ErrNoUser):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, models.ErrStorage):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
