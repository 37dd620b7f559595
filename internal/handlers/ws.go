package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AnshRaj112/aura-backend/internal/models"
	"github.com/AnshRaj112/aura-backend/internal/views"
)

const (
	wsReadLimit    = 4 * 1024
	wsPongWait     = 90 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteWait    = 10 * time.Second
)

func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.allowedOrigins) == 0 {
		return true
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	for _, a := range h.allowedOrigins {
		if strings.EqualFold(strings.TrimSpace(a), origin) {
			return true
		}
	}
	return false
}

// StateWebSocket streams the client's rendered screen: once on connect and
// again after every transition of its controller. Inbound messages are
// ignored apart from keeping the connection alive.
func (h *Handler) StateWebSocket(w http.ResponseWriter, r *http.Request) {
	ctrl, err := h.liveController(w, r)
	if err != nil && !errors.Is(err, models.ErrNoUser) {
		h.fail(w, r, ctrl, err)
		return
	}

	// Cookies issued by controllerFor must ride on the upgrade response.
	var header http.Header
	if cookies := w.Header().Values("Set-Cookie"); len(cookies) > 0 {
		header = http.Header{"Set-Cookie": cookies}
	}

	conn, err := h.upgrader().Upgrade(w, r, header)
	if err != nil {
		h.log.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	states, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})

	// Writer goroutine: the only one writing to conn.
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		defer conn.Close()

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(views.Render(ctrl.State())); err != nil {
			return
		}

		for {
			select {
			case <-done:
				return
			case s, ok := <-states:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "session expired"),
						time.Now().Add(wsWriteWait))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteJSON(views.Render(s)); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop: detects disconnects and refreshes the deadline on pongs.
	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			close(done)
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	}
}
