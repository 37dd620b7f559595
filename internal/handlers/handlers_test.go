package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/AnshRaj112/aura-backend/internal/controller"
	"github.com/AnshRaj112/aura-backend/internal/database"
	"github.com/AnshRaj112/aura-backend/internal/handlers"
	"github.com/AnshRaj112/aura-backend/internal/logger"
	"github.com/AnshRaj112/aura-backend/internal/mocks"
	"github.com/AnshRaj112/aura-backend/internal/models"
	"github.com/AnshRaj112/aura-backend/internal/repository/sqlstore"
	"github.com/AnshRaj112/aura-backend/internal/routes"
	"github.com/AnshRaj112/aura-backend/internal/services"
	"github.com/AnshRaj112/aura-backend/internal/theme"
	"github.com/AnshRaj112/aura-backend/internal/views"
)

type HandlersSuite struct {
	suite.Suite
	srv   *httptest.Server
	gen   *mocks.Generator
	mr    *miniredis.Miniredis
	store *sqlstore.Store
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}

func (s *HandlersSuite) SetupTest() {
	t := s.T()
	ctx := context.Background()

	db, err := database.ConnectSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := sqlstore.New(db, sqlstore.SQLite)
	require.NoError(t, store.Migrate(ctx))

	s.store = store
	s.mr = miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := logger.Nop()
	sessions := services.NewRedisSessionStore(rdb)
	auth := services.NewAuthService(store, sessions, log)
	s.gen = &mocks.Generator{}
	analyzer := services.NewAnalysisService(s.gen, nil, log, time.Second)

	registry := controller.NewRegistry(controller.RegistryOptions{
		Options: controller.Options{Entries: store, Analyzer: analyzer, Log: log},
		NewIdentity: func(token string) models.Identity {
			return auth.Bind(token)
		},
	})

	r := chi.NewRouter()
	routes.SetupRoutes(r, handlers.New(registry, log, handlers.Options{}), sessions)
	s.srv = httptest.NewServer(r)
	t.Cleanup(s.srv.Close)
}

func (s *HandlersSuite) newClient() *http.Client {
	jar, err := cookiejar.New(nil)
	s.Require().NoError(err)
	return &http.Client{Jar: jar}
}

func (s *HandlersSuite) do(c *http.Client, method, path string, body any) (int, handlers.AppResponse) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.srv.URL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.Do(req)
	s.Require().NoError(err)
	defer res.Body.Close()

	var out handlers.AppResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func (s *HandlersSuite) cookie(c *http.Client, name string) string {
	u, _ := url.Parse(s.srv.URL)
	for _, ck := range c.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func (s *HandlersSuite) register(c *http.Client) {
	status, _ := s.do(c, http.MethodPost, "/api/app/auth", nil)
	s.Require().Equal(http.StatusOK, status)
	status, resp := s.do(c, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "a@b.com", "name": "Ada", "password": "secret123",
	})
	s.Require().Equal(http.StatusOK, status, resp.Message)
}

func (s *HandlersSuite) TestLandingOnFirstVisit() {
	c := s.newClient()
	status, resp := s.do(c, http.MethodGet, "/api/app", nil)

	s.Equal(http.StatusOK, status)
	s.True(resp.Success)
	s.Require().NotNil(resp.Screen)
	s.Equal(models.ViewLanding, resp.Screen.View)
	s.NotNil(resp.Screen.Landing)
	s.NotEmpty(s.cookie(c, handlers.ClientCookie))
	s.Empty(s.cookie(c, handlers.SessionCookie))
}

func (s *HandlersSuite) TestRegisterLandsOnEmptyDashboard() {
	c := s.newClient()
	s.register(c)

	status, resp := s.do(c, http.MethodGet, "/api/app", nil)
	s.Equal(http.StatusOK, status)
	s.Equal(models.ViewDashboard, resp.Screen.View)
	s.Require().NotNil(resp.Screen.Dashboard)
	s.Equal("Ada", resp.Screen.Dashboard.User.Name)
	s.Empty(resp.Screen.Dashboard.Entries)
	s.NotEmpty(s.cookie(c, handlers.SessionCookie))
}

func (s *HandlersSuite) TestRegisterValidation() {
	c := s.newClient()
	s.do(c, http.MethodPost, "/api/app/auth", nil)

	status, resp := s.do(c, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "a@b.com", "name": "", "password": "secret123",
	})
	s.Equal(http.StatusBadRequest, status)
	s.False(resp.Success)
	s.Equal(models.ViewAuth, resp.Screen.View)
	s.Equal("name is required", resp.Screen.Auth.Error)
}

func (s *HandlersSuite) TestEntryLifecycle() {
	s.gen.On("Generate", mock.Anything, mock.Anything).
		Return(`{"mood":"Happy","summary":"A sunny day.","advice":"Enjoy it."}`, nil)

	c := s.newClient()
	s.register(c)

	// saving is only legal from the editor
	status, _ := s.do(c, http.MethodPut, "/api/entries", map[string]string{"title": "T", "content": "C"})
	s.Equal(http.StatusConflict, status)

	status, resp := s.do(c, http.MethodPost, "/api/entries/new", nil)
	s.Require().Equal(http.StatusOK, status)
	s.Equal(views.ModeNew, resp.Screen.Editor.Mode)

	status, resp = s.do(c, http.MethodPost, "/api/entries/analyze", map[string]string{"content": "Walked in the sun"})
	s.Require().Equal(http.StatusOK, status)
	s.Require().NotNil(resp.Analysis)
	s.Equal("Happy", resp.Analysis.Mood)
	s.Equal("Enjoy it.", resp.Screen.Editor.Draft.Advice)
	s.Equal(theme.Joyful, resp.Screen.Editor.Theme)

	status, resp = s.do(c, http.MethodPut, "/api/entries", map[string]string{
		"title": "Sunny", "content": "Walked in the sun", "mood": "Happy", "summary": "A sunny day.",
	})
	s.Require().Equal(http.StatusOK, status, resp.Message)
	s.Equal(models.ViewDashboard, resp.Screen.View)
	s.Require().Len(resp.Screen.Dashboard.Entries, 1)
	card := resp.Screen.Dashboard.Entries[0]
	s.Equal("Sunny", card.Entry.Title)
	s.Equal(theme.Joyful, card.Theme)
	s.Equal("1 min read", card.ReadTime)
	s.Empty(card.Entry.Color)
	id := card.Entry.ID

	status, resp = s.do(c, http.MethodGet, "/api/entries?q=SUN", nil)
	s.Equal(http.StatusOK, status)
	s.Len(resp.Screen.Dashboard.Entries, 1)

	status, resp = s.do(c, http.MethodGet, "/api/entries?q=rain", nil)
	s.Equal(http.StatusOK, status)
	s.Empty(resp.Screen.Dashboard.Entries)

	status, _ = s.do(c, http.MethodGet, "/api/entries?q=", nil)
	s.Require().Equal(http.StatusOK, status)

	status, resp = s.do(c, http.MethodPost, "/api/entries/"+id+"/edit", nil)
	s.Require().Equal(http.StatusOK, status)
	s.Equal(views.ModeEdit, resp.Screen.Editor.Mode)
	s.Equal("Sunny", resp.Screen.Editor.Draft.Title)

	status, _ = s.do(c, http.MethodPost, "/api/entries/cancel", nil)
	s.Require().Equal(http.StatusOK, status)

	status, resp = s.do(c, http.MethodDelete, "/api/entries/"+id, nil)
	s.Require().Equal(http.StatusOK, status)
	s.Empty(resp.Screen.Dashboard.Entries)

	status, _ = s.do(c, http.MethodDelete, "/api/entries/"+id, nil)
	s.Equal(http.StatusNotFound, status)
}

func (s *HandlersSuite) TestSaveValidation() {
	c := s.newClient()
	s.register(c)
	s.do(c, http.MethodPost, "/api/entries/new", nil)

	status, resp := s.do(c, http.MethodPut, "/api/entries", map[string]string{"title": "  ", "content": "x"})
	s.Equal(http.StatusBadRequest, status)
	s.Equal(models.ViewEditor, resp.Screen.View)
}

func (s *HandlersSuite) TestAnalyzeFallback() {
	s.gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	c := s.newClient()
	s.register(c)
	s.do(c, http.MethodPost, "/api/entries/new", nil)

	status, resp := s.do(c, http.MethodPost, "/api/entries/analyze", map[string]string{"content": "hello"})
	s.Equal(http.StatusOK, status)
	s.Equal(models.FallbackAnalysis, *resp.Analysis)
}

func (s *HandlersSuite) TestLogoutAndLogin() {
	c := s.newClient()
	s.register(c)

	status, resp := s.do(c, http.MethodPost, "/api/auth/logout", nil)
	s.Equal(http.StatusOK, status)
	s.Equal(models.ViewLanding, resp.Screen.View)
	s.Empty(s.cookie(c, handlers.SessionCookie))

	status, _ = s.do(c, http.MethodPost, "/api/entries/new", nil)
	s.Equal(http.StatusUnauthorized, status)

	s.do(c, http.MethodPost, "/api/app/auth", nil)
	status, resp = s.do(c, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.com", "password": "wrong"})
	s.Equal(http.StatusUnauthorized, status)
	s.Equal("invalid login credentials", resp.Screen.Auth.Error)

	status, resp = s.do(c, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.com", "password": "secret123"})
	s.Equal(http.StatusOK, status)
	s.Equal(models.ViewDashboard, resp.Screen.View)
}

func (s *HandlersSuite) TestSessionCookieRestoresDashboard() {
	c := s.newClient()
	s.register(c)
	token := s.cookie(c, handlers.SessionCookie)

	// a new browser tab without the client cookie but with the session
	req, err := http.NewRequest(http.MethodGet, s.srv.URL+"/api/app", nil)
	s.Require().NoError(err)
	req.AddCookie(&http.Cookie{Name: handlers.SessionCookie, Value: token})
	res, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer res.Body.Close()

	var resp handlers.AppResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&resp))
	s.Equal(models.ViewDashboard, resp.Screen.View)
}

func (s *HandlersSuite) TestExpiredSessionRejectsSave() {
	c := s.newClient()
	s.register(c)
	userID := s.userID(c)
	_, resp := s.do(c, http.MethodPost, "/api/entries/new", nil)
	s.Require().Equal(models.ViewEditor, resp.Screen.View)

	s.mr.FlushAll()

	status, resp := s.do(c, http.MethodPut, "/api/entries", map[string]string{"title": "T", "content": "C"})
	s.Equal(http.StatusUnauthorized, status)
	s.False(resp.Success)
	s.Equal(models.ViewLanding, resp.Screen.View)
	s.Empty(s.cookie(c, handlers.SessionCookie))

	entries, err := s.store.GetEntries(context.Background(), userID)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *HandlersSuite) TestLoginElsewhereEndsOldSession() {
	a := s.newClient()
	s.register(a)
	s.do(a, http.MethodPost, "/api/entries/new", nil)
	status, resp := s.do(a, http.MethodPut, "/api/entries", map[string]string{"title": "Kept", "content": "Still here"})
	s.Require().Equal(http.StatusOK, status, resp.Message)
	id := resp.Screen.Dashboard.Entries[0].Entry.ID

	b := s.newClient()
	s.do(b, http.MethodPost, "/api/app/auth", nil)
	status, _ = s.do(b, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.com", "password": "secret123"})
	s.Require().Equal(http.StatusOK, status)

	status, resp = s.do(a, http.MethodDelete, "/api/entries/"+id, nil)
	s.Equal(http.StatusUnauthorized, status)
	s.Equal(models.ViewLanding, resp.Screen.View)
	s.Empty(s.cookie(a, handlers.SessionCookie))

	status, resp = s.do(a, http.MethodGet, "/api/app", nil)
	s.Equal(http.StatusOK, status)
	s.Equal(models.ViewLanding, resp.Screen.View)

	status, resp = s.do(b, http.MethodGet, "/api/app", nil)
	s.Equal(http.StatusOK, status)
	s.Require().Equal(models.ViewDashboard, resp.Screen.View)
	s.Len(resp.Screen.Dashboard.Entries, 1)
}

func (s *HandlersSuite) TestGetAppAfterSessionEnds() {
	c := s.newClient()
	s.register(c)

	s.mr.FlushAll()

	status, resp := s.do(c, http.MethodGet, "/api/app", nil)
	s.Equal(http.StatusOK, status)
	s.Equal(models.ViewLanding, resp.Screen.View)
	s.NotEmpty(resp.Message)
	s.Empty(s.cookie(c, handlers.SessionCookie))
}

func (s *HandlersSuite) userID(c *http.Client) string {
	_, resp := s.do(c, http.MethodGet, "/api/app", nil)
	s.Require().NotNil(resp.Screen.Dashboard)
	return resp.Screen.Dashboard.User.ID
}

func (s *HandlersSuite) TestInvalidJSON() {
	res, err := http.Post(s.srv.URL+"/api/auth/login", "application/json", strings.NewReader("{"))
	s.Require().NoError(err)
	defer res.Body.Close()
	s.Equal(http.StatusBadRequest, res.StatusCode)
}

func (s *HandlersSuite) TestStateWebSocket() {
	c := s.newClient()
	s.do(c, http.MethodGet, "/api/app", nil)

	header := http.Header{}
	header.Set("Cookie", fmt.Sprintf("%s=%s", handlers.ClientCookie, s.cookie(c, handlers.ClientCookie)))
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(s.srv.URL, "http")+"/ws/state", header)
	s.Require().NoError(err)
	defer conn.Close()
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))

	var screen views.Screen
	s.Require().NoError(conn.ReadJSON(&screen))
	s.Equal(models.ViewLanding, screen.View)

	status, _ := s.do(c, http.MethodPost, "/api/app/auth", nil)
	s.Require().Equal(http.StatusOK, status)

	s.Require().NoError(conn.ReadJSON(&screen))
	s.Equal(models.ViewAuth, screen.View)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: x", models.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: x", models.ErrAuth), http.StatusUnauthorized},
		{models.ErrNoUser, http.StatusUnauthorized},
		{fmt.Errorf("%w: x", models.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: x", models.ErrInvalidTransition), http.StatusConflict},
		{fmt.Errorf("%w: get entries: %w", models.ErrStorage, errors.New("timeout")), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, handlers.StatusFor(tt.err), tt.err.Error())
	}
}
