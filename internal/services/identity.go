package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AnshRaj112/aura-backend/internal/logger"
	"github.com/AnshRaj112/aura-backend/internal/models"
	"github.com/AnshRaj112/aura-backend/internal/repository/sqlstore"
	"github.com/AnshRaj112/aura-backend/pkg/utils"
)

// MinPasswordLength is the shortest password the provider accepts.
const MinPasswordLength = 6

// AuthService is the identity provider: accounts in a UserStore, sessions in a SessionStore.
type AuthService struct {
	users    models.UserStore
	sessions models.SessionStore
	log      *logger.Logger
	now      func() time.Time
}

func NewAuthService(users models.UserStore, sessions models.SessionStore, log *logger.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		log:      log,
		now:      time.Now,
	}
}

// Register creates an account and signs it in. It returns the new user and session token.
func (a *AuthService) Register(ctx context.Context, email, name, password string) (models.User, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.User{}, "", fmt.Errorf("%w: name is required", models.ErrValidation)
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return models.User{}, "", err
	}
	if len(password) < MinPasswordLength {
		return models.User{}, "", fmt.Errorf("%w: password should be at least %d characters", models.ErrAuth, MinPasswordLength)
	}

	_, err = a.users.GetUserByEmail(ctx, email)
	if err == nil {
		return models.User{}, "", fmt.Errorf("%w: user already registered", models.ErrAuth)
	}
	if !errors.Is(err, models.ErrNotFound) {
		return models.User{}, "", fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return models.User{}, "", fmt.Errorf("failed to hash password: %w", err)
	}

	record := models.UserRecord{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    a.now(),
	}
	if err := a.users.CreateUser(ctx, record); err != nil {
		if errors.Is(err, sqlstore.ErrDuplicateEmail) {
			return models.User{}, "", fmt.Errorf("%w: user already registered", models.ErrAuth)
		}
		return models.User{}, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := a.sessions.Create(ctx, record.ID.String())
	if err != nil {
		return models.User{}, "", fmt.Errorf("failed to create session: %w", err)
	}

	a.log.Info("user registered", "user_id", record.ID)
	return record.User(), token, nil
}

// Login checks credentials and opens a session.
func (a *AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return models.User{}, "", fmt.Errorf("%w: email and password are required", models.ErrValidation)
	}

	record, err := a.users.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return models.User{}, "", fmt.Errorf("%w: invalid login credentials", models.ErrAuth)
	}
	if err != nil {
		return models.User{}, "", fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := utils.VerifyPassword(password, record.PasswordHash)
	if err != nil {
		a.log.Error("stored password hash unreadable", "user_id", record.ID, "error", err)
	}
	if !ok {
		return models.User{}, "", fmt.Errorf("%w: invalid login credentials", models.ErrAuth)
	}

	token, err := a.sessions.Create(ctx, record.ID.String())
	if err != nil {
		return models.User{}, "", fmt.Errorf("failed to create session: %w", err)
	}

	return record.User(), token, nil
}

// Logout ends the session behind token.
func (a *AuthService) Logout(ctx context.Context, token string) error {
	return a.sessions.Invalidate(ctx, token)
}

// CurrentUser returns the user behind token, or nil when there is no valid session.
func (a *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	userID, ok, err := a.sessions.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	record, err := a.users.GetUserByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	u := record.User()
	return &u, nil
}

// Bind returns the identity client of one browser, starting from token (may be empty).
func (a *AuthService) Bind(token string) *Session {
	return &Session{auth: a, token: token}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", models.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: invalid email address", models.ErrValidation)
	}
	return email, nil
}

var _ models.Identity = (*Session)(nil)

// Session is one client's handle on the identity provider. It remembers the
// session token the way a browser SDK keeps it in local storage.
type Session struct {
	auth  *AuthService
	mu    sync.RWMutex
	token string
}

// Token returns the current session token, empty when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) setToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) Register(ctx context.Context, email, name, password string) (models.User, error) {
	u, token, err := s.auth.Register(ctx, email, name, password)
	if err != nil {
		return models.User{}, err
	}
	s.setToken(token)
	return u, nil
}

func (s *Session) Login(ctx context.Context, email, password string) (models.User, error) {
	u, token, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return models.User{}, err
	}
	s.setToken(token)
	return u, nil
}

// Logout forgets the local token even when the provider call fails.
func (s *Session) Logout(ctx context.Context) error {
	token := s.Token()
	s.setToken("")
	return s.auth.Logout(ctx, token)
}

// CurrentUser resolves the held token. A token whose session is gone is
// forgotten so the browser's cookie gets cleared.
func (s *Session) CurrentUser(ctx context.Context) (*models.User, error) {
	token := s.Token()
	u, err := s.auth.CurrentUser(ctx, token)
	if err != nil || u != nil || token == "" {
		return u, err
	}

	s.mu.Lock()
	if s.token == token {
		s.token = ""
	}
	s.mu.Unlock()
	return nil, nil
}
