package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/AnshRaj112/aura-backend/internal/models"
)

var _ models.UserStore = (*Store)(nil)

// ErrDuplicateEmail is returned by CreateUser when the email is taken.
var ErrDuplicateEmail = errors.New("email already registered")

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.UserRecord) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		user.ID.String(), user.Email, user.Name, user.PasswordHash, user.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// GetUserByEmail looks a user up by (already normalized) email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.UserRecord, error) {
	return s.getUser(ctx, `SELECT id, email, name, password_hash, created_at FROM users WHERE email = ?`, email)
}

// GetUserByID looks a user up by id.
func (s *Store) GetUserByID(ctx context.Context, id string) (models.UserRecord, error) {
	return s.getUser(ctx, `SELECT id, email, name, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (s *Store) getUser(ctx context.Context, query string, arg string) (models.UserRecord, error) {
	var (
		u  models.UserRecord
		id string
	)
	err := s.db.QueryRowContext(ctx, s.rebind(query), arg).Scan(&id, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.UserRecord{}, models.ErrNotFound
		}
		return models.UserRecord{}, err
	}
	if u.ID, err = uuid.Parse(id); err != nil {
		return models.UserRecord{}, fmt.Errorf("corrupt user id %q: %w", id, err)
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
