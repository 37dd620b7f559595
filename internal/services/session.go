package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/aura-backend/internal/models"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->session mapping
	UserSessionKeyPrefix = "user_session:"
)

var _ models.SessionStore = (*RedisSessionStore)(nil)

// RedisSessionStore keeps one session per user in Redis.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: SessionDuration}
}

// Create starts a new session for userID, replacing any previous one so the
// 7-day timer resets from the current login.
func (s *RedisSessionStore) Create(ctx context.Context, userID string) (string, error) {
	if err := s.invalidateUser(ctx, userID); err != nil {
		return "", err
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, SessionKeyPrefix+token, userID, s.ttl)
	pipe.Set(ctx, UserSessionKeyPrefix+userID, token, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}

	return token, nil
}

// Validate returns the user id behind token. A missing or expired session is
// reported as ok=false with no error.
func (s *RedisSessionStore) Validate(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}

	userID, err := s.rdb.Get(ctx, SessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return userID, true, nil
}

// Invalidate removes a session and its user mapping.
func (s *RedisSessionStore) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	sessionKey := SessionKeyPrefix + token
	userID, err := s.rdb.Get(ctx, sessionKey).Result()
	if err == nil && userID != "" {
		s.rdb.Del(ctx, UserSessionKeyPrefix+userID)
	}

	return s.rdb.Del(ctx, sessionKey).Err()
}

func (s *RedisSessionStore) invalidateUser(ctx context.Context, userID string) error {
	userSessionKey := UserSessionKeyPrefix + userID

	token, err := s.rdb.Get(ctx, userSessionKey).Result()
	if err == nil && token != "" {
		s.rdb.Del(ctx, SessionKeyPrefix+token)
	}

	return s.rdb.Del(ctx, userSessionKey).Err()
}
