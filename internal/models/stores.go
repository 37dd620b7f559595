package models

import (
	"context"
)

// EntryStore persists journal entries scoped by user id.
type EntryStore interface {
	GetEntries(ctx context.Context, userID string) ([]JournalEntry, error)
	SaveEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error)
	DeleteEntry(ctx context.Context, id string) error
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user UserRecord) error
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	GetUserByID(ctx context.Context, id string) (UserRecord, error)
}

// SessionStore maps opaque session tokens to user ids.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Validate(ctx context.Context, token string) (string, bool, error)
	Invalidate(ctx context.Context, token string) error
}

// Analyzer annotates entry content. It never fails; see FallbackAnalysis.
type Analyzer interface {
	AnalyzeEntry(ctx context.Context, content string) AnalysisResult
}

// Identity is the per-client view of the identity provider. The session token,
// when any, is held by the implementation.
type Identity interface {
	Register(ctx context.Context, email, name, password string) (User, error)
	Login(ctx context.Context, email, password string) (User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*User, error)
}
