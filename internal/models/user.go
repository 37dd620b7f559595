package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the authenticated account as seen by the application.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserRecord is a user row including credentials. Never serialized to clients.
type UserRecord struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// User returns the public view of the record.
func (r UserRecord) User() User {
	return User{
		ID:    r.ID.String(),
		Email: r.Email,
		Name:  r.Name,
	}
}
