package models

import "errors"

var (
	// ErrValidation marks a local pre-flight failure (empty required field).
	ErrValidation = errors.New("validation error")
	// ErrAuth marks a rejection by the identity provider.
	ErrAuth = errors.New("authentication error")
	// ErrStorage marks a failed call to the entry store.
	ErrStorage = errors.New("storage error")
	// ErrNotFound is returned by stores when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned when an intent is not legal from the current view.
	ErrInvalidTransition = errors.New("invalid view transition")
	// ErrNoUser is returned when an operation needs a signed-in user.
	ErrNoUser = errors.New("no signed-in user")
)
