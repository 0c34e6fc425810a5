package auth

import "errors"

var (
	// ErrInvalidCredential is returned for an unknown email or a wrong password.
	// Callers must report both the same way.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrStoreUnavailable marks failures of the credential or session store.
	// It must surface as a server error, never as an authentication failure.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUserNotFound is returned by a CredentialStore when no user has the email
	ErrUserNotFound = errors.New("user not found")

	// ErrSessionNotFound is returned by a SessionStore for unknown or expired sessions
	ErrSessionNotFound = errors.New("session not found")
)
