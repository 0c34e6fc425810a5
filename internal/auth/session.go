package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/branchd-dev/authgate/internal/assert"
)

const sessionIDLength = 26

// SessionData represents the authenticated session context for a request
type SessionData struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
}

// SessionRecord is the server-side half of a session
type SessionRecord struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the record is no longer valid at now
func (r SessionRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// SessionStore persists session records. Get returns ErrSessionNotFound for
// missing or expired records; any other error means the store is unreachable.
type SessionStore interface {
	Save(ctx context.Context, record SessionRecord) error
	Get(ctx context.Context, id string) (SessionRecord, error)
	Delete(ctx context.Context, id string) error
}

// SessionManager binds emails to signed session tokens backed by a SessionStore
type SessionManager struct {
	store  SessionStore
	signer *TokenSigner
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager creates a manager issuing sessions that live for ttl
func NewSessionManager(store SessionStore, signer *TokenSigner, ttl time.Duration) *SessionManager {
	return &SessionManager{
		store:  store,
		signer: signer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the lifetime of newly established sessions
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Establish starts a session for email and returns the token the client must present
func (m *SessionManager) Establish(ctx context.Context, email string) (string, time.Time, error) {
	record := SessionRecord{
		ID:        ulid.Make().String(),
		Email:     email,
		ExpiresAt: m.now().Add(m.ttl).Truncate(time.Second),
	}
	assert.Length(record.ID, sessionIDLength)

	if err := m.store.Save(ctx, record); err != nil {
		return "", time.Time{}, fmt.Errorf("%w: failed to save session: %w", ErrStoreUnavailable, err)
	}

	token, err := m.signer.Sign(record.ID, record.Email, record.ExpiresAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return token, record.ExpiresAt, nil
}

// Resolve returns the email bound to token. Missing, expired, tampered and
// terminated tokens all return ok=false with a nil error; only store failures
// return an error.
func (m *SessionManager) Resolve(ctx context.Context, token string) (email string, ok bool, err error) {
	record, found, err := m.lookup(ctx, token)
	if err != nil || !found {
		return "", false, err
	}
	return record.Email, true, nil
}

// Terminate invalidates the session behind token. Invalid tokens are ignored.
func (m *SessionManager) Terminate(ctx context.Context, token string) error {
	claims, err := m.signer.Parse(token)
	if err != nil {
		return nil
	}

	if err := m.store.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("%w: failed to delete session: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func (m *SessionManager) lookup(ctx context.Context, token string) (SessionRecord, bool, error) {
	if token == "" {
		return SessionRecord{}, false, nil
	}

	claims, err := m.signer.Parse(token)
	if err != nil {
		return SessionRecord{}, false, nil
	}

	record, err := m.store.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return SessionRecord{}, false, nil
		}
		return SessionRecord{}, false, fmt.Errorf("%w: failed to load session: %w", ErrStoreUnavailable, err)
	}

	if record.Email != claims.Subject || record.Expired(m.now()) {
		return SessionRecord{}, false, nil
	}

	return record, true, nil
}
