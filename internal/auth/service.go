package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/branchd-dev/authgate/internal/models"
)

// Service implements login and logout on top of the credential store,
// the password hasher and the session manager
type Service struct {
	users    CredentialStore
	hasher   *Hasher
	sessions *SessionManager

	// verified against when the email is unknown, so both failure paths
	// spend the same bcrypt time
	dummyHash string
}

// NewService wires the login flow. It fails if hasher cannot produce hashes.
func NewService(users CredentialStore, hasher *Hasher, sessions *SessionManager) (*Service, error) {
	dummyHash, err := hasher.Hash(ulid.Make().String())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare login hasher: %w", err)
	}
	return &Service{users: users, hasher: hasher, sessions: sessions, dummyHash: dummyHash}, nil
}

// Login verifies email and password and establishes a session.
// Unknown emails and wrong passwords both return ErrInvalidCredential; the
// wrapped reason is meant for logs only.
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, *models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return "", time.Time{}, nil, fmt.Errorf("%w: unknown email", ErrInvalidCredential)
		}
		if !errors.Is(err, ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		return "", time.Time{}, nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", time.Time{}, nil, fmt.Errorf("%w: password mismatch", ErrInvalidCredential)
	}

	token, expiresAt, err := s.sessions.Establish(ctx, user.Email)
	if err != nil {
		return "", time.Time{}, nil, err
	}

	return token, expiresAt, user, nil
}

// Logout terminates the session behind token
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Terminate(ctx, token)
}
