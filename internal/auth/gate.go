package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/branchd-dev/authgate/internal/models"
)

// Requirement is the access policy attached to a route
type Requirement int

const (
	// RequireLogin admits any user with a live session
	RequireLogin Requirement = iota
	// RequireAdmin admits only users whose admin flag is set
	RequireAdmin
)

// Decision is the outcome of evaluating a Requirement for one request
type Decision int

const (
	// Allowed lets the request through to the handler
	Allowed Decision = iota
	// Unauthenticated means no live session backs the request
	Unauthenticated
	// Forbidden means the session is live but lacks the admin flag
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// CredentialStore looks up users by email. A miss returns ErrUserNotFound.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Gate decides whether a session token satisfies a route Requirement
type Gate struct {
	sessions *SessionManager
	users    CredentialStore
}

// NewGate creates a gate resolving sessions through sessions and roles through users
func NewGate(sessions *SessionManager, users CredentialStore) *Gate {
	return &Gate{sessions: sessions, users: users}
}

// Authorize resolves token and evaluates req against the user's current state.
// The admin flag is only checked once the session resolves, so an anonymous
// request to an admin route is Unauthenticated, never Forbidden.
// A non-nil error means a store failed and no decision was made.
func (g *Gate) Authorize(ctx context.Context, token string, req Requirement) (Decision, *SessionData, error) {
	record, ok, err := g.sessions.lookup(ctx, token)
	if err != nil {
		return Unauthenticated, nil, err
	}
	if !ok {
		return Unauthenticated, nil, nil
	}

	user, err := g.users.FindByEmail(ctx, record.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Unauthenticated, nil, nil
		}
		if !errors.Is(err, ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		return Unauthenticated, nil, err
	}

	session := &SessionData{
		SessionID: record.ID,
		UserID:    user.ID,
		Email:     user.Email,
		IsAdmin:   user.IsAdmin,
	}
	return decide(req, session.IsAdmin), session, nil
}

func decide(req Requirement, isAdmin bool) Decision {
	if req == RequireAdmin && !isAdmin {
		return Forbidden
	}
	return Allowed
}
