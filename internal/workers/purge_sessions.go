package workers

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/branchd-dev/authgate/internal/tasks"
)

// SessionPurger deletes sessions whose expiry has passed
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// HandlePurgeExpiredSessions removes expired sessions from the database store
func HandlePurgeExpiredSessions(ctx context.Context, t *asynq.Task, purger SessionPurger, logger zerolog.Logger) error {
	payload, err := tasks.ParseTaskPayload(t)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	removed, err := purger.PurgeExpired(ctx)
	if err != nil {
		logger.Error().Err(err).Time("scheduled_at", payload.ScheduledAt).Msg("Failed to purge expired sessions")
		return fmt.Errorf("failed to purge expired sessions: %w", err)
	}

	logger.Info().
		Int64("removed", removed).
		Time("scheduled_at", payload.ScheduledAt).
		Msg("Purged expired sessions")

	return nil
}
