package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/branchd-dev/authgate/internal/tasks"
)

// Enqueuer is the part of asynq.Client the scheduler needs
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// PurgeScheduler enqueues a purge task each time its cron schedule comes due
type PurgeScheduler struct {
	client   Enqueuer
	schedule cron.Schedule
	logger   zerolog.Logger
	now      func() time.Time
	next     time.Time
}

// NewPurgeScheduler parses a standard 5-field cron expression
func NewPurgeScheduler(client Enqueuer, cronExpr string, logger zerolog.Logger) (*PurgeScheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", cronExpr, err)
	}

	return &PurgeScheduler{
		client:   client,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Next returns when the next purge is due. Zero before the first check.
func (p *PurgeScheduler) Next() time.Time {
	return p.next
}

// Check enqueues a purge task if one is due and reports whether it did
func (p *PurgeScheduler) Check() bool {
	now := p.now()

	if p.next.IsZero() {
		p.next = p.schedule.Next(now)
		p.logger.Debug().Time("next_purge_at", p.next).Msg("Scheduled first session purge")
		return false
	}

	if now.Before(p.next) {
		return false
	}

	task, err := tasks.NewPurgeExpiredSessionsTask(p.next)
	if err != nil {
		p.logger.Error().Err(err).Msg("Failed to create purge task")
		return false
	}

	if _, err := p.client.Enqueue(task, asynq.Queue("low"), asynq.MaxRetry(3), asynq.Timeout(5*time.Minute)); err != nil {
		// retried on the next tick
		p.logger.Error().Err(err).Msg("Failed to enqueue purge task")
		return false
	}

	p.next = p.schedule.Next(now)
	p.logger.Info().Time("next_purge_at", p.next).Msg("Session purge task enqueued")
	return true
}

// Run checks the schedule every minute until ctx is cancelled
func (p *PurgeScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	p.Check()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Check()
		}
	}
}
