package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	// Session maintenance tasks
	TypePurgeExpiredSessions = "sessions:purge_expired"
)

// TaskPayload is the common payload for all tasks
type TaskPayload struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

// NewPurgeExpiredSessionsTask creates a task that deletes expired database sessions
func NewPurgeExpiredSessionsTask(scheduledAt time.Time) (*asynq.Task, error) {
	payload, err := json.Marshal(TaskPayload{
		ScheduledAt: scheduledAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypePurgeExpiredSessions, payload), nil
}

// ParseTaskPayload parses task payload from Asynq task
func ParseTaskPayload(task *asynq.Task) (TaskPayload, error) {
	var payload TaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
