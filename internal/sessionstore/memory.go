package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/branchd-dev/authgate/internal/auth"
)

// Memory keeps sessions in process memory. Entries are evicted once they
// outlive ttl; sessions do not survive a restart.
type Memory struct {
	cache *bigcache.BigCache
	now   func() time.Time
}

// NewMemory creates a Memory store whose entries live for ttl
func NewMemory(ttl time.Duration) (*Memory, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Verbose = false

	cache, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &Memory{cache: cache, now: time.Now}, nil
}

func (m *Memory) Save(ctx context.Context, record auth.SessionRecord) error {
	buf, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return m.cache.Set(record.ID, buf)
}

func (m *Memory) Get(ctx context.Context, id string) (auth.SessionRecord, error) {
	buf, err := m.cache.Get(id)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return auth.SessionRecord{}, auth.ErrSessionNotFound
		}
		return auth.SessionRecord{}, err
	}

	var record auth.SessionRecord
	if err := json.Unmarshal(buf, &record); err != nil {
		return auth.SessionRecord{}, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	if record.Expired(m.now()) {
		return auth.SessionRecord{}, auth.ErrSessionNotFound
	}
	return record, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := m.cache.Delete(id); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return err
	}
	return nil
}

// Close stops the cache's cleanup goroutine
func (m *Memory) Close() error {
	return m.cache.Close()
}
