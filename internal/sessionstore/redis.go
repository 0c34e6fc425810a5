package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/branchd-dev/authgate/internal/auth"
)

const redisKeyPrefix = "session:"

// Redis stores sessions as JSON values under session:<id>, with a TTL that
// matches the session expiry so Redis drops them on its own
type Redis struct {
	rdb *goredis.Client
	now func() time.Time
}

// NewRedis creates a Redis store talking to addr
func NewRedis(addr string) *Redis {
	return NewRedisWithClient(goredis.NewClient(&goredis.Options{
		Addr: addr,
	}))
}

// NewRedisWithClient creates a Redis store on an existing client
func NewRedisWithClient(rdb *goredis.Client) *Redis {
	return &Redis{rdb: rdb, now: time.Now}
}

// Ping checks that Redis is reachable
func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) Save(ctx context.Context, record auth.SessionRecord) error {
	ttl := record.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}

	buf, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return r.rdb.Set(ctx, redisKeyPrefix+record.ID, buf, ttl).Err()
}

func (r *Redis) Get(ctx context.Context, id string) (auth.SessionRecord, error) {
	buf, err := r.rdb.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return auth.SessionRecord{}, auth.ErrSessionNotFound
		}
		return auth.SessionRecord{}, err
	}

	var record auth.SessionRecord
	if err := json.Unmarshal(buf, &record); err != nil {
		return auth.SessionRecord{}, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	if record.Expired(r.now()) {
		return auth.SessionRecord{}, auth.ErrSessionNotFound
	}
	return record, nil
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, redisKeyPrefix+id).Err()
}

// Close closes the Redis client
func (r *Redis) Close() error {
	return r.rdb.Close()
}
