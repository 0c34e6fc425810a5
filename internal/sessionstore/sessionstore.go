// Package sessionstore provides the backends that persist login sessions:
// process memory, Redis, or the application database.
package sessionstore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/branchd-dev/authgate/internal/auth"
	"github.com/branchd-dev/authgate/internal/config"
)

// New builds the backend selected by cfg.Sessions.Store
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, zlog zerolog.Logger) (auth.SessionStore, error) {
	switch cfg.Sessions.Store {
	case config.SessionStoreMemory:
		store, err := NewMemory(cfg.Sessions.TTL)
		if err != nil {
			return nil, err
		}
		zlog.Info().Dur("ttl", cfg.Sessions.TTL).Msg("Using in-memory session store")
		return store, nil

	case config.SessionStoreRedis:
		store := NewRedis(cfg.Redis.Address)
		if err := store.Ping(ctx); err != nil {
			// not fatal: requests fail with a server error until Redis is back
			zlog.Warn().Err(err).Str("address", cfg.Redis.Address).Msg("Redis session store is not reachable")
		}
		zlog.Info().Str("address", cfg.Redis.Address).Msg("Using Redis session store")
		return store, nil

	case config.SessionStoreDatabase:
		zlog.Info().Msg("Using database session store")
		return NewDatabase(db), nil

	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Sessions.Store)
	}
}
