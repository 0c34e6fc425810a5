package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/branchd-dev/authgate/internal/config"
	"github.com/branchd-dev/authgate/internal/logger"
	"github.com/branchd-dev/authgate/internal/models"
	"github.com/branchd-dev/authgate/internal/store"
)

// openDatabase loads the environment configuration and returns a migrated database.
// This is common logic used by the database commands.
func openDatabase() (*config.Config, *gorm.DB, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, zerolog.Nop(), fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	db, err := store.Open(cfg.Database, log)
	if err != nil {
		return nil, nil, log, err
	}

	if err := models.AutoMigrate(db); err != nil {
		_ = store.Close(db)
		return nil, nil, log, fmt.Errorf("failed to migrate database: %w", err)
	}

	return cfg, db, log, nil
}
