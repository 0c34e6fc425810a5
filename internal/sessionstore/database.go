package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/branchd-dev/authgate/internal/auth"
	"github.com/branchd-dev/authgate/internal/models"
)

// Database stores sessions in the sessions table. Expired rows are ignored
// on read and removed by PurgeExpired.
type Database struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDatabase creates a Database store on db
func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db, now: time.Now}
}

func (d *Database) Save(ctx context.Context, record auth.SessionRecord) error {
	row := models.Session{
		ID:        record.ID,
		Email:     record.Email,
		ExpiresAt: record.ExpiresAt.UTC(),
	}
	if err := d.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (d *Database) Get(ctx context.Context, id string) (auth.SessionRecord, error) {
	var row models.Session
	if err := models.FindByID(d.db.WithContext(ctx), id, &row); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.SessionRecord{}, auth.ErrSessionNotFound
		}
		return auth.SessionRecord{}, fmt.Errorf("failed to find session: %w", err)
	}

	record := auth.SessionRecord{ID: row.ID, Email: row.Email, ExpiresAt: row.ExpiresAt}
	if record.Expired(d.now()) {
		return auth.SessionRecord{}, auth.ErrSessionNotFound
	}
	return record, nil
}

func (d *Database) Delete(ctx context.Context, id string) error {
	if err := d.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes sessions that expired before now and returns how many were removed
func (d *Database) PurgeExpired(ctx context.Context) (int64, error) {
	res := d.db.WithContext(ctx).Where("expires_at <= ?", d.now().UTC()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
