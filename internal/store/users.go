package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/branchd-dev/authgate/internal/auth"
	"github.com/branchd-dev/authgate/internal/models"
)

// UserStore is the gorm-backed credential store
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a UserStore on db
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// FindByEmail returns the user with exactly this email.
// A miss is auth.ErrUserNotFound; anything else wraps auth.ErrStoreUnavailable.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: failed to find user: %w", auth.ErrStoreUnavailable, err)
	}
	return &user, nil
}

// List returns all users, oldest first
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at ASC").Order("email ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to list users: %w", auth.ErrStoreUnavailable, err)
	}
	return users, nil
}

// Create inserts user; the email must not exist yet
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}
	return nil
}

// Transaction runs fn against a UserStore bound to one database transaction.
// Any error returned by fn rolls back everything fn did.
func (s *UserStore) Transaction(ctx context.Context, fn func(tx *UserStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UserStore{db: tx})
	})
}

// DeleteAll removes every user and returns how many were removed
func (s *UserStore) DeleteAll(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete users: %w", res.Error)
	}
	return res.RowsAffected, nil
}
