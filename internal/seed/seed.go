// Package seed loads fixture users into the credential store
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/branchd-dev/authgate/internal/auth"
	"github.com/branchd-dev/authgate/internal/models"
	"github.com/branchd-dev/authgate/internal/store"
)

//go:embed users.yaml
var defaultUsers []byte

// User is one fixture entry
type User struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Admin    bool   `yaml:"admin"`
}

// Fixtures is the file format of users.yaml
type Fixtures struct {
	Users []User `yaml:"users"`
}

// Default returns the built-in fixtures
func Default() (*Fixtures, error) {
	return Parse(defaultUsers)
}

// Parse decodes fixtures from YAML
func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	for i, u := range f.Users {
		if u.Email == "" || u.Password == "" {
			return nil, fmt.Errorf("fixture user %d: email and password are required", i)
		}
	}
	return &f, nil
}

// Run replaces every user in users with the fixtures. All passwords are
// hashed before the store is touched, and the replacement is a single
// transaction: on any failure the previous users are left as they were.
func Run(ctx context.Context, users *store.UserStore, hasher *auth.Hasher, fixtures *Fixtures, zlog zerolog.Logger) error {
	seeded := make([]*models.User, 0, len(fixtures.Users))
	for _, u := range fixtures.Users {
		hash, err := hasher.Hash(u.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", u.Email, err)
		}

		seeded = append(seeded, &models.User{
			Email:        u.Email,
			PasswordHash: hash,
			IsAdmin:      u.Admin,
		})
	}

	err := users.Transaction(ctx, func(tx *store.UserStore) error {
		removed, err := tx.DeleteAll(ctx)
		if err != nil {
			return err
		}
		zlog.Debug().Int64("removed", removed).Msg("Cleared users")

		for _, user := range seeded {
			if err := tx.Create(ctx, user); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace users: %w", err)
	}

	for _, user := range seeded {
		zlog.Info().Str("user_id", user.ID).Str("email", user.Email).Bool("is_admin", user.IsAdmin).Msg("Seeded user")
	}

	return nil
}
