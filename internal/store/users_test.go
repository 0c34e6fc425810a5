package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/branchd-dev/authgate/internal/auth"
	"github.com/branchd-dev/authgate/internal/config"
	"github.com/branchd-dev/authgate/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(config.DatabaseConfig{URL: ":memory:"}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestUserStore_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(openTestDB(t))

	require.NoError(t, users.Create(ctx, &models.User{Email: "jeremy@jeremy.com", PasswordHash: "h1"}))
	require.NoError(t, users.Create(ctx, &models.User{Email: "kelly@kelly.com", PasswordHash: "h2", IsAdmin: true}))

	kelly, err := users.FindByEmail(ctx, "kelly@kelly.com")
	require.NoError(t, err)
	assert.Len(t, kelly.ID, 26)
	assert.True(t, kelly.IsAdmin)
	assert.Equal(t, "h2", kelly.PasswordHash)

	jeremy, err := users.FindByEmail(ctx, "jeremy@jeremy.com")
	require.NoError(t, err)
	assert.False(t, jeremy.IsAdmin)
}

func TestUserStore_FindByEmail_Miss(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(openTestDB(t))
	require.NoError(t, users.Create(ctx, &models.User{Email: "jeremy@jeremy.com", PasswordHash: "h1"}))

	_, err := users.FindByEmail(ctx, "nobody@nowhere.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	// emails match exactly as stored
	_, err = users.FindByEmail(ctx, "JEREMY@jeremy.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestUserStore_EmailIsUnique(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(openTestDB(t))

	require.NoError(t, users.Create(ctx, &models.User{Email: "jeremy@jeremy.com", PasswordHash: "h1"}))
	assert.Error(t, users.Create(ctx, &models.User{Email: "jeremy@jeremy.com", PasswordHash: "h2"}))
}

func TestUserStore_ListAndDeleteAll(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(openTestDB(t))

	require.NoError(t, users.Create(ctx, &models.User{Email: "jeremy@jeremy.com", PasswordHash: "h1"}))
	require.NoError(t, users.Create(ctx, &models.User{Email: "kelly@kelly.com", PasswordHash: "h2", IsAdmin: true}))

	all, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	n, err := users.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err = users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUserStore_TransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(openTestDB(t))
	require.NoError(t, users.Create(ctx, &models.User{Email: "jeremy@jeremy.com", PasswordHash: "h1"}))

	err := users.Transaction(ctx, func(tx *UserStore) error {
		if _, err := tx.DeleteAll(ctx); err != nil {
			return err
		}
		return tx.Create(ctx, &models.User{Email: "kelly@kelly.com"})
	})
	require.NoError(t, err)

	err = users.Transaction(ctx, func(tx *UserStore) error {
		if _, err := tx.DeleteAll(ctx); err != nil {
			return err
		}
		return errors.New("abort")
	})
	assert.EqualError(t, err, "abort")

	all, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "kelly@kelly.com", all[0].Email)
}

func TestUserStore_ClosedDatabaseIsUnavailable(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserStore(db)
	require.NoError(t, Close(db))

	_, err := users.FindByEmail(ctx, "jeremy@jeremy.com")
	assert.ErrorIs(t, err, auth.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, auth.ErrUserNotFound)

	_, err = users.List(ctx)
	assert.ErrorIs(t, err, auth.ErrStoreUnavailable)
}

func newMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestUserStore_Postgres_FindByEmail(t *testing.T) {
	db, mock := newMockPostgres(t)
	users := NewUserStore(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "email", "password_hash", "is_admin", "updated_at"}).
			AddRow("01JAXR3Z4W5Y6V7T8S9R0Q1P2N", now, "kelly@kelly.com", "hash", true, now))

	user, err := users.FindByEmail(context.Background(), "kelly@kelly.com")
	require.NoError(t, err)
	assert.Equal(t, "kelly@kelly.com", user.Email)
	assert.True(t, user.IsAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_Postgres_Miss(t *testing.T) {
	db, mock := newMockPostgres(t)
	users := NewUserStore(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "email", "password_hash", "is_admin", "updated_at"}))

	_, err := users.FindByEmail(context.Background(), "nobody@nowhere.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_Postgres_ConnectionRefused(t *testing.T) {
	db, mock := newMockPostgres(t)
	users := NewUserStore(db)

	down := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnError(down)

	_, err := users.FindByEmail(context.Background(), "jeremy@jeremy.com")
	assert.ErrorIs(t, err, auth.ErrStoreUnavailable)
	assert.ErrorIs(t, err, down)
	assert.NotErrorIs(t, err, auth.ErrUserNotFound)
}
