package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/require"

	"github.com/branchd-dev/authgate/internal/models"
	"github.com/branchd-dev/authgate/internal/store"
)

func TestListUsers(t *testing.T) {
	ts := newTestServer(t)

	t.Run("no session", func(t *testing.T) {
		apitest.New().
			Handler(ts.Handler()).
			Get("/users").
			Expect(t).
			Status(http.StatusUnauthorized).
			Body(`{"status":"Please log in"}`).
			End()
	})

	t.Run("garbage token", func(t *testing.T) {
		apitest.New().
			Handler(ts.Handler()).
			Get("/users").
			Cookie(cookieName, "not-a-token").
			Expect(t).
			Status(http.StatusUnauthorized).
			Body(`{"status":"Please log in"}`).
			End()
	})

	for _, login := range []struct{ email, password string }{
		{userEmail, userPassword},
		{adminEmail, adminPassword},
	} {
		t.Run(login.email, func(t *testing.T) {
			apitest.New().
				Handler(ts.Handler()).
				Get("/users").
				Cookie(cookieName, ts.loginToken(t, login.email, login.password)).
				Expect(t).
				Status(http.StatusOK).
				Assert(jsonpath.Equal("$.status", "success")).
				Assert(jsonpath.Len("$.users", 2)).
				Assert(jsonpath.Contains("$.users[*].email", userEmail)).
				Assert(jsonpath.Contains("$.users[*].email", adminEmail)).
				Assert(jsonpath.NotPresent("$.users[0].is_admin")).
				End()
		})
	}
}

func TestAdminListUsers(t *testing.T) {
	ts := newTestServer(t)

	t.Run("no session", func(t *testing.T) {
		apitest.New().
			Handler(ts.Handler()).
			Get("/users/admin").
			Expect(t).
			Status(http.StatusUnauthorized).
			Body(`{"status":"Please log in"}`).
			End()
	})

	t.Run("non-admin", func(t *testing.T) {
		apitest.New().
			Handler(ts.Handler()).
			Get("/users/admin").
			Cookie(cookieName, ts.loginToken(t, userEmail, userPassword)).
			Expect(t).
			Status(http.StatusUnauthorized).
			Body(`{"status":"You are not authorized"}`).
			End()
	})

	t.Run("admin", func(t *testing.T) {
		apitest.New().
			Handler(ts.Handler()).
			Get("/users/admin").
			Cookie(cookieName, ts.loginToken(t, adminEmail, adminPassword)).
			Expect(t).
			Status(http.StatusOK).
			Assert(jsonpath.Equal("$.status", "success")).
			Assert(jsonpath.Len("$.users", 2)).
			Assert(jsonpath.Present("$.users[0].id")).
			Assert(jsonpath.Present("$.users[0].created_at")).
			Assert(jsonpath.Contains("$.users[*].is_admin", true)).
			Assert(jsonpath.NotPresent("$.users[0].password_hash")).
			End()
	})

	t.Run("bearer header", func(t *testing.T) {
		apitest.New().
			Handler(ts.Handler()).
			Get("/users/admin").
			Header("Authorization", "Bearer "+ts.loginToken(t, adminEmail, adminPassword)).
			Expect(t).
			Status(http.StatusOK).
			End()
	})
}

func TestAdminListUsers_RoleChangeAppliesImmediately(t *testing.T) {
	ts := newTestServer(t)
	token := ts.loginToken(t, userEmail, userPassword)

	require.NoError(t, ts.db.Model(&models.User{}).Where("email = ?", userEmail).Update("is_admin", true).Error)

	apitest.New().
		Handler(ts.Handler()).
		Get("/users/admin").
		Cookie(cookieName, token).
		Expect(t).
		Status(http.StatusOK).
		End()
}

func TestAdminListUsers_DeletedUserIsLoggedOut(t *testing.T) {
	ts := newTestServer(t)
	token := ts.loginToken(t, adminEmail, adminPassword)

	_, err := store.NewUserStore(ts.db).DeleteAll(context.Background())
	require.NoError(t, err)

	apitest.New().
		Handler(ts.Handler()).
		Get("/users/admin").
		Cookie(cookieName, token).
		Expect(t).
		Status(http.StatusUnauthorized).
		Body(`{"status":"Please log in"}`).
		End()
}

func TestStoreUnavailable(t *testing.T) {
	ts := newTestServer(t)
	token := ts.loginToken(t, adminEmail, adminPassword)

	require.NoError(t, store.Close(ts.db))

	for _, path := range []string{"/users", "/users/admin"} {
		apitest.New().
			Handler(ts.Handler()).
			Get(path).
			Cookie(cookieName, token).
			Expect(t).
			Status(http.StatusInternalServerError).
			Body(`{"status":"Internal server error"}`).
			End()
	}

	apitest.New().
		Handler(ts.Handler()).
		Post("/auth/login").
		JSON(`{"email":"kelly@kelly.com","password":"bryant123"}`).
		Expect(t).
		Status(http.StatusInternalServerError).
		End()
}

func TestListUsers_StaleCookieFallsBackToBearer(t *testing.T) {
	ts := newTestServer(t)
	token := ts.loginToken(t, adminEmail, adminPassword)

	apitest.New().
		Handler(ts.Handler()).
		Get("/users").
		Cookie(cookieName, "stale").
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusOK).
		End()

	// a live cookie decides, even when a bearer token is also sent
	apitest.New().
		Handler(ts.Handler()).
		Get("/users/admin").
		Cookie(cookieName, ts.loginToken(t, userEmail, userPassword)).
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusUnauthorized).
		Body(`{"status":"You are not authorized"}`).
		End()
}
