package handlers

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/splitledger/backend/src/model"
	_ "modernc.org/sqlite"
)

func newUserTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Each pooled connection would get its own in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT    NOT NULL UNIQUE,
			email         TEXT    NOT NULL UNIQUE,
			password      TEXT    NOT NULL DEFAULT '',
			auth_provider TEXT    NOT NULL DEFAULT 'local',
			is_verified   INTEGER NOT NULL DEFAULT 0,
			created_at    TIMESTAMP NOT NULL,
			updated_at    TIMESTAMP NOT NULL
		)`)
	require.NoError(t, err)
	return db
}

func TestFindOrCreateGoogleUserCreatesOnFirstLogin(t *testing.T) {
	db := newUserTestDB(t)

	user, err := findOrCreateGoogleUser(db, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "google", user.AuthProvider)
	assert.True(t, user.IsVerified)

	again, err := findOrCreateGoogleUser(db, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestFindOrCreateGoogleUserRejectsLocalAccount(t *testing.T) {
	db := newUserTestDB(t)

	local := &model.User{Username: "bob", Email: "bob@example.com", AuthProvider: "local"}
	require.NoError(t, local.HashPassword("hunter2hunter2"))
	require.NoError(t, local.CreateUser(db))

	_, err := findOrCreateGoogleUser(db, "bob@example.com")
	assert.ErrorIs(t, err, errAccountNotLinkable)
}

func TestFindOrCreateGoogleUserPropagatesLookupFailure(t *testing.T) {
	db := newUserTestDB(t)
	require.NoError(t, db.Close())

	// A transient lookup failure must abort the login, not fall through to a
	// duplicate user insert.
	_, err := findOrCreateGoogleUser(db, "new@example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errAccountNotLinkable)
	assert.NotErrorIs(t, err, model.ErrUserNotFound)
}
