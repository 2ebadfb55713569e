package model

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
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

	_, err = db.Exec(`
		CREATE TABLE pending_password_recovery (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id     INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			token       TEXT    NOT NULL UNIQUE,
			valid_until TIMESTAMP NOT NULL,
			created_at  TIMESTAMP NOT NULL
		)`)
	require.NoError(t, err)
	return db
}

func createTestUser(t *testing.T, db *sql.DB) *User {
	t.Helper()
	user := &User{Username: "alice", Email: "alice@example.com", AuthProvider: "local"}
	require.NoError(t, user.HashPassword("correct horse battery"))
	require.NoError(t, user.CreateUser(db))
	return user
}

func TestPasswordRecoveryLifecycle(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)

	recovery, err := CreatePasswordRecovery(db, user.ID, time.Hour)
	require.NoError(t, err)
	assert.Len(t, recovery.Token, 64)
	assert.False(t, recovery.Expired())

	loaded, err := GetPasswordRecoveryByToken(db, recovery.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.UserID)
	assert.Equal(t, recovery.Token, loaded.Token)

	require.NoError(t, DeletePasswordRecoveriesForUser(db, user.ID))
	_, err = GetPasswordRecoveryByToken(db, recovery.Token)
	assert.ErrorIs(t, err, ErrRecoveryNotFound)
}

func TestPasswordRecoveryExpired(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)

	recovery, err := CreatePasswordRecovery(db, user.ID, -time.Minute)
	require.NoError(t, err)
	assert.True(t, recovery.Expired())
}

func TestPasswordRecoveryUnknownToken(t *testing.T) {
	db := newTestDB(t)

	_, err := GetPasswordRecoveryByToken(db, "no-such-token")
	assert.ErrorIs(t, err, ErrRecoveryNotFound)
}

func TestPasswordRecoveryTokensAreUnique(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)

	first, err := CreatePasswordRecovery(db, user.ID, time.Hour)
	require.NoError(t, err)
	second, err := CreatePasswordRecovery(db, user.ID, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)
}
