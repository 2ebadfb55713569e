package model

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"
)

var ErrRecoveryNotFound = errors.New("password recovery token not found")

// PasswordRecovery is a pending password reset request. The token is handed
// to the user out of band and exchanged exactly once for a new password.
type PasswordRecovery struct {
	ID         int64
	UserID     int64
	Token      string
	ValidUntil time.Time
	CreatedAt  time.Time
}

// Expired reports whether the token's validity window has passed.
func (p *PasswordRecovery) Expired() bool {
	return time.Now().UTC().After(p.ValidUntil)
}

func newRecoveryToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CreatePasswordRecovery stores a fresh recovery token for the user.
func CreatePasswordRecovery(db *sql.DB, userID int64, validity time.Duration) (*PasswordRecovery, error) {
	token, err := newRecoveryToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	recovery := &PasswordRecovery{
		UserID:     userID,
		Token:      token,
		ValidUntil: now.Add(validity),
		CreatedAt:  now,
	}
	result, err := db.Exec(`
		INSERT INTO pending_password_recovery (user_id, token, valid_until, created_at)
		VALUES (?, ?, ?, ?)`,
		recovery.UserID, recovery.Token, recovery.ValidUntil, recovery.CreatedAt)
	if err != nil {
		return nil, err
	}
	recovery.ID, err = result.LastInsertId()
	return recovery, err
}

func GetPasswordRecoveryByToken(db *sql.DB, token string) (*PasswordRecovery, error) {
	var p PasswordRecovery
	err := db.QueryRow(`
		SELECT id, user_id, token, valid_until, created_at
		FROM pending_password_recovery WHERE token = ?`, token).
		Scan(&p.ID, &p.UserID, &p.Token, &p.ValidUntil, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecoveryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePasswordRecoveriesForUser removes every pending token of a user,
// typically after one of them has been redeemed.
func DeletePasswordRecoveriesForUser(db *sql.DB, userID int64) error {
	_, err := db.Exec(`DELETE FROM pending_password_recovery WHERE user_id = ?`, userID)
	return err
}
