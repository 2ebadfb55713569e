package model

import (
	"database/sql"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is a DB-backed login session. The access token is stored so that a
// logout immediately invalidates tokens that are otherwise still unexpired.
type Session struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Token        string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func CreateSession(db *sql.DB, userID int64, token, refreshToken string, expiresAt time.Time) (*Session, error) {
	now := time.Now().UTC()
	result, err := db.Exec(`
		INSERT INTO sessions (user_id, token, refresh_token, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		userID, token, refreshToken, expiresAt, now)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, UserID: userID, Token: token, RefreshToken: refreshToken, ExpiresAt: expiresAt, CreatedAt: now}, nil
}

func GetSessionByToken(db *sql.DB, token string) (*Session, error) {
	var s Session
	err := db.QueryRow(`
		SELECT id, user_id, token, refresh_token, expires_at, created_at
		FROM sessions WHERE token = ? AND expires_at > ?`, token, time.Now().UTC()).
		Scan(&s.ID, &s.UserID, &s.Token, &s.RefreshToken, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func GetSessionByRefreshToken(db *sql.DB, refreshToken string) (*Session, error) {
	var s Session
	err := db.QueryRow(`
		SELECT id, user_id, token, refresh_token, expires_at, created_at
		FROM sessions WHERE refresh_token = ?`, refreshToken).
		Scan(&s.ID, &s.UserID, &s.Token, &s.RefreshToken, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateTokens rotates the session's tokens after a refresh.
func (s *Session) UpdateTokens(db *sql.DB, token, refreshToken string, expiresAt time.Time) error {
	_, err := db.Exec(`UPDATE sessions SET token = ?, refresh_token = ?, expires_at = ? WHERE id = ?`,
		token, refreshToken, expiresAt, s.ID)
	if err == nil {
		s.Token = token
		s.RefreshToken = refreshToken
		s.ExpiresAt = expiresAt
	}
	return err
}

func DeleteSessionByToken(db *sql.DB, token string) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}

func DeleteSessionsForUser(db *sql.DB, userID int64) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}
