// backend/src/security/auth_service.go
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/username/splitledger/backend/src/config"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWrongScope   = errors.New("token has the wrong scope")
)

// AuthService issues and validates the JWT access and refresh tokens used by
// the API.
type AuthService struct {
	jwtSecret []byte
}

func NewAuthService(jwtSecret string) *AuthService {
	return &AuthService{jwtSecret: []byte(jwtSecret)}
}

type tokenClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// GenerateToken creates a short-lived access token for the given user ID.
func (s *AuthService) GenerateToken(userID string) (string, error) {
	return s.generate(userID, "access", config.Cfg.AccessTokenExpiry)
}

// GenerateRefreshToken creates a long-lived refresh token for the given user ID.
func (s *AuthService) GenerateRefreshToken(userID string) (string, error) {
	return s.generate(userID, "refresh", config.Cfg.RefreshTokenExpiry)
}

func (s *AuthService) generate(userID, scope string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", scope, err)
	}
	return signed, nil
}

// ValidateToken verifies an access token and returns the user ID it carries.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	return s.validate(tokenString, "access")
}

// ValidateRefreshToken verifies a refresh token and returns the user ID it carries.
func (s *AuthService) ValidateRefreshToken(tokenString string) (string, error) {
	return s.validate(tokenString, "refresh")
}

func (s *AuthService) validate(tokenString, scope string) (string, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Scope != scope {
		return "", ErrWrongScope
	}
	return claims.Subject, nil
}
