package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/artontop/artontop/config"
)

// SessionClaims is the payload of the session cookie. The session carries nothing but the user id.
type SessionClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// IssueSession signs a session token for userID valid for the configured TTL.
func IssueSession(userID uint) (string, *SessionClaims, error) {
	cfg := config.Get()
	now := time.Now()
	claims := &SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.SessionTTLHours) * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SessionSecret))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseSession validates a session token and returns its claims.
func ParseSession(tokenStr string) (*SessionClaims, error) {
	secret := []byte(config.Get().SessionSecret)
	parsed, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid session claims")
	}
	return claims, nil
}
