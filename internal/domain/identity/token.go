package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the session credential. It carries the identity, never the plan:
// plan and block state are always read fresh.
type Claims struct {
	UserID    uint        `json:"user_id"`
	Email     string      `json:"email"`
	Type      AccountType `json:"account_type"`
	AccountID uint        `json:"account_id,omitempty"`
	AdminFlag string      `json:"is_admin"`
	jwt.RegisteredClaims
}

func (c Claims) Identity() Identity {
	return Identity{
		UserID:    c.UserID,
		Email:     c.Email,
		Type:      c.Type,
		AccountID: c.AccountID,
		AdminFlag: c.AdminFlag,
	}
}

func Sign(secret []byte, id Identity, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:    id.UserID,
		Email:     id.Email,
		Type:      id.Type,
		AccountID: id.AccountID,
		AdminFlag: id.AdminFlag,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%s:%d", id.Type, id.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func Parse(secret []byte, token string) (Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	id := claims.Identity()
	if !id.Valid() {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}
