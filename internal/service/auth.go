package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"retail-saas/internal/domain/identity"
	"retail-saas/internal/kv"
	"retail-saas/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticator resolves login credentials into an identity and issues the
// session token.
type Authenticator struct {
	accounts  repository.AccountRepository
	employees repository.EmployeeRepository
	secret    []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewAuthenticator(a repository.AccountRepository, e repository.EmployeeRepository, secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{accounts: a, employees: e, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Login tries owner accounts first, then employees. Wrong email and wrong
// password produce the same error.
func (s *Authenticator) Login(ctx context.Context, email, password string) (identity.Identity, string, error) {
	id, hash, err := s.lookup(ctx, email)
	if err != nil {
		return identity.Identity{}, "", err
	}
	if hash == nil || bcrypt.CompareHashAndPassword([]byte(*hash), []byte(password)) != nil {
		return identity.Identity{}, "", ErrInvalidCredentials
	}
	token, err := identity.Sign(s.secret, id, s.now(), s.ttl)
	if err != nil {
		return identity.Identity{}, "", fmt.Errorf("sign token: %w", err)
	}
	return id, token, nil
}

func (s *Authenticator) lookup(ctx context.Context, email string) (identity.Identity, *string, error) {
	acc, err := s.accounts.FindByEmail(ctx, email)
	if err == nil {
		return identity.Identity{
			UserID:    acc.ID,
			Email:     acc.Email,
			Type:      identity.TypeOwner,
			AdminFlag: identity.AdminFlag(acc.IsAdmin),
		}, acc.Password, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return identity.Identity{}, nil, fmt.Errorf("load account: %w", err)
	}

	emp, err := s.employees.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return identity.Identity{}, nil, ErrInvalidCredentials
		}
		return identity.Identity{}, nil, fmt.Errorf("load employee: %w", err)
	}
	return identity.Identity{
		UserID:    emp.ID,
		Email:     emp.Email,
		Type:      identity.TypeEmployee,
		AccountID: emp.AccountID,
		AdminFlag: identity.AdminFlag(false),
	}, emp.Password, nil
}

// SecondaryVerifier checks the super-admin secondary password. It only ever
// answers valid or not; rate limiting and errors look like a wrong password.
type SecondaryVerifier struct {
	hash    []byte
	limiter *kv.Limiter
}

func NewSecondaryVerifier(hash string, limiter *kv.Limiter) *SecondaryVerifier {
	return &SecondaryVerifier{hash: []byte(hash), limiter: limiter}
}

func (v *SecondaryVerifier) Verify(ctx context.Context, caller identity.Identity, password string) bool {
	if !caller.IsMaster() || !caller.IsAdmin() || len(v.hash) == 0 {
		return false
	}
	key := strconv.FormatUint(uint64(caller.UserID), 10)
	ok, err := v.limiter.Allow(ctx, key)
	if err != nil {
		slog.Warn("secondary auth limiter unavailable", "error", err)
		return false
	}
	if !ok {
		slog.Warn("secondary auth rate limited", "user_id", caller.UserID)
		return false
	}
	if bcrypt.CompareHashAndPassword(v.hash, []byte(password)) != nil {
		return false
	}
	v.limiter.Reset(ctx, key)
	return true
}
