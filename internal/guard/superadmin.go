package guard

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"retail-saas/internal/domain/access"
	"retail-saas/internal/domain/identity"
)

// ErrSecondaryAuthFailed is the only error a failed challenge surfaces, for a
// wrong password, a rate limit and a transport failure alike.
var ErrSecondaryAuthFailed = errors.New("secondary authentication failed")

type SecondaryVerifier interface {
	VerifySecondary(ctx context.Context, password string) (bool, error)
}

// SuperAdmin guards the super-admin surface. The elevated flag lives only on
// the guard and is cleared on every unmount.
type SuperAdmin struct {
	id       *identity.Identity
	verifier SecondaryVerifier

	mu       sync.Mutex
	gen      uint64
	mounted  bool
	elevated bool
}

func NewSuperAdmin(id *identity.Identity, v SecondaryVerifier) *SuperAdmin {
	return &SuperAdmin{id: id, verifier: v}
}

func (s *SuperAdmin) Mount() {
	s.mu.Lock()
	s.gen++
	s.mounted = true
	s.elevated = false
	s.mu.Unlock()
}

// Unmount clears the elevated flag. A verification still in flight is ignored.
func (s *SuperAdmin) Unmount() {
	s.mu.Lock()
	s.gen++
	s.mounted = false
	s.elevated = false
	s.mu.Unlock()
}

func (s *SuperAdmin) Elevated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elevated
}

func (s *SuperAdmin) Decision() access.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return access.DecideSuperAdmin(s.id, s.mounted && s.elevated)
}

// SubmitPassword runs the secondary challenge. Success elevates the guard for
// the rest of the current mount.
func (s *SuperAdmin) SubmitPassword(ctx context.Context, password string) error {
	s.mu.Lock()
	gen := s.gen
	d := access.DecideSuperAdmin(s.id, false)
	mounted := s.mounted
	s.mu.Unlock()

	if !mounted || d.State != access.StateAwaitingSecondaryAuth {
		return ErrSecondaryAuthFailed
	}

	ok, err := s.verifier.VerifySecondary(ctx, password)
	if err != nil {
		slog.Warn("secondary auth unavailable", "error", err)
		return ErrSecondaryAuthFailed
	}
	if !ok {
		return ErrSecondaryAuthFailed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return ErrSecondaryAuthFailed
	}
	s.elevated = true
	return nil
}
