package guard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"retail-saas/internal/client"
	"retail-saas/internal/domain/access"
	"retail-saas/internal/domain/identity"
	"retail-saas/internal/domain/permissions"
	"retail-saas/internal/domain/plans"

	"github.com/google/uuid"
)

type Oracle interface {
	BlockStatus(ctx context.Context) (bool, error)
}

type PermissionSource interface {
	Permissions(ctx context.Context, employeeID uint) (permissions.Set, bool, error)
}

type Options struct {
	Interval time.Duration
	// SkipOracleForPremium trusts a cached premium lifecycle and never polls.
	SkipOracleForPremium bool
	Now                  func() time.Time
}

// Route guards one ordinary protected view. Decisions are recomputed from the
// current inputs every time one of them changes.
type Route struct {
	id       *identity.Identity
	required permissions.Capability
	oracle   Oracle
	perms    PermissionSource
	opts     Options
	poller   *Poller

	mu                sync.Mutex
	mountID           string
	gen               uint64
	cancel            context.CancelFunc
	set               permissions.Set
	permissionsLoaded bool
	block             access.BlockObservation
	unauthenticated   bool
	last              access.Decision
	updates           chan access.Decision
}

func NewRoute(id *identity.Identity, required permissions.Capability, oracle Oracle, perms PermissionSource, opts Options) *Route {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := &Route{
		id:       id,
		required: required,
		oracle:   oracle,
		perms:    perms,
		opts:     opts,
		last:     access.Decision{State: access.StateChecking},
		updates:  make(chan access.Decision, 1),
	}
	r.poller = NewPoller(opts.Interval, func(ctx context.Context) (bool, error) {
		return r.oracle.BlockStatus(ctx)
	})
	return r
}

// Updates delivers the latest decision whenever it changes. Only the newest
// undelivered decision is kept.
func (r *Route) Updates() <-chan access.Decision { return r.updates }

func (r *Route) MountID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mountID
}

// Mount resets the guard to CHECKING and issues the permission fetch and the
// oracle poll concurrently. Mounting an already mounted guard remounts it.
func (r *Route) Mount(ctx context.Context) {
	r.Unmount()

	r.mu.Lock()
	r.gen++
	gen := r.gen
	mountCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mountID = uuid.NewString()
	r.set = nil
	r.permissionsLoaded = false
	r.block = access.BlockObservation{}
	r.unauthenticated = false

	needPermissions := r.id != nil && r.id.Valid() && r.id.Kind() == permissions.KindEmployee
	needOracle := r.needsOracle()
	if !needOracle && r.id != nil && r.id.Valid() && !r.id.IsMaster() {
		// trusted premium snapshot
		r.block = access.Observed(false)
	}
	r.publishLocked()
	r.mu.Unlock()

	slog.Debug("guard mounted", "mount_id", r.MountID(), "capability", r.required,
		"permissions", needPermissions, "oracle", needOracle)

	if needPermissions {
		go r.fetchPermissions(mountCtx, gen)
	}
	if needOracle {
		r.poller.Start(mountCtx,
			func(blocked bool) { r.observe(gen, blocked) },
			func(err error) { r.transportError(gen, err) },
		)
	}
}

// Unmount cancels the poller and any in-flight fetch. Responses that arrive
// afterwards are ignored.
func (r *Route) Unmount() {
	r.mu.Lock()
	r.gen++
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.poller.Stop()
}

// Decision recomputes the gate from the current inputs.
func (r *Route) Decision() access.Decision {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.decideLocked()
}

func (r *Route) needsOracle() bool {
	if r.id == nil || !r.id.Valid() || r.id.IsMaster() {
		return false
	}
	if r.opts.SkipOracleForPremium && plans.Evaluate(r.opts.Now(), r.id.Account) == plans.LifecyclePremium {
		return false
	}
	return true
}

func (r *Route) decideLocked() access.Decision {
	if r.unauthenticated {
		return access.Decision{State: access.StateRedirect, Redirect: access.RedirectLogin}
	}
	return access.Decide(access.Inputs{
		Identity:          r.id,
		Required:          r.required,
		Permissions:       r.set,
		PermissionsLoaded: r.permissionsLoaded,
		Block:             r.block,
	})
}

func (r *Route) publishLocked() {
	d := r.decideLocked()
	if d == r.last {
		return
	}
	r.last = d
	select {
	case <-r.updates:
	default:
	}
	r.updates <- d
}

func (r *Route) fetchPermissions(ctx context.Context, gen uint64) {
	for {
		set, found, err := r.perms.Permissions(ctx, r.id.UserID)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			if !found || set == nil {
				set = permissions.Set{}
			}
			r.mu.Lock()
			if r.gen == gen {
				r.set = set
				r.permissionsLoaded = true
				r.publishLocked()
			}
			r.mu.Unlock()
			return
		}

		slog.Warn("permission fetch failed", "user_id", r.id.UserID, "error", err)
		if r.lostSession(gen, err) {
			return
		}
		// retried until the first success; a resolved row is never re-polled
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.opts.Interval):
		}
	}
}

func (r *Route) observe(gen uint64, blocked bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		return
	}
	r.block = access.Observed(blocked)
	r.publishLocked()
}

// transportError keeps the prior observation. Only a rejected credential
// changes the decision.
func (r *Route) transportError(gen uint64, err error) {
	r.lostSession(gen, err)
}

func (r *Route) lostSession(gen uint64, err error) bool {
	if !errors.Is(err, client.ErrUnauthenticated) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen == gen {
		r.unauthenticated = true
		r.publishLocked()
	}
	return true
}
