package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"retail-saas/internal/domain/access"
	"retail-saas/internal/domain/accounts"
	"retail-saas/internal/domain/identity"
	"retail-saas/internal/domain/permissions"
	"retail-saas/internal/repository"
)

var ErrUnknownIdentity = errors.New("identity no longer exists")

// Gatekeeper evaluates gating state server-side from fresh rows on every call.
type Gatekeeper struct {
	accounts    repository.AccountRepository
	employees   repository.EmployeeRepository
	permissions repository.PermissionRepository
	now         func() time.Time
}

func NewGatekeeper(a repository.AccountRepository, e repository.EmployeeRepository, p repository.PermissionRepository) *Gatekeeper {
	return &Gatekeeper{accounts: a, employees: e, permissions: p, now: time.Now}
}

// WithClock replaces the wall clock, for tests.
func (g *Gatekeeper) WithClock(now func() time.Time) *Gatekeeper {
	g.now = now
	return g
}

// tenant loads the owning account (always by tenant id) and, for employees,
// the employee row.
func (g *Gatekeeper) tenant(ctx context.Context, id identity.Identity) (*accounts.Account, *accounts.Employee, error) {
	var emp *accounts.Employee
	if id.IsEmployee() {
		e, err := g.employees.FindByID(ctx, id.UserID)
		if err != nil {
			return nil, nil, lookupErr("employee", err)
		}
		if e.AccountID != id.TenantID() {
			return nil, nil, ErrUnknownIdentity
		}
		emp = e
	}
	acc, err := g.accounts.FindByID(ctx, id.TenantID())
	if err != nil {
		return nil, nil, lookupErr("account", err)
	}
	return acc, emp, nil
}

func lookupErr(what string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUnknownIdentity
	}
	return fmt.Errorf("load %s: %w", what, err)
}

// Snapshot builds the identity snapshot handed to clients, with the tenant's
// current plan fields.
func (g *Gatekeeper) Snapshot(ctx context.Context, id identity.Identity) (identity.Identity, error) {
	acc, _, err := g.tenant(ctx, id)
	if err != nil {
		return identity.Identity{}, err
	}
	id.Account = acc.PlanSnapshot()
	return id, nil
}

// BlockStatus answers the oracle question for the caller's tenant.
func (g *Gatekeeper) BlockStatus(ctx context.Context, id identity.Identity) (bool, error) {
	if id.IsMaster() {
		return false, nil
	}
	acc, emp, err := g.tenant(ctx, id)
	if err != nil {
		return false, err
	}
	return access.IsBlocked(g.now(), *acc, emp), nil
}

// EmployeePermissions returns the stored row for an employee of the caller's
// tenant. found=false is a valid answer meaning every capability is off.
func (g *Gatekeeper) EmployeePermissions(ctx context.Context, caller identity.Identity, employeeID uint) (permissions.Set, bool, error) {
	if caller.IsEmployee() && caller.UserID != employeeID {
		return nil, false, ErrForbidden
	}
	e, err := g.employees.FindByID(ctx, employeeID)
	if err != nil {
		return nil, false, lookupErr("employee", err)
	}
	if !caller.IsMaster() && e.AccountID != caller.TenantID() {
		return nil, false, ErrForbidden
	}
	return g.permissions.Find(ctx, employeeID)
}

// Decide runs the ordinary-route composition for one capability.
func (g *Gatekeeper) Decide(ctx context.Context, id identity.Identity, required permissions.Capability) (access.Decision, error) {
	in := access.Inputs{Identity: &id, Required: required}
	if id.IsMaster() {
		return access.Decide(in), nil
	}

	acc, emp, err := g.tenant(ctx, id)
	if err != nil {
		return access.Decision{State: access.StateChecking}, err
	}
	in.Block = access.Observed(access.IsBlocked(g.now(), *acc, emp))
	in.Identity.Account = acc.PlanSnapshot()

	if id.IsEmployee() {
		set, _, err := g.permissions.Find(ctx, id.UserID)
		if err != nil {
			return access.Decision{State: access.StateChecking}, fmt.Errorf("load permissions: %w", err)
		}
		in.Permissions = set
		in.PermissionsLoaded = true
	}
	return access.Decide(in), nil
}
