package service

import (
	"context"
	"errors"
	"fmt"

	"retail-saas/internal/domain/accounts"
	"retail-saas/internal/domain/identity"
	"retail-saas/internal/domain/permissions"
	"retail-saas/internal/repository"
)

var ErrNotFound = errors.New("not found")

// Accounts holds the admin-side mutations: account block/unblock for the
// super-admin surface, employee permissions and block state for tenants.
type Accounts struct {
	accounts    repository.AccountRepository
	employees   repository.EmployeeRepository
	permissions repository.PermissionRepository
}

func NewAccounts(a repository.AccountRepository, e repository.EmployeeRepository, p repository.PermissionRepository) *Accounts {
	return &Accounts{accounts: a, employees: e, permissions: p}
}

func (s *Accounts) List(ctx context.Context) ([]accounts.Account, error) {
	return s.accounts.List(ctx)
}

func (s *Accounts) SetAccountStatus(ctx context.Context, accountID uint, blocked bool) error {
	acc, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return notFound(err)
	}
	if identity.IsMasterEmail(acc.Email) {
		return ErrForbidden
	}
	return notFound(s.accounts.SetStatus(ctx, accountID, statusFor(blocked)))
}

// employeeInTenant loads an employee and checks it belongs to the caller's tenant.
func (s *Accounts) employeeInTenant(ctx context.Context, caller identity.Identity, employeeID uint) (*accounts.Employee, error) {
	e, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		return nil, notFound(err)
	}
	if !caller.IsMaster() && e.AccountID != caller.TenantID() {
		return nil, ErrForbidden
	}
	if caller.IsEmployee() && caller.UserID == employeeID {
		return nil, ErrForbidden
	}
	return e, nil
}

func (s *Accounts) SetEmployeeStatus(ctx context.Context, caller identity.Identity, employeeID uint, blocked bool) error {
	if _, err := s.employeeInTenant(ctx, caller, employeeID); err != nil {
		return err
	}
	return notFound(s.employees.SetStatus(ctx, employeeID, statusFor(blocked)))
}

func (s *Accounts) SaveEmployeePermissions(ctx context.Context, caller identity.Identity, employeeID uint, set permissions.Set) (permissions.Set, error) {
	if _, err := s.employeeInTenant(ctx, caller, employeeID); err != nil {
		return nil, err
	}
	normalized := set.Normalize()
	if err := s.permissions.Save(ctx, employeeID, normalized); err != nil {
		return nil, fmt.Errorf("save permissions: %w", err)
	}
	return normalized, nil
}

func statusFor(blocked bool) string {
	if blocked {
		return accounts.StatusBlocked
	}
	return accounts.StatusActive
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
