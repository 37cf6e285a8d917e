package repository

import (
	"context"
	"sort"
	"sync"

	"retail-saas/internal/domain/accounts"
	"retail-saas/internal/domain/permissions"
)

// Memory is an in-process store implementing every repository interface.
// Used for local runs without a database and by handler tests.
type Memory struct {
	mu          sync.RWMutex
	accounts    map[uint]accounts.Account
	employees   map[uint]accounts.Employee
	permissions map[uint]permissions.Set
}

func NewMemory() *Memory {
	return &Memory{
		accounts:    map[uint]accounts.Account{},
		employees:   map[uint]accounts.Employee{},
		permissions: map[uint]permissions.Set{},
	}
}

func (m *Memory) PutAccount(a accounts.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = a
}

func (m *Memory) PutEmployee(e accounts.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
}

func (m *Memory) Accounts() AccountRepository       { return memoryAccounts{m} }
func (m *Memory) Employees() EmployeeRepository     { return memoryEmployees{m} }
func (m *Memory) Permissions() PermissionRepository { return memoryPermissions{m} }

type memoryAccounts struct{ m *Memory }

func (r memoryAccounts) FindByID(_ context.Context, id uint) (*accounts.Account, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	a, ok := r.m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r memoryAccounts) find(match func(accounts.Account) bool) (*accounts.Account, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, a := range r.m.accounts {
		if match(a) {
			a := a
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryAccounts) FindByEmail(_ context.Context, email string) (*accounts.Account, error) {
	return r.find(func(a accounts.Account) bool { return a.Email == email })
}

func (r memoryAccounts) FindBySubscriptionID(_ context.Context, id string) (*accounts.Account, error) {
	return r.find(func(a accounts.Account) bool { return a.SubscriptionID != nil && *a.SubscriptionID == id })
}

func (r memoryAccounts) List(_ context.Context) ([]accounts.Account, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	list := make([]accounts.Account, 0, len(r.m.accounts))
	for _, a := range r.m.accounts {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r memoryAccounts) UpdateBilling(_ context.Context, id uint, u BillingUpdate) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.accounts[id]
	if !ok {
		return ErrNotFound
	}
	if u.Plan != nil {
		a.Plan = *u.Plan
	}
	if u.PlanExpiresAt != nil {
		t := *u.PlanExpiresAt
		a.PlanExpiresAt = &t
	}
	if u.Status != nil {
		a.Status = *u.Status
	}
	if u.SubscriptionID != nil {
		s := *u.SubscriptionID
		a.SubscriptionID = &s
	}
	if u.StripeCustomerID != nil {
		s := *u.StripeCustomerID
		a.StripeCustomerID = &s
	}
	r.m.accounts[id] = a
	return nil
}

func (r memoryAccounts) SetStatus(ctx context.Context, id uint, status string) error {
	return r.UpdateBilling(ctx, id, BillingUpdate{Status: &status})
}

type memoryEmployees struct{ m *Memory }

func (r memoryEmployees) withAccount(e accounts.Employee) *accounts.Employee {
	if a, ok := r.m.accounts[e.AccountID]; ok {
		e.Account = a
	}
	return &e
}

func (r memoryEmployees) FindByID(_ context.Context, id uint) (*accounts.Employee, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	e, ok := r.m.employees[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.withAccount(e), nil
}

func (r memoryEmployees) FindByEmail(_ context.Context, email string) (*accounts.Employee, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, e := range r.m.employees {
		if e.Email == email {
			return r.withAccount(e), nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryEmployees) SetStatus(_ context.Context, id uint, status string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.employees[id]
	if !ok {
		return ErrNotFound
	}
	e.Status = status
	r.m.employees[id] = e
	return nil
}

type memoryPermissions struct{ m *Memory }

func (r memoryPermissions) Find(_ context.Context, employeeID uint) (permissions.Set, bool, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	s, ok := r.m.permissions[employeeID]
	if !ok {
		return permissions.Set{}, false, nil
	}
	return s.Normalize(), true, nil
}

func (r memoryPermissions) Save(_ context.Context, employeeID uint, set permissions.Set) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.permissions[employeeID] = set.Normalize()
	return nil
}
