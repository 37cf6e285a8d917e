package repository

import (
	"context"
	"errors"
	"time"

	"retail-saas/internal/domain/accounts"
	"retail-saas/internal/domain/permissions"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// BillingUpdate carries the plan fields a billing event mutates. Nil fields
// are left untouched.
type BillingUpdate struct {
	Plan             *string
	PlanExpiresAt    *time.Time
	Status           *string
	SubscriptionID   *string
	StripeCustomerID *string
}

func (u BillingUpdate) columns() map[string]interface{} {
	m := map[string]interface{}{}
	if u.Plan != nil {
		m["plano"] = *u.Plan
	}
	if u.PlanExpiresAt != nil {
		m["data_expiracao_plano"] = *u.PlanExpiresAt
	}
	if u.Status != nil {
		m["status"] = *u.Status
	}
	if u.SubscriptionID != nil {
		m["subscription_id"] = *u.SubscriptionID
	}
	if u.StripeCustomerID != nil {
		m["stripe_customer_id"] = *u.StripeCustomerID
	}
	return m
}

type AccountRepository interface {
	FindByID(ctx context.Context, id uint) (*accounts.Account, error)
	FindByEmail(ctx context.Context, email string) (*accounts.Account, error)
	FindBySubscriptionID(ctx context.Context, subscriptionID string) (*accounts.Account, error)
	List(ctx context.Context) ([]accounts.Account, error)
	UpdateBilling(ctx context.Context, id uint, u BillingUpdate) error
	SetStatus(ctx context.Context, id uint, status string) error
}

type EmployeeRepository interface {
	FindByID(ctx context.Context, id uint) (*accounts.Employee, error)
	FindByEmail(ctx context.Context, email string) (*accounts.Employee, error)
	SetStatus(ctx context.Context, id uint, status string) error
}

// PermissionRepository reads and writes Permission Set rows. A missing row is
// reported with found=false, not as an error.
type PermissionRepository interface {
	Find(ctx context.Context, employeeID uint) (set permissions.Set, found bool, err error)
	Save(ctx context.Context, employeeID uint, set permissions.Set) error
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
