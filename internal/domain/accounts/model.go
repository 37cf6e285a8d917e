package accounts

import (
	"time"

	"retail-saas/internal/domain/plans"
)

const (
	StatusActive  = "ativo"
	StatusBlocked = "bloqueado"
)

// Account is the billed tenant (store owner).
type Account struct {
	ID       uint    `gorm:"primaryKey"`
	Name     string
	Email    string  `gorm:"not null;uniqueIndex:idx_accounts_email"`
	Password *string `gorm:""`

	Plan           string     `gorm:"column:plano;type:varchar(20);not null;default:'trial'"`
	IsAdmin        bool       `gorm:"column:is_admin;not null;default:false"`
	TrialExpiresAt *time.Time `gorm:"column:data_expiracao_trial"`
	PlanExpiresAt  *time.Time `gorm:"column:data_expiracao_plano"`
	Status         string     `gorm:"type:varchar(20);not null;default:'ativo'"`

	MaxEmployees            int        `gorm:"column:max_funcionarios;not null;default:0"`
	EmployeePackageExpireAt *time.Time `gorm:"column:data_expiracao_pacote_funcionarios"`

	StripeCustomerID *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_accounts_stripe_customer_id"`
	SubscriptionID   *string `gorm:"column:subscription_id;uniqueIndex:idx_accounts_subscription_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a Account) PlanSnapshot() plans.Snapshot {
	return plans.Snapshot{
		Plan:           a.Plan,
		TrialExpiresAt: a.TrialExpiresAt,
		PlanExpiresAt:  a.PlanExpiresAt,
	}
}

func (a Account) Blocked() bool { return a.Status == StatusBlocked }

// Employee is a non-billed identity scoped to one Account.
type Employee struct {
	ID        uint    `gorm:"primaryKey"`
	AccountID uint    `gorm:"not null;index"`
	Account   Account `gorm:"constraint:OnDelete:CASCADE"`
	Name      string
	Email     string  `gorm:"not null;uniqueIndex:idx_employees_email"`
	Password  *string `gorm:""`
	Status    string  `gorm:"type:varchar(20);not null;default:'ativo'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e Employee) Blocked() bool { return e.Status == StatusBlocked }
