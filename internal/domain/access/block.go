package access

import (
	"time"

	"retail-saas/internal/domain/accounts"
	"retail-saas/internal/domain/identity"
	"retail-saas/internal/domain/plans"
)

// IsBlocked is what the block-status oracle answers for a tenant. An employee
// is blocked by an explicit admin action on its own row or when its owning
// account is blocked. The master identity is never blocked.
func IsBlocked(now time.Time, account accounts.Account, employee *accounts.Employee) bool {
	if identity.IsMasterEmail(account.Email) && employee == nil {
		return false
	}
	if employee != nil && employee.Blocked() {
		return true
	}
	if account.Blocked() {
		return true
	}
	return plans.Evaluate(now, account.PlanSnapshot()) == plans.LifecycleTrialExpired
}
