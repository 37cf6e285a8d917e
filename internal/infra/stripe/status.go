package stripe

import (
	"strings"
	"time"

	"retail-saas/internal/domain/accounts"
	"retail-saas/internal/domain/plans"
)

// NormalizeStripeStatus folds provider subscription statuses into the few
// the account lifecycle cares about.
func NormalizeStripeStatus(s string) string {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return "none"
	case "active", "trialing":
		return "active"
	case "past_due", "unpaid", "incomplete":
		return "past_due"
	case "canceled", "incomplete_expired":
		return "canceled"
	default:
		return s
	}
}

// PlanChange is the account mutation a subscription state implies. Empty
// fields mean "leave as is".
type PlanChange struct {
	Plan          string
	Status        string
	PlanExpiresAt *time.Time
}

// ChangeFor maps a subscription status, billing interval and period end to
// account plan fields. Canceled subscriptions fall back to the free plan
// with the paid-through date as plan expiration, so access lapses at the
// boundary rather than immediately.
func ChangeFor(status, interval string, periodEnd time.Time) PlanChange {
	var end *time.Time
	if !periodEnd.IsZero() {
		end = &periodEnd
	}

	switch NormalizeStripeStatus(status) {
	case "active":
		return PlanChange{Plan: plans.PremiumForInterval(interval), Status: accounts.StatusActive, PlanExpiresAt: end}
	case "past_due":
		return PlanChange{Status: accounts.StatusBlocked}
	case "canceled":
		return PlanChange{Plan: plans.PlanFree, PlanExpiresAt: end}
	default:
		return PlanChange{}
	}
}
