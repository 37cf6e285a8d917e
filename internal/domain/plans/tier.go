package plans

import "strings"

// Plan values stored on the account row
const (
	PlanFree          = "free"
	PlanTrial         = "trial"
	PlanPremium       = "premium"
	PlanPremiumMensal = "premium_mensal"
	PlanPremiumAnual  = "premium_anual"
)

// IsPremium reports whether plan is "premium" or any "premium_*" variant.
func IsPremium(plan string) bool {
	p := strings.ToLower(strings.TrimSpace(plan))
	return p == PlanPremium || strings.HasPrefix(p, PlanPremium+"_")
}

// IsTrialOrFree is used to pick the suspension message: an expired
// trial/free account gets trial messaging, anything else is payment pending.
func IsTrialOrFree(plan string) bool {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case PlanFree, PlanTrial:
		return true
	}
	return false
}

// PremiumForInterval maps a billing interval ("month"/"year") to a plan value.
func PremiumForInterval(interval string) string {
	if strings.EqualFold(strings.TrimSpace(interval), "year") {
		return PlanPremiumAnual
	}
	return PlanPremiumMensal
}
