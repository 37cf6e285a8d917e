package plans

import "time"

type Lifecycle string

const (
	LifecyclePremium      Lifecycle = "premium"
	LifecycleTrialActive  Lifecycle = "trial_active"
	LifecycleTrialExpired Lifecycle = "trial_expired"
	LifecycleFree         Lifecycle = "free"
)

// Evaluate computes the plan state at now. It is a pure function and must be
// called again whenever now moves; the boundary is wall-clock time only.
func Evaluate(now time.Time, s Snapshot) Lifecycle {
	if IsPremium(s.Plan) {
		return LifecyclePremium
	}

	exp := s.Expiration()
	if exp == nil {
		return LifecycleFree
	}
	if now.Before(*exp) {
		return LifecycleTrialActive
	}
	return LifecycleTrialExpired
}

// DaysLeft returns whole days until the governing expiration, 0 once passed,
// nil when no clock was ever started.
func DaysLeft(now time.Time, s Snapshot) *int {
	exp := s.Expiration()
	if exp == nil {
		return nil
	}
	d := 0
	if now.Before(*exp) {
		d = int(exp.Sub(now).Hours() / 24)
	}
	return &d
}
