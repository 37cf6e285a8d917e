package plans

import "time"

// Snapshot holds the account fields the lifecycle evaluator reads.
type Snapshot struct {
	Plan           string     `json:"plano"`
	TrialExpiresAt *time.Time `json:"data_expiracao_trial"`
	PlanExpiresAt  *time.Time `json:"data_expiracao_plano"`
}

// Expiration returns the governing expiration timestamp.
// Plan expiration wins over trial expiration when both are set.
func (s Snapshot) Expiration() *time.Time {
	if s.PlanExpiresAt != nil {
		return s.PlanExpiresAt
	}
	return s.TrialExpiresAt
}
