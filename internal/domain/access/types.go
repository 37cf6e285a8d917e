package access

type State string

const (
	StateChecking              State = "checking"
	StateAllowed               State = "allowed"
	StateBlockedBilling        State = "blocked_billing"
	StateBlockedPermission     State = "blocked_permission"
	StateAwaitingSecondaryAuth State = "awaiting_secondary_auth"
	// StateRedirect is terminal and outside the guard state machine.
	StateRedirect State = "redirect"
)

type BlockReason string

const (
	ReasonNone           BlockReason = ""
	ReasonTrialExpired   BlockReason = "trial_expired"
	ReasonPaymentPending BlockReason = "payment_pending"
)

const (
	RedirectLogin     = "/login"
	RedirectDashboard = "/dashboard"
)

type Decision struct {
	State    State       `json:"state"`
	Redirect string      `json:"redirect,omitempty"`
	Reason   BlockReason `json:"reason,omitempty"`
}

func (d Decision) Terminal() bool { return d.State != StateChecking }

// BlockObservation is the latest oracle answer. Known is false until the
// first successful response.
type BlockObservation struct {
	Known   bool
	Blocked bool
}

func Observed(blocked bool) BlockObservation {
	return BlockObservation{Known: true, Blocked: blocked}
}
