package access

import (
	"retail-saas/internal/domain/identity"
	"retail-saas/internal/domain/permissions"
	"retail-saas/internal/domain/plans"
)

// Inputs is everything one decision for an ordinary protected view depends on.
type Inputs struct {
	Identity *identity.Identity
	Required permissions.Capability
	// Permissions is the employee's stored row. Nil means the fetch has not
	// resolved yet; an empty Set means the row does not exist. Ignored for
	// owners and the master identity.
	Permissions permissions.Set
	// PermissionsLoaded is set once the permission fetch resolved.
	PermissionsLoaded bool
	Block             BlockObservation
}

// Decide composes identity, permission snapshot and live block flag into one
// state. It holds no state; identical inputs give identical decisions.
func Decide(in Inputs) Decision {
	if in.Identity == nil || !in.Identity.Valid() {
		return Decision{State: StateRedirect, Redirect: RedirectLogin}
	}
	id := *in.Identity

	if !id.IsMaster() {
		if id.IsEmployee() && !in.PermissionsLoaded {
			return Decision{State: StateChecking}
		}
		if !in.Block.Known {
			return Decision{State: StateChecking}
		}
		if in.Block.Blocked {
			return Decision{State: StateBlockedBilling, Reason: billingReason(id.Account)}
		}
	}

	resolver := permissions.For(id.Kind(), in.Permissions)
	if !resolver.Has(in.Required) {
		return Decision{State: StateBlockedPermission}
	}
	return Decision{State: StateAllowed}
}

// DecideSuperAdmin gates the single super-admin surface. Anyone other than the
// master identity with the admin sentinel is sent to the dashboard.
func DecideSuperAdmin(id *identity.Identity, elevated bool) Decision {
	if id == nil || !id.Valid() {
		return Decision{State: StateRedirect, Redirect: RedirectLogin}
	}
	if !id.IsMaster() || !id.IsAdmin() {
		return Decision{State: StateRedirect, Redirect: RedirectDashboard}
	}
	if !elevated {
		return Decision{State: StateAwaitingSecondaryAuth}
	}
	return Decision{State: StateAllowed}
}

func billingReason(s plans.Snapshot) BlockReason {
	if plans.IsTrialOrFree(s.Plan) {
		return ReasonTrialExpired
	}
	return ReasonPaymentPending
}
