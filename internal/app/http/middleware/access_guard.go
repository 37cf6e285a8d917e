package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"retail-saas/internal/domain/access"
	"retail-saas/internal/domain/identity"
	"retail-saas/internal/domain/permissions"

	"github.com/gin-gonic/gin"
)

// Decider is the server-side gate composition.
type Decider interface {
	Decide(ctx context.Context, id identity.Identity, required permissions.Capability) (access.Decision, error)
}

// RequireAccess re-evaluates billing block and capability on every request.
// A lookup failure answers 503 rather than a denial.
func RequireAccess(d Decider, required permissions.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		decision, err := d.Decide(c.Request.Context(), id, required)
		if err != nil {
			slog.Warn("access check unresolved", "user_id", id.UserID, "capability", required, "error", err)
		}
		if status, body := StatusFor(decision); status != http.StatusOK {
			c.AbortWithStatusJSON(status, body)
			return
		}
		c.Next()
	}
}

// StatusFor maps a gate decision to an HTTP status and error body.
func StatusFor(d access.Decision) (int, gin.H) {
	switch d.State {
	case access.StateAllowed:
		return http.StatusOK, nil
	case access.StateBlockedBilling:
		return http.StatusPaymentRequired, gin.H{"error": "Account suspended", "state": d.State, "reason": d.Reason}
	case access.StateBlockedPermission:
		return http.StatusForbidden, gin.H{"error": "Access denied", "state": d.State}
	case access.StateRedirect:
		return http.StatusUnauthorized, gin.H{"error": "Unauthorized", "redirect": d.Redirect}
	default:
		return http.StatusServiceUnavailable, gin.H{"error": "Access could not be verified, try again", "state": access.StateChecking}
	}
}

// RequireMaster admits only the master identity carrying the admin sentinel.
func RequireMaster() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !id.IsMaster() || !id.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied", "redirect": access.RedirectDashboard})
			return
		}
		c.Next()
	}
}
