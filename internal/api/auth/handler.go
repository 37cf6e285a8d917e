package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"retail-saas/internal/app/http/middleware"
	"retail-saas/internal/domain/identity"
	"retail-saas/internal/domain/plans"
	"retail-saas/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	auth     *service.Authenticator
	gate     *service.Gatekeeper
	verifier *service.SecondaryVerifier
	now      func() time.Time
}

func NewHandler(a *service.Authenticator, g *service.Gatekeeper, v *service.SecondaryVerifier) *Handler {
	return &Handler{auth: a, gate: g, verifier: v, now: time.Now}
}

type LoginResponse struct {
	Token    string            `json:"token"`
	Identity identity.Identity `json:"identity"`
}

func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, token, err := h.auth.Login(c.Request.Context(), input.Email, input.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		slog.Error("login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	snap, err := h.gate.Snapshot(c.Request.Context(), id)
	if err != nil {
		slog.Error("login snapshot failed", "user_id", id.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, Identity: snap})
}

type MeResponse struct {
	Identity identity.Identity `json:"identity"`
	Billing  BillingDTO        `json:"billing"`
}

type BillingDTO struct {
	Plan      string          `json:"plan"`
	Lifecycle plans.Lifecycle `json:"lifecycle"`
	DaysLeft  *int            `json:"days_left"`
	IsBlocked bool            `json:"is_blocked"`
}

func (h *Handler) Me(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	ctx := c.Request.Context()

	snap, err := h.gate.Snapshot(ctx, id)
	if errors.Is(err, service.ErrUnknownIdentity) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load account"})
		return
	}
	blocked, err := h.gate.BlockStatus(ctx, id)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load account"})
		return
	}

	now := h.now()
	c.JSON(http.StatusOK, MeResponse{
		Identity: snap,
		Billing: BillingDTO{
			Plan:      snap.Account.Plan,
			Lifecycle: plans.Evaluate(now, snap.Account),
			DaysLeft:  plans.DaysLeft(now, snap.Account),
			IsBlocked: blocked,
		},
	})
}

// VerifySecondary answers {"valid": bool} and nothing more. It does not issue
// any session artifact.
func (h *Handler) VerifySecondary(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	var input struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}
	valid := h.verifier.Verify(c.Request.Context(), id, input.Password)
	c.JSON(http.StatusOK, gin.H{"valid": valid})
}
