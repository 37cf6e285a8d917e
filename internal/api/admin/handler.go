package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"retail-saas/internal/domain/plans"
	"retail-saas/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminAccount struct {
	ID             uint            `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Plan           string          `json:"plano"`
	Lifecycle      plans.Lifecycle `json:"lifecycle"`
	Status         string          `json:"status"`
	TrialExpiresAt *time.Time      `json:"data_expiracao_trial,omitempty"`
	PlanExpiresAt  *time.Time      `json:"data_expiracao_plano,omitempty"`
	MaxEmployees   int             `json:"max_funcionarios"`
}

type Handler struct {
	accounts *service.Accounts
	now      func() time.Time
}

func NewHandler(a *service.Accounts) *Handler {
	return &Handler{accounts: a, now: time.Now}
}

func (h *Handler) AdminDashboard(c *gin.Context) {
	list, err := h.accounts.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load accounts"})
		return
	}

	now := h.now()
	perLifecycle := map[plans.Lifecycle]int{}
	blocked := 0
	for _, a := range list {
		perLifecycle[plans.Evaluate(now, a.PlanSnapshot())]++
		if a.Blocked() {
			blocked++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"total_accounts":   len(list),
		"blocked_accounts": blocked,
		"per_lifecycle":    perLifecycle,
	})
}

func (h *Handler) ListAllAccounts(c *gin.Context) {
	list, err := h.accounts.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load accounts"})
		return
	}

	now := h.now()
	out := make([]AdminAccount, 0, len(list))
	for _, a := range list {
		out = append(out, AdminAccount{
			ID:             a.ID,
			Name:           a.Name,
			Email:          a.Email,
			Plan:           a.Plan,
			Lifecycle:      plans.Evaluate(now, a.PlanSnapshot()),
			Status:         a.Status,
			TrialExpiresAt: a.TrialExpiresAt,
			PlanExpiresAt:  a.PlanExpiresAt,
			MaxEmployees:   a.MaxEmployees,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) setBlocked(c *gin.Context, blocked bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account id"})
		return
	}
	err = h.accounts.SetAccountStatus(c.Request.Context(), uint(id), blocked)
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "This account cannot be blocked"})
		return
	case err != nil:
		slog.Error("account status change failed", "account_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update account"})
		return
	}
	slog.Info("account status changed", "account_id", id, "blocked", blocked)
	c.JSON(http.StatusOK, gin.H{"account_id": id, "blocked": blocked})
}

func (h *Handler) BlockAccount(c *gin.Context)   { h.setBlocked(c, true) }
func (h *Handler) UnblockAccount(c *gin.Context) { h.setBlocked(c, false) }
