package employees

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"retail-saas/internal/app/http/middleware"
	"retail-saas/internal/domain/permissions"
	"retail-saas/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler serves the tenant-side employee management flow.
type Handler struct {
	accounts *service.Accounts
	gate     *service.Gatekeeper
}

func NewHandler(a *service.Accounts, g *service.Gatekeeper) *Handler {
	return &Handler{accounts: a, gate: g}
}

func employeeID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid employee id"})
		return 0, false
	}
	return uint(id), true
}

func writeErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrUnknownIdentity):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	default:
		slog.Error("employee management failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
	}
}

func (h *Handler) GetPermissions(c *gin.Context) {
	caller, _ := middleware.CurrentIdentity(c)
	id, ok := employeeID(c)
	if !ok {
		return
	}
	set, found, err := h.gate.EmployeePermissions(c.Request.Context(), caller, id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employee_id": id, "found": found, "permissions": set.Normalize()})
}

func (h *Handler) PutPermissions(c *gin.Context) {
	caller, _ := middleware.CurrentIdentity(c)
	id, ok := employeeID(c)
	if !ok {
		return
	}
	var body struct {
		Permissions permissions.Set `json:"permissions" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid permissions payload"})
		return
	}

	saved, err := h.accounts.SaveEmployeePermissions(c.Request.Context(), caller, id, body.Permissions)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employee_id": id, "found": true, "permissions": saved})
}

func (h *Handler) setBlocked(c *gin.Context, blocked bool) {
	caller, _ := middleware.CurrentIdentity(c)
	id, ok := employeeID(c)
	if !ok {
		return
	}
	if err := h.accounts.SetEmployeeStatus(c.Request.Context(), caller, id, blocked); err != nil {
		writeErr(c, err)
		return
	}
	slog.Info("employee status changed", "employee_id", id, "blocked", blocked, "by", caller.UserID)
	c.JSON(http.StatusOK, gin.H{"employee_id": id, "blocked": blocked})
}

func (h *Handler) Block(c *gin.Context)   { h.setBlocked(c, true) }
func (h *Handler) Unblock(c *gin.Context) { h.setBlocked(c, false) }
