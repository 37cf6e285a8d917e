package access

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

type Handler struct {
	gate *service.Gatekeeper
}

func NewHandler(g *service.Gatekeeper) *Handler {
	return &Handler{gate: g}
}

// BlockStatus is the polled oracle: {"isBlocked": bool} for the caller's tenant.
func (h *Handler) BlockStatus(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	blocked, err := h.gate.BlockStatus(c.Request.Context(), id)
	if errors.Is(err, service.ErrUnknownIdentity) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err != nil {
		slog.Warn("block status unavailable", "user_id", id.UserID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Block status unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isBlocked": blocked})
}

type PermissionsResponse struct {
	EmployeeID  uint            `json:"employee_id"`
	Found       bool            `json:"found"`
	Permissions permissions.Set `json:"permissions"`
}

// EmployeePermissions returns the stored row. A missing row is a 200 with
// found=false and every capability false.
func (h *Handler) EmployeePermissions(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	employeeID, err := strconv.ParseUint(c.Param("employeeId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid employee id"})
		return
	}

	set, found, err := h.gate.EmployeePermissions(c.Request.Context(), id, uint(employeeID))
	switch {
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrUnknownIdentity):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	case err != nil:
		slog.Warn("permission fetch failed", "employee_id", employeeID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Permissions unavailable"})
		return
	}

	c.JSON(http.StatusOK, PermissionsResponse{
		EmployeeID:  uint(employeeID),
		Found:       found,
		Permissions: set.Normalize(),
	})
}

// Decision runs the gate server-side for ?capability=<name>. The answer is
// always 200 with the decision; an unknown capability is a permission denial.
func (h *Handler) Decision(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	name := c.Query("capability")
	required, err := permissions.Parse(name)
	if err != nil {
		slog.Warn("decision for unknown capability", "capability", name)
		required = permissions.Capability(name)
	}

	decision, err := h.gate.Decide(c.Request.Context(), id, required)
	if err != nil {
		slog.Warn("decision unresolved", "user_id", id.UserID, "error", err)
	}
	c.JSON(http.StatusOK, decision)
}
