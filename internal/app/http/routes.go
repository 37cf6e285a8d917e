package routes

import (
	accessapi "retail-saas/internal/api/access"
	adminapi "retail-saas/internal/api/admin"
	authapi "retail-saas/internal/api/auth"
	employeesapi "retail-saas/internal/api/employees"
	stripewebhooks "retail-saas/internal/api/stripewebhook"
	"retail-saas/internal/app/http/middleware"
	"retail-saas/internal/domain/permissions"
	"retail-saas/internal/service"

	"github.com/gin-gonic/gin"
)

// Deps is everything the HTTP layer needs, built once in main.
type Deps struct {
	JWTSecret     string
	Gatekeeper    *service.Gatekeeper
	Authenticator *service.Authenticator
	Verifier      *service.SecondaryVerifier
	Accounts      *service.Accounts
	Webhooks      *stripewebhooks.Handler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	authH := authapi.NewHandler(d.Authenticator, d.Gatekeeper, d.Verifier)
	accessH := accessapi.NewHandler(d.Gatekeeper)
	employeesH := employeesapi.NewHandler(d.Accounts, d.Gatekeeper)
	adminH := adminapi.NewHandler(d.Accounts)

	if d.Webhooks != nil {
		r.POST("/webhook", d.Webhooks.StripeWebhook)
	}
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())
	public.POST("/login", authH.Login)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(d.JWTSecret))
	auth.GET("/me", authH.Me)
	auth.GET("/access/block-status", accessH.BlockStatus)
	auth.GET("/access/permissions/:employeeId", accessH.EmployeePermissions)
	auth.GET("/access/decision", accessH.Decision)

	// Employee management is gated like any tenant view
	employees := auth.Group("/employees")
	employees.Use(middleware.SanitizeAndCleanInputMiddleware(), middleware.RequireAccess(d.Gatekeeper, permissions.Configuracoes))
	employees.GET("/:id/permissions", employeesH.GetPermissions)
	employees.PUT("/:id/permissions", employeesH.PutPermissions)
	employees.POST("/:id/block", employeesH.Block)
	employees.POST("/:id/unblock", employeesH.Unblock)

	// Super-admin surface
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(d.JWTSecret), middleware.RequireMaster())
	admin.POST("/verify-password", authH.VerifySecondary)
	admin.GET("/dashboard", adminH.AdminDashboard)
	admin.GET("/accounts", adminH.ListAllAccounts)
	admin.POST("/accounts/:id/block", adminH.BlockAccount)
	admin.POST("/accounts/:id/unblock", adminH.UnblockAccount)
}
