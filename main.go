package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"retail-saas/config"
	"retail-saas/database"
	stripewebhooks "retail-saas/internal/api/stripewebhook"
	routes "retail-saas/internal/app/http"
	"retail-saas/internal/kv"
	"retail-saas/internal/repository"
	"retail-saas/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	config.LoadEnv()
	db, err := database.InitDB(config.DB_URL)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	rdb, err := kv.Connect(ctx, config.REDIS_URL)
	cancel()
	if err != nil {
		slog.Warn("redis unavailable, secondary auth is not rate limited", "error", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	accountRepo := repository.NewAccountRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)

	deps := routes.Deps{
		JWTSecret:     config.JWT_SECRET,
		Gatekeeper:    service.NewGatekeeper(accountRepo, employeeRepo, permissionRepo),
		Authenticator: service.NewAuthenticator(accountRepo, employeeRepo, config.JWT_SECRET, config.TOKEN_TTL),
		Verifier: service.NewSecondaryVerifier(config.MASTER_PASSWORD_HASH,
			kv.NewLimiter(rdb, "secondary-auth:", config.SECONDARY_AUTH_MAX_ATTEMPTS, config.SECONDARY_AUTH_WINDOW)),
		Accounts: service.NewAccounts(accountRepo, employeeRepo, permissionRepo),
	}
	if config.STRIPE_WEBHOOK_SECRET != "" {
		deps.Webhooks = stripewebhooks.NewHandler(service.NewBilling(accountRepo),
			config.STRIPE_SECRET_KEY, config.STRIPE_WEBHOOK_SECRET, config.STRIPE_PRICE_ANNUAL)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-User-Id", "X-Account-Type", "X-Tenant-Id", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, deps)

	slog.Info("starting API server", "port", config.PORT)
	if err := r.Run(":" + config.PORT); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
