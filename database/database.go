package database

import (
	"fmt"
	"log/slog"

	"retail-saas/internal/domain/accounts"
	"retail-saas/internal/domain/permissions"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&accounts.Account{},
		&accounts.Employee{},
		&permissions.EmployeePermission{},
	); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	slog.Info("database connected and migrated")
	return db, nil
}
