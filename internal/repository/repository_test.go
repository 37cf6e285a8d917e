package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"retail-saas/internal/domain/accounts"
	"retail-saas/internal/domain/permissions"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestPermissionFindMissingRowIsNotAnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "employee_permissions" WHERE employee_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id"}))

	set, found, err := NewPermissionRepository(db).Find(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, found)
	for _, c := range permissions.All {
		assert.False(t, set.Has(c))
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionFindRow(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "employee_permissions" WHERE employee_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id", "produtos", "pdv"}).
			AddRow(1, 42, true, false))

	set, found, err := NewPermissionRepository(db).Find(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, set.Has(permissions.Produtos))
	assert.False(t, set.Has(permissions.PDV))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionFindTransportError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "employee_permissions"`).WillReturnError(errors.New("conn reset"))

	_, _, err := NewPermissionRepository(db).Find(context.Background(), 42)
	assert.Error(t, err)
}

func TestAccountFindByEmailNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewAccountRepository(db).FindByEmail(context.Background(), "ninguem@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBillingUpdateColumns(t *testing.T) {
	plan := "premium_anual"
	status := accounts.StatusActive
	exp := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	cols := BillingUpdate{Plan: &plan, Status: &status, PlanExpiresAt: &exp}.columns()
	assert.Equal(t, map[string]interface{}{
		"plano":                "premium_anual",
		"status":               "ativo",
		"data_expiracao_plano": exp,
	}, cols)
	assert.Empty(t, BillingUpdate{}.columns())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.PutAccount(accounts.Account{ID: 1, Email: "loja@example.com", Status: accounts.StatusActive})
	m.PutEmployee(accounts.Employee{ID: 9, AccountID: 1, Email: "caixa@example.com"})

	e, err := m.Employees().FindByEmail(ctx, "caixa@example.com")
	require.NoError(t, err)
	assert.Equal(t, "loja@example.com", e.Account.Email)

	_, found, err := m.Permissions().Find(ctx, 9)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, m.Permissions().Save(ctx, 9, permissions.Set{permissions.PDV: true}))
	set, found, err := m.Permissions().Find(ctx, 9)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, set.Has(permissions.PDV))
	assert.False(t, set.Has(permissions.Caixa))

	require.NoError(t, m.Accounts().SetStatus(ctx, 1, accounts.StatusBlocked))
	a, err := m.Accounts().FindByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, a.Blocked())

	assert.ErrorIs(t, m.Accounts().SetStatus(ctx, 99, accounts.StatusBlocked), ErrNotFound)
}
