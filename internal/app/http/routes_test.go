package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"retail-saas/internal/client"
	"retail-saas/internal/domain/access"
	"retail-saas/internal/domain/accounts"
	"retail-saas/internal/domain/identity"
	"retail-saas/internal/domain/permissions"
	"retail-saas/internal/domain/plans"
	"retail-saas/internal/guard"
	"retail-saas/internal/repository"
	"retail-saas/internal/service"
)

const secret = "routes-secret"

func init() { gin.SetMode(gin.TestMode) }

func hashed(t *testing.T, pw string) *string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	s := string(h)
	return &s
}

type fixture struct {
	mem    *repository.Memory
	server *httptest.Server
	api    *client.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	expired := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	future := time.Now().Add(30 * 24 * time.Hour)

	m := repository.NewMemory()
	m.PutAccount(accounts.Account{ID: 1, Email: identity.MasterEmail, Plan: plans.PlanTrial, TrialExpiresAt: &expired,
		IsAdmin: true, Status: accounts.StatusActive, Password: hashed(t, "master-pw")})
	m.PutAccount(accounts.Account{ID: 2, Email: "loja@example.com", Plan: plans.PlanTrial, TrialExpiresAt: &future,
		Status: accounts.StatusActive, Password: hashed(t, "loja-pw")})
	m.PutAccount(accounts.Account{ID: 3, Email: "velha@example.com", Plan: plans.PlanTrial, TrialExpiresAt: &expired,
		Status: accounts.StatusActive, Password: hashed(t, "velha-pw")})
	m.PutEmployee(accounts.Employee{ID: 20, AccountID: 2, Email: "caixa@example.com", Status: accounts.StatusActive, Password: hashed(t, "caixa-pw")})
	m.PutEmployee(accounts.Employee{ID: 21, AccountID: 2, Email: "novo@example.com", Status: accounts.StatusActive, Password: hashed(t, "novo-pw")})
	require.NoError(t, m.Permissions().Save(context.Background(), 20, permissions.Set{permissions.PDV: true}))

	secondary, err := bcrypt.GenerateFromPassword([]byte("segredo"), bcrypt.MinCost)
	require.NoError(t, err)

	r := gin.New()
	RegisterRoutes(r, Deps{
		JWTSecret:     secret,
		Gatekeeper:    service.NewGatekeeper(m.Accounts(), m.Employees(), m.Permissions()),
		Authenticator: service.NewAuthenticator(m.Accounts(), m.Employees(), secret, time.Hour),
		Verifier:      service.NewSecondaryVerifier(string(secondary), nil),
		Accounts:      service.NewAccounts(m.Accounts(), m.Employees(), m.Permissions()),
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &fixture{mem: m, server: srv, api: client.New(srv.URL, srv.Client())}
}

func (f *fixture) login(t *testing.T, email, pw string) *client.Client {
	t.Helper()
	session, _, err := f.api.Login(context.Background(), email, pw)
	require.NoError(t, err)
	return session
}

func (f *fixture) raw(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *fixture) token(t *testing.T, email, pw string) string {
	t.Helper()
	_, res, err := f.api.Login(context.Background(), email, pw)
	require.NoError(t, err)
	return res.Token
}

func TestLoginReturnsTenantSnapshot(t *testing.T) {
	f := newFixture(t)
	_, res, err := f.api.Login(context.Background(), "caixa@example.com", "caixa-pw")
	require.NoError(t, err)
	assert.Equal(t, identity.TypeEmployee, res.Identity.Type)
	assert.Equal(t, uint(2), res.Identity.TenantID())
	assert.Equal(t, plans.PlanTrial, res.Identity.Account.Plan)

	_, _, err = f.api.Login(context.Background(), "caixa@example.com", "wrong")
	assert.ErrorIs(t, err, client.ErrUnauthenticated)
}

func TestBlockStatusEndpoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	blocked, err := f.login(t, "loja@example.com", "loja-pw").BlockStatus(ctx)
	require.NoError(t, err)
	assert.False(t, blocked)

	blocked, err = f.login(t, "velha@example.com", "velha-pw").BlockStatus(ctx)
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = f.login(t, identity.MasterEmail, "master-pw").BlockStatus(ctx)
	require.NoError(t, err)
	assert.False(t, blocked, "master is never blocked")

	_, err = f.api.BlockStatus(ctx)
	assert.ErrorIs(t, err, client.ErrUnauthenticated)
}

func TestMetadataHeadersMustMatchToken(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, "caixa@example.com", "caixa-pw")

	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/access/block-status", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("X-Tenant-Id", "3")
	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPermissionsEndpointScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cashier := f.login(t, "caixa@example.com", "caixa-pw")
	set, found, err := cashier.Permissions(ctx, 20)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, set.Has(permissions.PDV))
	assert.False(t, set.Has(permissions.Financeiro))

	_, _, err = cashier.Permissions(ctx, 21)
	assert.ErrorIs(t, err, client.ErrForbidden)

	newcomer := f.login(t, "novo@example.com", "novo-pw")
	set, found, err = newcomer.Permissions(ctx, 21)
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, set.Has(permissions.Dashboard))

	_, _, err = f.login(t, "velha@example.com", "velha-pw").Permissions(ctx, 20)
	assert.ErrorIs(t, err, client.ErrForbidden)
}

func TestDecisionEndpoint(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, "caixa@example.com", "caixa-pw")

	cases := map[string]access.State{
		"pdv":        access.StateAllowed,
		"financeiro": access.StateBlockedPermission,
		"bogus":      access.StateBlockedPermission,
	}
	for capability, want := range cases {
		resp := f.raw(t, http.MethodGet, "/access/decision?capability="+capability, tok, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var d access.Decision
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))
		assert.Equal(t, want, d.State, capability)
	}

	resp := f.raw(t, http.MethodGet, "/access/decision?capability=dashboard", f.token(t, "velha@example.com", "velha-pw"), nil)
	var d access.Decision
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))
	assert.Equal(t, access.Decision{State: access.StateBlockedBilling, Reason: access.ReasonTrialExpired}, d)
}

func TestMeReportsLifecycle(t *testing.T) {
	f := newFixture(t)
	resp := f.raw(t, http.MethodGet, "/me", f.token(t, "velha@example.com", "velha-pw"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Billing struct {
			Lifecycle plans.Lifecycle `json:"lifecycle"`
			IsBlocked bool            `json:"is_blocked"`
		} `json:"billing"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, plans.LifecycleTrialExpired, body.Billing.Lifecycle)
	assert.True(t, body.Billing.IsBlocked)
}

func TestEmployeeManagement(t *testing.T) {
	f := newFixture(t)
	owner := f.token(t, "loja@example.com", "loja-pw")

	resp := f.raw(t, http.MethodPut, "/employees/21/permissions", owner,
		map[string]interface{}{"permissions": map[string]interface{}{"caixa": true, "pdv": "true"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	set, found, err := f.mem.Permissions().Find(context.Background(), 21)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, set.Has(permissions.Caixa))
	assert.True(t, set.Has(permissions.PDV))

	resp = f.raw(t, http.MethodPost, "/employees/21/block", owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	blocked, err := f.login(t, "novo@example.com", "novo-pw").BlockStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, blocked)

	// an employee without configuracoes cannot manage anyone
	resp = f.raw(t, http.MethodPost, "/employees/20/unblock", f.token(t, "caixa@example.com", "caixa-pw"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// expired tenants are billing blocked before any capability check
	resp = f.raw(t, http.MethodGet, "/employees/20/permissions", f.token(t, "velha@example.com", "velha-pw"), nil)
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
}

func TestAdminSurface(t *testing.T) {
	f := newFixture(t)
	master := f.token(t, identity.MasterEmail, "master-pw")

	resp := f.raw(t, http.MethodGet, "/admin/accounts", f.token(t, "loja@example.com", "loja-pw"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.raw(t, http.MethodGet, "/admin/accounts", master, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 3)

	resp = f.raw(t, http.MethodPost, "/admin/accounts/2/block", master, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	acc, err := f.mem.Accounts().FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, accounts.StatusBlocked, acc.Status)

	resp = f.raw(t, http.MethodPost, "/admin/accounts/1/block", master, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSecondaryAuthThroughGuard(t *testing.T) {
	f := newFixture(t)
	session := f.login(t, identity.MasterEmail, "master-pw")
	id := session.Identity()

	g := guard.NewSuperAdmin(&id, session)
	g.Mount()
	assert.Equal(t, access.StateAwaitingSecondaryAuth, g.Decision().State)
	assert.ErrorIs(t, g.SubmitPassword(context.Background(), "nope"), guard.ErrSecondaryAuthFailed)
	require.NoError(t, g.SubmitPassword(context.Background(), "segredo"))
	assert.Equal(t, access.StateAllowed, g.Decision().State)

	g.Unmount()
	g.Mount()
	assert.Equal(t, access.StateAwaitingSecondaryAuth, g.Decision().State)

	owner := f.login(t, "loja@example.com", "loja-pw")
	ok, err := owner.VerifySecondary(context.Background(), "segredo")
	assert.ErrorIs(t, err, client.ErrForbidden)
	assert.False(t, ok)
}

func TestRouteGuardReactsToServerUnblock(t *testing.T) {
	f := newFixture(t)
	session := f.login(t, "caixa@example.com", "caixa-pw")
	id := session.Identity()

	r := guard.NewRoute(&id, permissions.PDV, session, session, guard.Options{Interval: 20 * time.Millisecond})
	r.Mount(context.Background())
	defer r.Unmount()

	require.Eventually(t, func() bool { return r.Decision().State == access.StateAllowed }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.mem.Accounts().SetStatus(context.Background(), 2, accounts.StatusBlocked))
	require.Eventually(t, func() bool { return r.Decision().State == access.StateBlockedBilling }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.mem.Accounts().SetStatus(context.Background(), 2, accounts.StatusActive))
	require.Eventually(t, func() bool { return r.Decision().State == access.StateAllowed }, 2*time.Second, 10*time.Millisecond)
}
