package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"retail-saas/internal/domain/identity"
	"retail-saas/internal/domain/permissions"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var employee = identity.Identity{UserID: 7, Email: "caixa@loja.com", Type: identity.TypeEmployee, AccountID: 3, AdminFlag: "false"}

func TestClientPropagatesCredentials(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"isBlocked":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client()).WithSession("tok", employee)
	blocked, err := c.BlockStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, blocked)

	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
	assert.Equal(t, "7", got.Get("X-User-Id"))
	assert.Equal(t, "employee", got.Get("X-Account-Type"))
	assert.Equal(t, "3", got.Get("X-Tenant-Id"))
	_, err = uuid.Parse(got.Get("X-Request-Id"))
	assert.NoError(t, err)
}

func TestClientOwnerOmitsTenantHeader(t *testing.T) {
	var tenant []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant = r.Header.Values("X-Tenant-Id")
		_, _ = w.Write([]byte(`{"isBlocked":false}`))
	}))
	defer srv.Close()

	owner := identity.Identity{UserID: 3, Email: "dono@loja.com", Type: identity.TypeOwner}
	_, err := New(srv.URL, nil).WithSession("tok", owner).BlockStatus(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tenant)
}

func TestClientStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthenticated},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusInternalServerError, ErrUnavailable},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		_, err := New(srv.URL, nil).WithSession("tok", employee).BlockStatus(context.Background())
		assert.True(t, errors.Is(err, tc.want), "status %d: %v", tc.status, err)
		srv.Close()
	}
}

func TestClientMissingBlockField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).WithSession("tok", employee).BlockStatus(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClientPermissions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/access/permissions/7":
			_, _ = w.Write([]byte(`{"employee_id":7,"found":true,"permissions":{"pdv":"true","caixa":false}}`))
		default:
			_, _ = w.Write([]byte(`{"employee_id":8,"found":false,"permissions":{}}`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL, nil).WithSession("tok", employee)

	set, found, err := c.Permissions(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, set.Has(permissions.PDV))
	assert.False(t, set.Has(permissions.Caixa))

	set, found, err = c.Permissions(context.Background(), 8)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NotNil(t, set)
	assert.False(t, set.Has(permissions.PDV))
}

func TestClientLoginAndVerify(t *testing.T) {
	master := identity.Identity{UserID: 1, Email: identity.MasterEmail, Type: identity.TypeOwner, AdminFlag: "true"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch r.URL.Path {
		case "/login":
			_ = json.NewEncoder(w).Encode(LoginResult{Token: "signed", Identity: master})
		case "/admin/verify-password":
			if r.Header.Get("Authorization") != "Bearer signed" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]bool{"valid": body["password"] == "segredo"})
		}
	}))
	defer srv.Close()

	session, res, err := New(srv.URL, nil).Login(context.Background(), identity.MasterEmail, "pw")
	require.NoError(t, err)
	assert.Equal(t, "signed", res.Token)
	assert.Equal(t, master, session.Identity())

	ok, err := session.VerifySecondary(context.Background(), "segredo")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = session.VerifySecondary(context.Background(), "errado")
	require.NoError(t, err)
	assert.False(t, ok)
}
