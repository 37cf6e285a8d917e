package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"retail-saas/internal/domain/identity"
	"retail-saas/internal/domain/permissions"

	"github.com/google/uuid"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrUnavailable     = errors.New("service unavailable")
)

// Client talks to the gating endpoints on behalf of one session. Every call
// carries the bearer token and the identity metadata headers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	identity   identity.Identity
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// WithSession returns a copy bound to an authenticated session.
func (c *Client) WithSession(token string, id identity.Identity) *Client {
	cp := *c
	cp.token = token
	cp.identity = id
	return &cp
}

func (c *Client) Identity() identity.Identity { return c.identity }

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("X-User-Id", strconv.FormatUint(uint64(c.identity.UserID), 10))
		req.Header.Set("X-Account-Type", string(c.identity.Type))
		if c.identity.IsEmployee() {
			req.Header.Set("X-Tenant-Id", strconv.FormatUint(uint64(c.identity.AccountID), 10))
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthenticated
	case resp.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case resp.StatusCode >= 300:
		return fmt.Errorf("%w: %s %s returned %d", ErrUnavailable, method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, path, err)
	}
	return nil
}

type LoginResult struct {
	Token    string            `json:"token"`
	Identity identity.Identity `json:"identity"`
}

// Login authenticates and returns a client bound to the new session.
func (c *Client) Login(ctx context.Context, email, password string) (*Client, LoginResult, error) {
	var res LoginResult
	err := c.do(ctx, http.MethodPost, "/login", map[string]string{"email": email, "password": password}, &res)
	if err != nil {
		return nil, LoginResult{}, err
	}
	return c.WithSession(res.Token, res.Identity), res, nil
}

// BlockStatus asks the oracle whether the caller's tenant is blocked.
func (c *Client) BlockStatus(ctx context.Context) (bool, error) {
	var res struct {
		IsBlocked *bool `json:"isBlocked"`
	}
	if err := c.do(ctx, http.MethodGet, "/access/block-status", nil, &res); err != nil {
		return false, err
	}
	if res.IsBlocked == nil {
		return false, fmt.Errorf("%w: block status missing isBlocked", ErrUnavailable)
	}
	return *res.IsBlocked, nil
}

// Permissions fetches an employee's stored row. A missing row comes back as
// an empty set with found=false.
func (c *Client) Permissions(ctx context.Context, employeeID uint) (permissions.Set, bool, error) {
	var res struct {
		Found       bool            `json:"found"`
		Permissions permissions.Set `json:"permissions"`
	}
	path := "/access/permissions/" + strconv.FormatUint(uint64(employeeID), 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, false, err
	}
	if !res.Found || res.Permissions == nil {
		return permissions.Set{}, res.Found, nil
	}
	return res.Permissions, true, nil
}

// VerifySecondary posts the super-admin secondary password.
func (c *Client) VerifySecondary(ctx context.Context, password string) (bool, error) {
	var res struct {
		Valid bool `json:"valid"`
	}
	if err := c.do(ctx, http.MethodPost, "/admin/verify-password", map[string]string{"password": password}, &res); err != nil {
		return false, err
	}
	return res.Valid, nil
}
