package authzinfra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mutuo-app/mutuo/pkg/authz"
	"github.com/mutuo-app/mutuo/pkg/errx"
)

// HTTPIdentityClient talks to the identity/authorization backend over
// HTTP. The core never sees the transport: it consumes the decoded shapes.
type HTTPIdentityClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPIdentityClient creates a client against the given base URL.
func NewHTTPIdentityClient(baseURL string, timeout time.Duration) *HTTPIdentityClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPIdentityClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Login exchanges credentials for a token pair and account identity.
func (c *HTTPIdentityClient) Login(ctx context.Context, email, password string) (*authz.LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result authz.LoginResult
	if err := c.post(ctx, "/auth/login", "", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates an account and returns the same shape as Login.
func (c *HTTPIdentityClient) Register(ctx context.Context, req authz.RegisterRequest) (*authz.LoginResult, error) {
	var result authz.LoginResult
	if err := c.post(ctx, "/auth/register", "", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Refresh rotates the token pair.
func (c *HTTPIdentityClient) Refresh(ctx context.Context, refreshToken string) (*authz.TokenPair, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var pair authz.TokenPair
	if err := c.post(ctx, "/auth/refresh", "", body, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// FetchContext retrieves the full authorization context for the bearer.
func (c *HTTPIdentityClient) FetchContext(ctx context.Context, accessToken string) (*authz.Context, error) {
	var payload authz.Context
	if err := c.get(ctx, "/auth/context", accessToken, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *HTTPIdentityClient) post(ctx context.Context, path, bearer string, body, dest interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errx.Wrap(err, "failed to encode request", errx.TypeInternal)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errx.Wrap(err, "failed to build request", errx.TypeInternal)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return c.do(req, dest)
}

func (c *HTTPIdentityClient) get(ctx context.Context, path, bearer string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errx.Wrap(err, "failed to build request", errx.TypeInternal)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return c.do(req, dest)
}

func (c *HTTPIdentityClient) do(req *http.Request, dest interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return errx.Wrap(err, "identity backend unreachable", errx.TypeExternal)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		// Drain a little of the body for diagnostics without trusting it.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errx.New(
			fmt.Sprintf("identity backend returned %d", resp.StatusCode),
			errx.TypeExternal,
		).WithDetail("status", resp.StatusCode).WithDetail("body", string(snippet))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return errx.Wrap(err, "failed to decode identity response", errx.TypeExternal)
	}
	return nil
}

var _ authz.IdentityClient = (*HTTPIdentityClient)(nil)
