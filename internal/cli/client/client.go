// Package client is the single gateway for all AlumniHub API calls. Every
// request passes through one send path that attaches the stored credential
// and normalizes failures, so call sites never handle either concern.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alumnihub-dev/alumnihub/internal/cli/credentials"
)

// Client represents an HTTP client for the AlumniHub API
type Client struct {
	baseURL              string
	httpClient           *http.Client
	tokens               credentials.Store
	logger               zerolog.Logger
	onSessionInvalidated func()
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the client logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSessionInvalidatedHook registers a callback fired whenever the server
// rejects the credential (HTTP 401). The gateway clears the credential
// itself; reacting (e.g. sending the user to login) is the hook's job.
func WithSessionInvalidatedHook(hook func()) Option {
	return func(c *Client) {
		c.onSessionInvalidated = hook
	}
}

// New creates a new API client
func New(baseURL string, tokens credentials.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens: tokens,
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// newRequest builds a JSON request, attaching the bearer credential when
// one is stored. Callers never set the Authorization header themselves.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.attachCredential(req)

	return req, nil
}

func (c *Client) attachCredential(req *http.Request) {
	token, err := c.tokens.Get()
	if err != nil {
		if !errors.Is(err, credentials.ErrNotFound) {
			c.logger.Warn().Err(err).Msg("failed to read credential, sending unauthenticated")
		}
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

// send executes the request and applies the response policy: a 401 clears
// the credential and fires the session-invalidated hook before the error
// is returned; every other failure becomes a normalized *APIError.
func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// An invalid or expired credential invalidates the whole
		// session, not just this request
		if err := c.tokens.Clear(); err != nil {
			c.logger.Warn().Err(err).Msg("failed to clear rejected credential")
		}
		if c.onSessionInvalidated != nil {
			c.onSessionInvalidated()
		}
		return decodeError(resp)
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &APIError{Message: fmt.Sprintf("Failed to decode response: %v", err)}
		}
	}

	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

// Login exchanges credentials for a token and stores the token. The store
// write happens before Login returns, so callers may rely on the
// credential being present the moment the call succeeds.
func (c *Client) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	body := map[string]string{
		"email":    identifier,
		"password": password,
	}

	var result AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/login", nil, body, &result); err != nil {
		return nil, err
	}

	if err := c.tokens.Set(result.Token); err != nil {
		return nil, fmt.Errorf("failed to save authentication token: %w", err)
	}

	return &result, nil
}

// Register creates an account and stores the issued token, like Login
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	var result AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/register", nil, req, &result); err != nil {
		return nil, err
	}

	if err := c.tokens.Set(result.Token); err != nil {
		return nil, fmt.Errorf("failed to save authentication token: %w", err)
	}

	return &result, nil
}

// Logout invalidates the server-side session. It does NOT clear the local
// credential; the session layer clears local state regardless of whether
// this call succeeds.
func (c *Client) Logout(ctx context.Context) (*MessageResponse, error) {
	var result MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/logout", nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCurrentUser fetches the authenticated member's profile
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/api/user", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies a partial profile update
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodPut, "/api/user", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListPayments returns the member's payments, optionally filtered by status
func (c *Client) ListPayments(ctx context.Context, status string) ([]Payment, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": {status}}
	}

	var payments []Payment
	if err := c.doJSON(ctx, http.MethodGet, "/api/payments", query, nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// GetPayment fetches one payment by ID
func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var payment Payment
	if err := c.doJSON(ctx, http.MethodGet, "/api/payments/"+url.PathEscape(id), nil, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// SubmitPayment submits a payment as a multipart form, attaching the
// receipt file when a path is given
func (c *Client) SubmitPayment(ctx context.Context, req SubmitPaymentRequest) (*Payment, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"amount":  req.Amount,
		"purpose": req.Purpose,
		"notes":   req.Notes,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
	}

	if req.ReceiptPath != "" {
		file, err := os.Open(req.ReceiptPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open receipt: %w", err)
		}
		defer file.Close()

		part, err := writer.CreateFormFile("receipt", filepath.Base(req.ReceiptPath))
		if err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, fmt.Errorf("failed to read receipt: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/payments", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	c.attachCredential(httpReq)

	var payment Payment
	if err := c.send(httpReq, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}
