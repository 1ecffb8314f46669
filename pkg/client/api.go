package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL = "http://localhost:3001/api"

	responseBodyLimit int64 = 4 << 20
)

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// APIClient issues requests on behalf of an explicit Session.
type APIClient struct {
	httpClient *http.Client
	baseURL    string
	session    *Session
}

// Option configures optional client behavior.
type Option func(*APIClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *APIClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API root, e.g. http://localhost:3001/api.
func WithBaseURL(baseURL string) Option {
	return func(c *APIClient) {
		trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewAPIClient binds a client to session. The session must not be nil.
func NewAPIClient(session *Session, opts ...Option) (*APIClient, error) {
	if session == nil {
		return nil, errors.New("session is required")
	}
	c := &APIClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
		session:    session,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Session returns the session the client authenticates with.
func (c *APIClient) Session() *Session {
	return c.session
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	User    *User           `json:"user"`
}

type errorEnvelope struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

type authPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// Login verifies credentials and starts the session.
func (c *APIClient) Login(ctx context.Context, email, password string) (*User, error) {
	return c.authenticate(ctx, "/auth/login", authPayload{Email: email, Password: password})
}

// Register creates an account and starts the session.
func (c *APIClient) Register(ctx context.Context, email, name, password string) (*User, error) {
	return c.authenticate(ctx, "/auth/register", authPayload{Email: email, Password: password, Name: name})
}

func (c *APIClient) authenticate(ctx context.Context, path string, body authPayload) (*User, error) {
	env, _, err := c.send(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	if env.Token == "" || env.User == nil {
		return nil, errors.New("auth response missing token")
	}
	if err := c.session.begin(env.Token, env.User); err != nil {
		return nil, err
	}
	return env.User, nil
}

// Logout revokes the token server side when possible and always ends the
// local session.
func (c *APIClient) Logout(ctx context.Context) error {
	var remoteErr error
	if c.session.Authenticated() {
		_, _, remoteErr = c.send(ctx, http.MethodPost, "/auth/logout", nil)
		if StatusOf(remoteErr) == http.StatusUnauthorized {
			remoteErr = nil
		}
	}
	if err := c.session.end(); err != nil {
		return err
	}
	return remoteErr
}

func (c *APIClient) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.read(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *APIClient) ListDeals(ctx context.Context) ([]Deal, error) {
	var list []Deal
	if err := c.read(ctx, "/deals", &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *APIClient) GetDeal(ctx context.Context, id uuid.UUID) (*Deal, error) {
	var deal Deal
	if err := c.read(ctx, "/deals/"+id.String(), &deal); err != nil {
		return nil, err
	}
	return &deal, nil
}

func (c *APIClient) ListWishlist(ctx context.Context) ([]WishlistItem, error) {
	var items []WishlistItem
	if err := c.read(ctx, "/wishlist", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddToWishlist reports created=false when the deal was already saved.
func (c *APIClient) AddToWishlist(ctx context.Context, dealID uuid.UUID, alert bool) (*WishlistEntry, bool, error) {
	body := map[string]any{"dealId": dealID, "alertEnabled": alert}
	env, status, err := c.send(ctx, http.MethodPost, "/wishlist", body)
	if err != nil {
		return nil, false, err
	}
	var entry WishlistEntry
	if err := decodeData(env, &entry); err != nil {
		return nil, false, err
	}
	return &entry, status == http.StatusCreated, nil
}

func (c *APIClient) UpdateAlert(ctx context.Context, dealID uuid.UUID, enabled bool) (*WishlistEntry, error) {
	env, _, err := c.send(ctx, http.MethodPatch, "/wishlist/"+dealID.String(), map[string]any{"alertEnabled": enabled})
	if err != nil {
		return nil, err
	}
	var entry WishlistEntry
	if err := decodeData(env, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *APIClient) RemoveFromWishlist(ctx context.Context, dealID uuid.UUID) error {
	_, _, err := c.send(ctx, http.MethodDelete, "/wishlist/"+dealID.String(), nil)
	return err
}

// read issues a GET and retries it once on a transport error or a 5xx.
func (c *APIClient) read(ctx context.Context, path string, dest any) error {
	env, _, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil && retryable(ctx, err) {
		env, _, err = c.send(ctx, http.MethodGet, path, nil)
	}
	if err != nil {
		return err
	}
	return decodeData(env, dest)
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	return true
}

func (c *APIClient) send(ctx context.Context, method, path string, body any) (*envelope, int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var failure errorEnvelope
		if json.Unmarshal(raw, &failure) == nil && failure.Error != "" {
			apiErr.Message = failure.Error
			apiErr.Code = failure.Code
			apiErr.Details = failure.Details
		}
		return nil, resp.StatusCode, apiErr
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return &env, resp.StatusCode, nil
}

func decodeData(env *envelope, dest any) error {
	if env == nil || len(env.Data) == 0 || dest == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
