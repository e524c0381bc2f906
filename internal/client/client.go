// Package client provides the API client used by task apps: it manages
// the session token pair, refreshes it transparently and exposes the
// task endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/hbela/task-with-api-notification/internal/client/credentials"
	"github.com/hbela/task-with-api-notification/internal/common"
	"github.com/hbela/task-with-api-notification/internal/models"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second

	// DefaultRefreshMargin is how close to expiry an access token may get
	// before it is refreshed ahead of use.
	DefaultRefreshMargin = time.Minute
)

// ErrSessionEnded means the refresh token was rejected and the stored
// credentials have been cleared. The user has to sign in again.
var ErrSessionEnded = errors.New("session ended: sign in required")

// ErrNotAuthenticated means no credentials are stored at all.
var ErrNotAuthenticated = errors.New("not authenticated")

// Client talks to the task API. It is safe for concurrent use;
// concurrent refresh attempts collapse into a single request.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	logger        *common.Logger
	limiter       *rate.Limiter
	store         credentials.Store
	refreshMargin time.Duration
	refreshGroup  singleflight.Group
	now           func() time.Time
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithRefreshMargin sets how close to expiry an access token may get
// before a proactive refresh.
func WithRefreshMargin(margin time.Duration) ClientOption {
	return func(c *Client) {
		c.refreshMargin = margin
	}
}

// NewClient creates a new API client persisting its session in store.
func NewClient(baseURL string, store credentials.Store, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:       rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:        common.NewSilentLogger(),
		store:         store,
		refreshMargin: DefaultRefreshMargin,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error response.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("task API error: %s (status: %d, code: %s, endpoint: %s)", e.Message, e.StatusCode, e.Code, e.Endpoint)
}

type authResponse struct {
	User         *models.PublicUser `json:"user"`
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
}

// Login exchanges a Google ID token for a session and persists it.
func (c *Client) Login(ctx context.Context, idToken string) (*models.PublicUser, error) {
	var resp authResponse
	err := c.doPublic(ctx, http.MethodPost, "/api/auth/google", map[string]string{"idToken": idToken}, &resp)
	if err != nil {
		return nil, err
	}

	creds := &credentials.Credentials{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	}
	if err := c.store.Save(creds); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}

	c.logger.Info().Str("email", resp.User.Email).Msg("Logged in")
	return resp.User, nil
}

// Logout revokes the refresh token server side and clears stored
// credentials. Local credentials are cleared even if the server call
// fails.
func (c *Client) Logout(ctx context.Context) error {
	creds, _ := c.store.Load()
	if creds != nil && creds.RefreshToken != "" {
		body := map[string]string{"refreshToken": creds.RefreshToken}
		if err := c.doPublic(ctx, http.MethodPost, "/api/auth/logout", body, nil); err != nil {
			c.logger.Warn().Err(err).Msg("Server-side logout failed")
		}
	}
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// CurrentUser returns the locally stored user profile, or nil when
// signed out.
func (c *Client) CurrentUser() (*models.PublicUser, error) {
	creds, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, nil
	}
	return creds.User, nil
}

// AccessToken returns a usable access token, refreshing the pair first
// when the current token is missing or about to expire.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	creds, err := c.store.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load credentials: %w", err)
	}
	if creds == nil {
		return "", ErrNotAuthenticated
	}

	if c.tokenUsable(creds.AccessToken) {
		return creds.AccessToken, nil
	}
	return c.refresh(ctx)
}

// tokenUsable reports whether the access token still has more than the
// refresh margin of life left. The expiry claim is read without
// verifying the signature; only the server verifies tokens.
func (c *Client) tokenUsable(token string) bool {
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.After(c.now().Add(c.refreshMargin))
}

// refresh rotates the token pair. Concurrent callers share one request:
// the refresh token is single use, so a duplicate request would revoke
// the session it just created.
func (c *Client) refresh(ctx context.Context) (string, error) {
	token, err, _ := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		return c.doRefresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

func (c *Client) doRefresh(ctx context.Context) (string, error) {
	creds, err := c.store.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load credentials: %w", err)
	}
	if creds == nil || creds.RefreshToken == "" {
		return "", ErrNotAuthenticated
	}

	var resp authResponse
	body := map[string]string{"refreshToken": creds.RefreshToken}
	err = c.doPublic(ctx, http.MethodPost, "/api/auth/refresh", body, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			// The session is dead. Clear everything so the app falls back
			// to the sign-in screen instead of retrying forever.
			if clearErr := c.store.Clear(); clearErr != nil {
				c.logger.Warn().Err(clearErr).Msg("Failed to clear credentials")
			}
			c.logger.Info().Str("code", apiErr.Code).Msg("Refresh rejected, session ended")
			return "", ErrSessionEnded
		}
		return "", err
	}

	creds.AccessToken = resp.AccessToken
	creds.RefreshToken = resp.RefreshToken
	if resp.User != nil {
		creds.User = resp.User
	}
	if err := c.store.Save(creds); err != nil {
		return "", fmt.Errorf("failed to save credentials: %w", err)
	}

	c.logger.Debug().Msg("Token pair refreshed")
	return resp.AccessToken, nil
}

// do performs an authenticated request. A TOKEN_EXPIRED rejection
// triggers one refresh and one retry; any further 401 is returned as is.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}

	err = c.doOnce(ctx, method, path, token, body, result)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized && apiErr.Code == "TOKEN_EXPIRED" {
		token, err = c.refresh(ctx)
		if err != nil {
			return err
		}
		return c.doOnce(ctx, method, path, token, body, result)
	}
	return err
}

// doPublic performs an unauthenticated request.
func (c *Client) doPublic(ctx context.Context, method, path string, body, result interface{}) error {
	return c.doOnce(ctx, method, path, "", body, result)
}

func (c *Client) doOnce(ctx context.Context, method, path, token string, body, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return parseAPIError(resp, path)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func parseAPIError(resp *http.Response, endpoint string) *APIError {
	data, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    string(data),
		Endpoint:   endpoint,
	}
	var parsed struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Error != "" {
		apiErr.Message = parsed.Error
		apiErr.Code = parsed.Code
	}
	return apiErr
}
