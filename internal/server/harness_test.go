package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hbela/task-with-api-notification/internal/app"
	"github.com/hbela/task-with-api-notification/internal/auth"
	"github.com/hbela/task-with-api-notification/internal/common"
	"github.com/hbela/task-with-api-notification/internal/models"
	"github.com/hbela/task-with-api-notification/internal/storage"
)

type stubVerifier struct {
	identity *models.GoogleIdentity
	err      error
}

func (v *stubVerifier) Verify(_ context.Context, _ string) (*models.GoogleIdentity, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.identity, nil
}

func defaultIdentity() *models.GoogleIdentity {
	return &models.GoogleIdentity{
		GoogleID: "google-sub-1",
		Email:    "alice@example.com",
		Name:     "Alice",
	}
}

func newTestServer(t *testing.T) *Server {
	return newTestServerWith(t, &stubVerifier{identity: defaultIdentity()}, nil)
}

func newTestServerWith(t *testing.T, verifier auth.GoogleVerifier, mutate func(*common.Config)) *Server {
	t.Helper()

	cfg := common.NewDefaultConfig()
	cfg.Storage.Path = t.TempDir()
	cfg.Auth.RateLimit = 1000 // keep throttling out of the way
	if mutate != nil {
		mutate(cfg)
	}

	logger := common.NewSilentLogger()
	manager, err := storage.NewManager(logger, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	authService := auth.NewService(&cfg.Auth, verifier, manager.Users(), manager.RefreshTokens(), logger)

	a := &app.App{
		Config:      cfg,
		Logger:      logger,
		Storage:     manager,
		Auth:        authService,
		StartupTime: time.Now(),
	}
	return NewServer(a)
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

// doRequest runs a request through the full handler stack.
func doRequest(srv *Server, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

// doRequestWithCookie runs a request carrying the refresh cookie.
func doRequestWithCookie(srv *Server, method, path, refreshToken string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: refreshToken})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

// login performs a Google login and returns the decoded response.
func login(t *testing.T, srv *Server) authResponse {
	t.Helper()

	rec := doRequest(srv, "POST", "/api/auth/google", jsonBody(t, map[string]string{"idToken": "stub"}), "")
	require.Equal(t, 200, rec.Code, rec.Body.String())

	var resp authResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}
