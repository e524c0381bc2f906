package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbela/task-with-api-notification/internal/auth"
)

func TestAuthGoogle_Success(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/auth/google", jsonBody(t, map[string]string{"idToken": "stub"}), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp authResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, 900, resp.ExpiresIn) // 15 minute default access TTL
	require.NotNil(t, resp.User)
	assert.Equal(t, "alice@example.com", resp.User.Email)

	// The refresh token is also delivered as an httpOnly cookie.
	cookies := rec.Result().Cookies()
	var found *http.Cookie
	for _, c := range cookies {
		if c.Name == refreshCookieName {
			found = c
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, resp.RefreshToken, found.Value)
	assert.True(t, found.HttpOnly)
	assert.Equal(t, "/", found.Path)
	assert.Equal(t, http.SameSiteStrictMode, found.SameSite)
	assert.False(t, found.Secure) // development environment
}

func TestAuthGoogle_MissingIDToken(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/auth/google", jsonBody(t, map[string]string{}), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthGoogle_VerifierRejects(t *testing.T) {
	srv := newTestServerWith(t, &stubVerifier{err: auth.ErrInvalidToken}, nil)

	rec := doRequest(srv, http.MethodPost, "/api/auth/google", jsonBody(t, map[string]string{"idToken": "bad"}), "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, auth.CodeAuthFailed, decodeError(t, rec).Code)
}

func TestAuthRefresh_RotatesAndRejectsReplay(t *testing.T) {
	srv := newTestServer(t)
	session := login(t, srv)

	// First refresh succeeds and returns a different pair.
	rec := doRequest(srv, http.MethodPost, "/api/auth/refresh", jsonBody(t, map[string]string{"refreshToken": session.RefreshToken}), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var refreshed authResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, session.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, 900, refreshed.ExpiresIn)

	// Replaying the original token fails and clears the cookie.
	rec = doRequest(srv, http.MethodPost, "/api/auth/refresh", jsonBody(t, map[string]string{"refreshToken": session.RefreshToken}), "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, auth.CodeRefreshFailed, decodeError(t, rec).Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == refreshCookieName {
			assert.Empty(t, c.Value)
			assert.Less(t, c.MaxAge, 0)
		}
	}

	// The rotated token still works.
	rec = doRequest(srv, http.MethodPost, "/api/auth/refresh", jsonBody(t, map[string]string{"refreshToken": refreshed.RefreshToken}), "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAuthRefresh_FromCookie(t *testing.T) {
	srv := newTestServer(t)
	session := login(t, srv)

	rec := doRequestWithCookie(srv, http.MethodPost, "/api/auth/refresh", session.RefreshToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAuthRefresh_BodyTokenBeatsStaleCookie(t *testing.T) {
	srv := newTestServer(t)
	session := login(t, srv)

	// A web client can hold a stale cookie while a native client sends
	// a live body token; the body must win.
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", jsonBody(t, map[string]string{"refreshToken": session.RefreshToken}))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "long-dead-token"})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAuthRefresh_MissingToken(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/auth/refresh", jsonBody(t, map[string]string{}), "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, auth.CodeNoRefreshToken, decodeError(t, rec).Code)
}

func TestAuthLogout_RevokesToken(t *testing.T) {
	srv := newTestServer(t)
	session := login(t, srv)

	rec := doRequest(srv, http.MethodPost, "/api/auth/logout", jsonBody(t, map[string]string{"refreshToken": session.RefreshToken}), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/api/auth/refresh", jsonBody(t, map[string]string{"refreshToken": session.RefreshToken}), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthLogout_AlwaysSucceeds(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/auth/logout", jsonBody(t, map[string]string{}), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMe(t *testing.T) {
	srv := newTestServer(t)
	session := login(t, srv)

	rec := doRequest(srv, http.MethodGet, "/api/auth/me", nil, session.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "alice@example.com", resp.User.Email)
}

func TestAuthVerify(t *testing.T) {
	srv := newTestServer(t)
	session := login(t, srv)

	rec := doRequest(srv, http.MethodPost, "/api/auth/verify", nil, session.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Valid bool `json:"valid"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, "alice@example.com", resp.User.Email)
}

func TestAuthVerify_NoToken(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/auth/verify", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, auth.CodeNoToken, decodeError(t, rec).Code)
}

func TestAuthSessions_RevokeAll(t *testing.T) {
	srv := newTestServer(t)
	first := login(t, srv)
	second := login(t, srv)

	rec := doRequest(srv, http.MethodDelete, "/api/auth/sessions", nil, second.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Revoked int `json:"revoked"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Revoked)

	rec = doRequest(srv, http.MethodPost, "/api/auth/refresh", jsonBody(t, map[string]string{"refreshToken": first.RefreshToken}), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
