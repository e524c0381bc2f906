package server

import (
	"net/http"

	"github.com/hbela/task-with-api-notification/internal/auth"
	"github.com/hbela/task-with-api-notification/internal/common"
	"github.com/hbela/task-with-api-notification/internal/models"
)

const refreshCookieName = "refreshToken"

// authResponse is returned by login and refresh. The refresh token is
// carried both in the body (native clients) and in an httpOnly cookie
// (web clients); expiresIn is the access token lifetime in seconds so
// clients can size their proactive-refresh margin.
type authResponse struct {
	User         *models.PublicUser `json:"user"`
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
	ExpiresIn    int                `json:"expiresIn"`
}

// handleAuthGoogle handles POST /api/auth/google.
// Verifies a Google ID token, upserts the account and issues a token pair.
func (s *Server) handleAuthGoogle(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		IDToken string `json:"idToken"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.IDToken == "" {
		WriteError(w, http.StatusBadRequest, "idToken is required")
		return
	}

	user, pair, err := s.app.Auth.Login(r.Context(), req.IDToken)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Google login failed")
		WriteErrorWithCode(w, http.StatusUnauthorized, "Authentication failed", auth.CodeAuthFailed)
		return
	}

	s.setRefreshCookie(w, pair.RefreshToken)
	WriteJSON(w, http.StatusOK, authResponse{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int(s.app.Auth.AccessTTL().Seconds()),
	})
}

// handleAuthRefresh handles POST /api/auth/refresh.
// The refresh token is read from the body first, then the cookie. Any
// rotation failure clears the cookie so clients stop retrying a dead
// session.
func (s *Server) handleAuthRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	token := s.refreshTokenFromRequest(r)
	if token == "" {
		WriteErrorWithCode(w, http.StatusUnauthorized, "Refresh token required", auth.CodeNoRefreshToken)
		return
	}

	user, pair, err := s.app.Auth.Refresh(r.Context(), token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Refresh token rejected")
		s.clearRefreshCookie(w)
		WriteErrorWithCode(w, http.StatusUnauthorized, "Refresh failed", auth.CodeRefreshFailed)
		return
	}

	s.setRefreshCookie(w, pair.RefreshToken)
	WriteJSON(w, http.StatusOK, authResponse{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int(s.app.Auth.AccessTTL().Seconds()),
	})
}

// handleAuthLogout handles POST /api/auth/logout.
// Revokes the presented refresh token. Always succeeds.
func (s *Server) handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	token := s.refreshTokenFromRequest(r)
	if err := s.app.Auth.Logout(r.Context(), token); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to revoke refresh token on logout")
	}

	s.clearRefreshCookie(w)
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleAuthMe handles GET /api/auth/me.
func (s *Server) handleAuthMe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	identity := common.IdentityFromContext(r.Context())
	user, err := s.app.Storage.Users().GetByID(r.Context(), identity.UserID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}
	if user == nil {
		WriteErrorWithCode(w, http.StatusUnauthorized, "User no longer exists", auth.CodeUserNotFound)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user.Public()})
}

// handleAuthVerify handles POST /api/auth/verify.
// Confirms the middleware accepted the bearer token; does no other work.
func (s *Server) handleAuthVerify(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	identity := common.IdentityFromContext(r.Context())
	user, err := s.app.Storage.Users().GetByID(r.Context(), identity.UserID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}
	if user == nil {
		WriteErrorWithCode(w, http.StatusUnauthorized, "User no longer exists", auth.CodeUserNotFound)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"valid": true, "user": user.Public()})
}

// handleAuthSessions handles DELETE /api/auth/sessions.
// Revokes every refresh token the user holds, ending all sessions.
func (s *Server) handleAuthSessions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	identity := common.IdentityFromContext(r.Context())
	revoked, err := s.app.Auth.RevokeAll(r.Context(), identity.UserID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to revoke sessions")
		return
	}

	s.clearRefreshCookie(w)
	WriteJSON(w, http.StatusOK, map[string]int{"revoked": revoked})
}

// refreshTokenFromRequest extracts the refresh token, preferring the
// body over the cookie so native clients with a fresh body token are
// not tripped up by a stale cookie.
func (s *Server) refreshTokenFromRequest(r *http.Request) string {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if r.Body != nil {
		// Best effort; an empty or invalid body just means no token.
		_ = decodeBody(r, &req)
	}
	if req.RefreshToken != "" {
		return req.RefreshToken
	}
	if cookie, err := r.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.app.Auth.RefreshTTL().Seconds()),
		HttpOnly: true,
		Secure:   s.app.Config.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.app.Config.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}
