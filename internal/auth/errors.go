package auth

import "errors"

// Error codes returned to API clients alongside 401 responses. Clients
// branch on these, so the strings are part of the wire contract.
const (
	CodeNoToken          = "NO_TOKEN"
	CodeTokenExpired     = "TOKEN_EXPIRED"
	CodeInvalidToken     = "INVALID_TOKEN"
	CodeInvalidTokenType = "INVALID_TOKEN_TYPE"
	CodeUserNotFound     = "USER_NOT_FOUND"
	CodeNoRefreshToken   = "NO_REFRESH_TOKEN"
	CodeRefreshFailed    = "REFRESH_FAILED"
	CodeAuthFailed       = "AUTH_FAILED"
)

// Sentinel errors surfaced by token verification and rotation.
var (
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrTokenRevoked     = errors.New("refresh token revoked")
	ErrTokenNotFound    = errors.New("refresh token not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailNotVerified = errors.New("google account email not verified")
)

// CodeFor maps a verification error to its wire error code.
func CodeFor(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return CodeTokenExpired
	case errors.Is(err, ErrInvalidTokenType):
		return CodeInvalidTokenType
	case errors.Is(err, ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrTokenRevoked), errors.Is(err, ErrTokenNotFound):
		return CodeRefreshFailed
	default:
		return CodeInvalidToken
	}
}
