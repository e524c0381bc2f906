package models

import "time"

// RefreshToken is a single-use opaque token persisted server side.
// Rotation marks the old record revoked and links it to its successor
// via ReplacedByToken, so a replayed token can be detected and refused.
type RefreshToken struct {
	Token           string    `json:"token" badgerhold:"key"`
	UserID          string    `json:"userId" badgerhold:"index"`
	ExpiresAt       time.Time `json:"expiresAt"`
	Revoked         bool      `json:"revoked"`
	ReplacedByToken string    `json:"replacedByToken,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// TokenPair is the credential set issued on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
