package models

import "time"

// User represents a user account created through Google sign-in.
// Accounts are never deleted by the auth subsystem; profile fields and
// LastLogin are refreshed on every successful login.
type User struct {
	ID        string    `json:"id" badgerhold:"key"`
	GoogleID  string    `json:"googleId" badgerhold:"unique"`
	Email     string    `json:"email" badgerhold:"unique"`
	Name      string    `json:"name,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	LastLogin time.Time `json:"lastLogin"`
}

// PublicUser is the subset of User returned by the HTTP API.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	LastLogin time.Time `json:"lastLogin"`
}

// Public returns the API-safe view of the user.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

// GoogleIdentity is the normalized result of verifying a Google ID token.
type GoogleIdentity struct {
	GoogleID string
	Email    string
	Name     string
	Avatar   string
	Locale   string
	Domain   string // Google Workspace hosted domain, if any
}
