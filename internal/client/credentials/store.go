// Package credentials persists the client session (token pair and user
// profile) between runs.
package credentials

import (
	"github.com/hbela/task-with-api-notification/internal/models"
)

// Credentials is the session state saved after login and refresh. Both
// tokens are replaced together on every refresh.
type Credentials struct {
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
	User         *models.PublicUser `json:"user,omitempty"`
}

// Store persists credentials. Load returns (nil, nil) when no
// credentials have been saved; Clear removes the whole set as a unit.
type Store interface {
	Load() (*Credentials, error)
	Save(creds *Credentials) error
	Clear() error
}
