package model

import "time"

// SessionKey is the well-known key the token pair is persisted under.
const SessionKey = "ibe_session"

// TokenPair is the access/refresh pair used to authorize PMS API calls.
// swagger:model
type TokenPair struct {
	// Access token (usually a JWT)
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"accessToken"`

	// Refresh token used to obtain a new pair
	// example: vcSi0369y1I62wOpxZFpgZ...
	RefreshToken string `json:"refreshToken"`

	// Moment the pair was seeded or refreshed
	CreatedAt time.Time `json:"createdAt"`
}

// Empty reports whether either token is missing.
func (p TokenPair) Empty() bool {
	return p.AccessToken == "" || p.RefreshToken == ""
}

// Age returns how long ago the pair was created relative to now.
func (p TokenPair) Age(now time.Time) time.Duration {
	return now.Sub(p.CreatedAt)
}

// StoredSession is the row shape of a persisted session value.
type StoredSession struct {
	Namespace string    `db:"namespace"`
	Key       string    `db:"key"`
	Value     []byte    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SessionStatus describes the current session without exposing the tokens.
type SessionStatus struct {
	Active         bool       `json:"active"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	AccessExpireAt *time.Time `json:"accessExpireAt,omitempty"`
	Fresh          bool       `json:"fresh"`
}
