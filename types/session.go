package types

import "time"

// Session is a server-side login session. A user has at most one live
// session; logging in again replaces the previous one.
type Session struct {
	// Token is the opaque value handed to the client in the session cookie.
	Token string `json:"token" db:"token"`

	// UserID identifies the authenticated user.
	UserID int `json:"user_id" db:"user_id"`

	// CreatedAt is the timestamp the session was established.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// ExpiresAt is the instant after which the session is no longer valid.
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
