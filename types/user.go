package types

import "time"

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Email is the user's email address. It is unique across users
	// and doubles as the login name.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Active gates whether the user may authenticate. Registration
	// creates users with Active set.
	Active bool `json:"active" db:"active"`

	// ProfileImage holds the user's profile image as Base64 text, or the
	// empty string when no image is set. The payload is never exposed in
	// entity responses; clients fetch it through the image endpoint.
	ProfileImage string `json:"-" db:"profile_image"`

	// HasProfileImage reports whether a profile image is stored. Derived
	// from ProfileImage when the record is loaded.
	HasProfileImage bool `json:"has_profile_image" db:"-"`

	// Roles lists the names of the roles granted to the user.
	Roles []string `json:"roles" db:"-"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
