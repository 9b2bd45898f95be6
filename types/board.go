package types

import "time"

// Board is a named gallery owned by exactly one user. Boards start out
// private and may optionally carry a single image.
type Board struct {
	// ID is the unique identifier of the board.
	ID int `json:"id" db:"id"`

	// Name is the board's display name.
	Name string `json:"name" db:"name"`

	// Description is free-form text describing the board.
	Description string `json:"description" db:"description"`

	// Private controls visibility. Private boards are only visible to
	// their owner; public boards appear in the public listing.
	Private bool `json:"private" db:"private"`

	// Image holds the board image as Base64 text, or the empty string
	// when no image is set. Never exposed in entity responses.
	Image string `json:"-" db:"image"`

	// HasImage reports whether an image is stored for the board.
	HasImage bool `json:"has_image" db:"-"`

	// UserID identifies the owning user. The owner is fixed at creation
	// and never changes.
	UserID int `json:"user_id" db:"user_id"`

	// CreatedAt is set once when the board is first persisted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
