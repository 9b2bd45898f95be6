package services

import "errors"

var (
	// ErrEmailTaken is returned when a registration or profile update
	// would reuse another user's email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned for an unknown email or a wrong
	// password. Callers must not be told which one it was.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountDisabled is returned when the credentials are correct but
	// the user's active flag is off.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrUnknownUser is returned when an operation references a user id
	// that does not resolve to an existing user.
	ErrUnknownUser = errors.New("user not found")

	// ErrNotOwner is returned when a user attempts to modify a board they
	// do not own.
	ErrNotOwner = errors.New("user does not have permission to edit this board")

	// ErrInvalidSession is returned when a session token is unknown or
	// expired.
	ErrInvalidSession = errors.New("invalid or expired session")
)
