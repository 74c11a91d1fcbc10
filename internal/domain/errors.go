package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. The registry's
// error taxonomy is validation and not-found only; there are no transient
// failures to retry because the core performs no I/O.

var (
	// Registration validation errors, in the order the checks run.
	ErrInvalidPeerID   = errors.New("peerId must be a string of at least 10 characters")
	ErrMissingUsername = errors.New("username is required")
	ErrUsernameLength  = errors.New("username must be 3-20 characters")
	ErrUsernameChars   = errors.New("username may only contain letters, digits, spaces, '-', '_' and '.'")
	ErrInvalidLocation = errors.New("location must have latitude in [-90,90] and longitude in [-180,180]")
	ErrInvalidAvatar   = errors.New("avatar must be a non-empty string of at most 10 characters")
	ErrUsernameTaken   = errors.New("username already in use nearby")

	// Lookup and status errors.
	ErrPeerNotFound  = errors.New("peer not registered")
	ErrInvalidStatus = errors.New("status must be one of online, away, busy, offline")
)

// Code returns the wire identifier for a domain error. Callers surface
// these to end users so every rejection names its cause.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPeerID):
		return "invalid_peer_id"
	case errors.Is(err, ErrMissingUsername):
		return "missing_username"
	case errors.Is(err, ErrUsernameLength):
		return "username_length_invalid"
	case errors.Is(err, ErrUsernameChars):
		return "username_chars_invalid"
	case errors.Is(err, ErrInvalidLocation):
		return "invalid_location"
	case errors.Is(err, ErrInvalidAvatar):
		return "invalid_avatar"
	case errors.Is(err, ErrUsernameTaken):
		return "username_taken"
	case errors.Is(err, ErrPeerNotFound):
		return "peer_not_found"
	case errors.Is(err, ErrInvalidStatus):
		return "invalid_status"
	}
	return "internal"
}
