package domain

import "errors"

// Validation errors raised by domain operations. None of them change state.
var (
	// ErrInvalidPosition is returned when a queue position is out of range.
	ErrInvalidPosition = errors.New("invalid queue position")

	// ErrInvalidRange is returned when a removal range is malformed or out of bounds.
	ErrInvalidRange = errors.New("invalid range")

	// ErrCurrentTrackProtected is returned when a position-based command targets
	// the track bound to the transport (position 1).
	ErrCurrentTrackProtected = errors.New("the current track cannot be moved or removed, use skip instead")

	// ErrInvalidVolume is returned when a volume percentage is outside [1, 100].
	ErrInvalidVolume = errors.New("volume must be between 1 and 100")

	// ErrUnsupportedURL is returned when a URL is not a SoundCloud link.
	ErrUnsupportedURL = errors.New("invalid URL, please provide a valid SoundCloud link")
)
