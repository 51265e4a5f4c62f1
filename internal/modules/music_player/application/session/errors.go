package session

import "errors"

var (
	// ErrSessionClosed means the session was torn down while a command was
	// in flight. The command must not be applied.
	ErrSessionClosed = errors.New("session is no longer active")

	ErrNotPlaying     = errors.New("nothing is currently playing")
	ErrAlreadyPaused  = errors.New("playback is already paused")
	ErrNotPaused      = errors.New("playback is not paused")
	ErrNotEnoughItems = errors.New("not enough tracks in the queue")

	// ErrTransport wraps audio transport failures. The session is stopped
	// when one is returned.
	ErrTransport = errors.New("audio transport failure")
)
