package domain

// SessionState is the lifecycle state of a guild's playback session.
type SessionState int

const (
	StateIdle SessionState = iota
	StatePlaying
	StatePaused
	// StateStopped is terminal.
	StateStopped
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// IsActive reports whether a track is bound to the transport.
func (s SessionState) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}
