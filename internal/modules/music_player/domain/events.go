package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// TrackEndReason represents why a track ended.
type TrackEndReason string

const (
	// TrackEndFinished means the track played to its end.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the track failed to load.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndStopped means the track was stopped by us.
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means the track was replaced by another.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the transport cleaned the player up.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// ShouldAdvanceQueue reports whether this end reason advances the queue.
// Stops and replacements are caused by our own skip and teardown paths, and
// load failures are reported as transport failures instead.
func (r TrackEndReason) ShouldAdvanceQueue() bool {
	return r == TrackEndFinished
}

// TrackEndedEvent is published by the transport when a track stops playing.
type TrackEndedEvent struct {
	GuildID snowflake.ID
	// StreamHandle identifies the track that ended.
	StreamHandle string
	Reason       TrackEndReason
}

// TransportFailedEvent is published when the transport can no longer play
// for a guild: track exceptions, stuck tracks, closed voice connections.
type TransportFailedEvent struct {
	GuildID snowflake.ID
	Message string
}
