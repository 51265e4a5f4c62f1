package ports

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// NowPlayingInfo is the content of a status display.
type NowPlayingInfo struct {
	Track   *domain.Track
	Elapsed time.Duration
	Paused  bool
	Looping bool
}

// StatusDisplay defines the interface for the "Now Playing" message in a text channel.
type StatusDisplay interface {
	// Deliver posts a new status display and returns where it lives.
	Deliver(ctx context.Context, channelID snowflake.ID, info NowPlayingInfo) (*domain.NowPlayingMessage, error)

	// Update re-renders an existing status display in place.
	Update(ctx context.Context, message *domain.NowPlayingMessage, info NowPlayingInfo) error

	// AwaitRefresh blocks until a periodic refresh may be sent or ctx is done.
	// Updates a user triggers do not wait for it.
	AwaitRefresh(ctx context.Context) error

	// Locate re-resolves a display by its channel and message IDs.
	Locate(ctx context.Context, message *domain.NowPlayingMessage) (*domain.NowPlayingMessage, error)

	// Delete removes a status display.
	Delete(ctx context.Context, message *domain.NowPlayingMessage) error

	// SendError posts an error message to the channel.
	SendError(ctx context.Context, channelID snowflake.ID, message string) error
}

// Control IDs carried by the status display buttons.
const (
	ControlPause  = "music_player:pause"
	ControlResume = "music_player:resume"
	ControlStop   = "music_player:stop"
)
