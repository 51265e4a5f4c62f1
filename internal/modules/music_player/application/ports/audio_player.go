package ports

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// AudioPlayer defines the interface for audio playback operations.
type AudioPlayer interface {
	// Play binds the track to the guild's player and starts it.
	Play(ctx context.Context, guildID snowflake.ID, track *domain.Track) error

	// Stop stops the current playback and unbinds the track.
	Stop(ctx context.Context, guildID snowflake.ID) error

	// Pause pauses the current playback.
	Pause(ctx context.Context, guildID snowflake.ID) error

	// Resume resumes the paused playback.
	Resume(ctx context.Context, guildID snowflake.ID) error

	// SetGain applies a linear gain, where 1.0 is unity.
	SetGain(ctx context.Context, guildID snowflake.ID, gain float64) error

	// Position returns the elapsed playback time of the bound track.
	Position(guildID snowflake.ID) time.Duration
}
