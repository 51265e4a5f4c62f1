package ports

import (
	"context"

	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// TrackResolver turns a source URL into a playable track.
type TrackResolver interface {
	// ResolveTrack loads the track behind url. It may block for as long as the
	// backing service takes; callers must not hold session locks.
	ResolveTrack(ctx context.Context, url string) (*domain.Track, error)
}
