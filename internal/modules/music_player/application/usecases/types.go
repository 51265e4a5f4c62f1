package usecases

import (
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// Re-export domain types for presentation layer use.

// Track is an alias for domain.Track.
type Track = domain.Track

// Volume is an alias for domain.Volume.
type Volume = domain.Volume

// NowPlayingInfo is an alias for ports.NowPlayingInfo.
type NowPlayingInfo = ports.NowPlayingInfo
