package ports

import "github.com/sglre6355/jukebox/internal/modules/music_player/domain"

// EventPublisher defines the interface for publishing transport events asynchronously.
type EventPublisher interface {
	PublishTrackEnded(event domain.TrackEndedEvent)
	PublishTransportFailed(event domain.TransportFailedEvent)
}
