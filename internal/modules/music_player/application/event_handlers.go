package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/session"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// TransportEventHandler routes transport events to the guild's session.
type TransportEventHandler struct {
	registry   *session.Registry
	subscriber ports.EventSubscriber
}

// NewTransportEventHandler creates a new TransportEventHandler.
func NewTransportEventHandler(
	registry *session.Registry,
	subscriber ports.EventSubscriber,
) *TransportEventHandler {
	return &TransportEventHandler{
		registry:   registry,
		subscriber: subscriber,
	}
}

// Start registers event handlers with the subscriber.
func (h *TransportEventHandler) Start() {
	h.subscriber.OnTrackEnded(h.HandleTrackEnded)
	h.subscriber.OnTransportFailed(h.HandleTransportFailed)

	slog.Debug("transport event handlers properly registered")
}

// HandleTrackEnded hands every track end to the guild's session, which
// advances the queue when the bound track finished on its own.
func (h *TransportEventHandler) HandleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	s, ok := h.registry.Get(event.GuildID)
	if !ok {
		slog.Debug("track ended but no session exists", "guild", event.GuildID)
		return
	}

	if _, err := s.HandleTrackEnded(ctx, event.StreamHandle, event.Reason); err != nil {
		slog.Error(
			"failed to advance queue",
			"guild", event.GuildID,
			"session", s.ID(),
			"error", err,
		)
	}
}

// HandleTransportFailed stops the guild's session.
func (h *TransportEventHandler) HandleTransportFailed(ctx context.Context, event domain.TransportFailedEvent) {
	s, ok := h.registry.Get(event.GuildID)
	if !ok {
		slog.Debug("transport failed but no session exists", "guild", event.GuildID)
		return
	}

	s.Fail(ctx, fmt.Sprintf("Playback stopped: %s", event.Message))
}
