package application

import (
	"context"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/session"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

const guildID = snowflake.ID(1)

type stubPlayer struct{ played []string }

func (p *stubPlayer) Play(_ context.Context, _ snowflake.ID, track *domain.Track) error {
	p.played = append(p.played, track.StreamHandle)
	return nil
}
func (p *stubPlayer) Stop(context.Context, snowflake.ID) error             { return nil }
func (p *stubPlayer) Pause(context.Context, snowflake.ID) error            { return nil }
func (p *stubPlayer) Resume(context.Context, snowflake.ID) error           { return nil }
func (p *stubPlayer) SetGain(context.Context, snowflake.ID, float64) error { return nil }
func (p *stubPlayer) Position(snowflake.ID) time.Duration                  { return 0 }

type stubVoice struct{}

func (stubVoice) JoinChannel(context.Context, snowflake.ID, snowflake.ID) error { return nil }
func (stubVoice) LeaveChannel(context.Context, snowflake.ID) error              { return nil }

type stubDisplay struct{ errors []string }

func (d *stubDisplay) Deliver(_ context.Context, channelID snowflake.ID, _ ports.NowPlayingInfo) (*domain.NowPlayingMessage, error) {
	return domain.NewNowPlayingMessage(channelID, 1), nil
}
func (d *stubDisplay) Update(context.Context, *domain.NowPlayingMessage, ports.NowPlayingInfo) error {
	return nil
}
func (d *stubDisplay) AwaitRefresh(context.Context) error { return nil }
func (d *stubDisplay) Locate(_ context.Context, m *domain.NowPlayingMessage) (*domain.NowPlayingMessage, error) {
	return m, nil
}
func (d *stubDisplay) Delete(context.Context, *domain.NowPlayingMessage) error { return nil }
func (d *stubDisplay) SendError(_ context.Context, _ snowflake.ID, message string) error {
	d.errors = append(d.errors, message)
	return nil
}

type stubSubscriber struct {
	trackEnded      []func(context.Context, domain.TrackEndedEvent)
	transportFailed []func(context.Context, domain.TransportFailedEvent)
}

func (s *stubSubscriber) OnTrackEnded(handler func(context.Context, domain.TrackEndedEvent)) {
	s.trackEnded = append(s.trackEnded, handler)
}

func (s *stubSubscriber) OnTransportFailed(handler func(context.Context, domain.TransportFailedEvent)) {
	s.transportFailed = append(s.transportFailed, handler)
}

func setup(t *testing.T, ids ...string) (*TransportEventHandler, *session.Registry, *stubPlayer, *stubDisplay) {
	t.Helper()

	player := &stubPlayer{}
	display := &stubDisplay{}
	registry := session.NewRegistry(session.Dependencies{
		Player:          player,
		Voice:           stubVoice{},
		Display:         display,
		RefreshInterval: time.Hour,
	})

	s, _ := registry.GetOrCreate(session.Params{GuildID: guildID, VoiceChannelID: 2, NotificationChannelID: 3})
	for _, id := range ids {
		track := domain.NewTrack("Song "+id, "", time.Minute, "", "", "encoded-"+id)
		_, _, err := s.Enqueue(context.Background(), track)
		require.NoError(t, err)
	}

	return NewTransportEventHandler(registry, &stubSubscriber{}), registry, player, display
}

func TestTransportEventHandler_Start(t *testing.T) {
	sub := &stubSubscriber{}
	h := NewTransportEventHandler(session.NewRegistry(session.Dependencies{}), sub)

	h.Start()

	assert.Len(t, sub.trackEnded, 1)
	assert.Len(t, sub.transportFailed, 1)
}

func TestTransportEventHandler_TrackEnded(t *testing.T) {
	tests := []struct {
		name       string
		reason     domain.TrackEndReason
		handle     string
		wantPlayed []string
	}{
		{name: "finished advances", reason: domain.TrackEndFinished, handle: "encoded-A", wantPlayed: []string{"encoded-A", "encoded-B"}},
		{name: "stale handle ignored", reason: domain.TrackEndFinished, handle: "encoded-Z", wantPlayed: []string{"encoded-A"}},
		{name: "replaced ignored", reason: domain.TrackEndReplaced, handle: "encoded-A", wantPlayed: []string{"encoded-A"}},
		{name: "stopped ignored", reason: domain.TrackEndStopped, handle: "encoded-A", wantPlayed: []string{"encoded-A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, player, _ := setup(t, "A", "B")

			h.HandleTrackEnded(context.Background(), domain.TrackEndedEvent{
				GuildID:      guildID,
				StreamHandle: tt.handle,
				Reason:       tt.reason,
			})

			assert.Equal(t, tt.wantPlayed, player.played)
		})
	}
}

func TestTransportEventHandler_ReplacedEndOfRepeatedTrack(t *testing.T) {
	h, registry, player, _ := setup(t, "A", "A", "C")
	s, ok := registry.Get(guildID)
	require.True(t, ok)

	_, _, err := s.Skip(context.Background())
	require.NoError(t, err)

	for _, reason := range []domain.TrackEndReason{domain.TrackEndReplaced, domain.TrackEndFinished} {
		h.HandleTrackEnded(context.Background(), domain.TrackEndedEvent{
			GuildID:      guildID,
			StreamHandle: "encoded-A",
			Reason:       reason,
		})
	}

	assert.Equal(t, []string{"encoded-A", "encoded-A", "encoded-C"}, player.played)
}

func TestTransportEventHandler_TrackEnded_NoSession(t *testing.T) {
	h, registry, _, _ := setup(t)
	s, _ := registry.Get(guildID)
	require.NoError(t, s.Stop(context.Background()))

	assert.NotPanics(t, func() {
		h.HandleTrackEnded(context.Background(), domain.TrackEndedEvent{
			GuildID:      guildID,
			StreamHandle: "encoded-A",
			Reason:       domain.TrackEndFinished,
		})
	})
}

func TestTransportEventHandler_TransportFailed(t *testing.T) {
	h, registry, _, display := setup(t, "A", "B")

	h.HandleTransportFailed(context.Background(), domain.TransportFailedEvent{
		GuildID: guildID,
		Message: "track got stuck",
	})

	_, ok := registry.Get(guildID)
	assert.False(t, ok)
	assert.Equal(t, []string{"Playback stopped: track got stuck"}, display.errors)
}
