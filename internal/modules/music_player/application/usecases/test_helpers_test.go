package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/session"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

const (
	guildID        = snowflake.ID(1)
	userID         = snowflake.ID(2)
	textChannelID  = snowflake.ID(3)
	voiceChannelID = snowflake.ID(4)
)

func mockTrack(id string) *domain.Track {
	return domain.NewTrack(
		"Track "+id,
		"Artist",
		3*time.Minute,
		"",
		"https://soundcloud.com/artist/"+id,
		"encoded-"+id,
	)
}

type mockAudioPlayer struct {
	mu     sync.Mutex
	played []string
	gains  []float64
}

func (m *mockAudioPlayer) Play(_ context.Context, _ snowflake.ID, track *domain.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.played = append(m.played, track.StreamHandle)
	return nil
}

func (m *mockAudioPlayer) Stop(_ context.Context, _ snowflake.ID) error {
	return nil
}

func (m *mockAudioPlayer) Pause(_ context.Context, _ snowflake.ID) error {
	return nil
}

func (m *mockAudioPlayer) Resume(_ context.Context, _ snowflake.ID) error {
	return nil
}

func (m *mockAudioPlayer) SetGain(_ context.Context, _ snowflake.ID, gain float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gains = append(m.gains, gain)
	return nil
}

func (m *mockAudioPlayer) Position(_ snowflake.ID) time.Duration {
	return 0
}

type mockVoiceConnection struct {
	joinErr error
}

func (m *mockVoiceConnection) JoinChannel(_ context.Context, _, _ snowflake.ID) error {
	return m.joinErr
}

func (m *mockVoiceConnection) LeaveChannel(_ context.Context, _ snowflake.ID) error {
	return nil
}

type mockStatusDisplay struct{}

func (m *mockStatusDisplay) Deliver(
	_ context.Context,
	channelID snowflake.ID,
	_ ports.NowPlayingInfo,
) (*domain.NowPlayingMessage, error) {
	return domain.NewNowPlayingMessage(channelID, snowflake.ID(99)), nil
}

func (m *mockStatusDisplay) Update(_ context.Context, _ *domain.NowPlayingMessage, _ ports.NowPlayingInfo) error {
	return nil
}

func (m *mockStatusDisplay) AwaitRefresh(_ context.Context) error {
	return nil
}

func (m *mockStatusDisplay) Locate(_ context.Context, message *domain.NowPlayingMessage) (*domain.NowPlayingMessage, error) {
	return message, nil
}

func (m *mockStatusDisplay) Delete(_ context.Context, _ *domain.NowPlayingMessage) error {
	return nil
}

func (m *mockStatusDisplay) SendError(_ context.Context, _ snowflake.ID, _ string) error {
	return nil
}

type mockTrackResolver struct {
	tracks map[string]*domain.Track // url -> track
	err    error
	// onResolve runs before returning, while no session lock is held.
	onResolve func()
}

func (m *mockTrackResolver) ResolveTrack(_ context.Context, url string) (*domain.Track, error) {
	if m.onResolve != nil {
		m.onResolve()
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.tracks[url], nil
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	err      error
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(
	_, userID snowflake.ID,
) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

type testEnv struct {
	player   *mockAudioPlayer
	voice    *mockVoiceConnection
	resolver *mockTrackResolver
	voiceSt  *mockVoiceStateProvider
	registry *session.Registry
	playback *PlaybackService
	queue    *QueueService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		player: &mockAudioPlayer{},
		voice:  &mockVoiceConnection{},
		resolver: &mockTrackResolver{
			tracks: make(map[string]*domain.Track),
		},
		voiceSt: &mockVoiceStateProvider{
			channels: map[snowflake.ID]snowflake.ID{userID: voiceChannelID},
		},
	}
	env.registry = session.NewRegistry(session.Dependencies{
		Player:          env.player,
		Voice:           env.voice,
		Display:         &mockStatusDisplay{},
		RefreshInterval: time.Hour,
	})
	env.playback = NewPlaybackService(env.registry, env.resolver, env.voiceSt)
	env.queue = NewQueueService(env.registry)
	return env
}

// addTrack registers a resolvable track and returns its URL.
func (e *testEnv) addTrack(id string) string {
	track := mockTrack(id)
	e.resolver.tracks[track.SourceURL] = track
	return track.SourceURL
}

// play enqueues the given tracks through the Play use case.
func (e *testEnv) play(ids ...string) {
	for _, id := range ids {
		_, err := e.playback.Play(context.Background(), PlayInput{
			GuildID:               guildID,
			UserID:                userID,
			NotificationChannelID: textChannelID,
			URL:                   e.addTrack(id),
		})
		if err != nil {
			panic(err)
		}
	}
}

func (e *testEnv) titles() []string {
	s, ok := e.registry.Get(guildID)
	if !ok {
		return nil
	}
	tracks := s.Snapshot().Tracks
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.Title
	}
	return out
}
