package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/session"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// PlayInput contains the input for the Play use case.
type PlayInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
	URL                   string
}

// PlayOutput contains the result of the Play and PlayNext use cases.
type PlayOutput struct {
	Track    *domain.Track
	Position int  // 1-based position in the queue
	Started  bool // true if the track started playing immediately
}

// PlayNextInput contains the input for the PlayNext use case.
// Exactly one of URL and Position is used, URL first.
type PlayNextInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
	URL                   string
	Position              int // 1-based queue position to move next, 0 means unset
}

// PlayNextOutput contains the result of the PlayNext use case.
type PlayNextOutput struct {
	PlayOutput
	Moved bool // true if an existing track was moved rather than a new one added
}

// GuildInput contains the input for use cases that only need the guild.
type GuildInput struct {
	GuildID snowflake.ID
}

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	SkippedTrack *domain.Track
	NextTrack    *domain.Track // nil if queue is empty
}

// SetVolumeInput contains the input for the SetVolume use case.
type SetVolumeInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
	Percent int
}

// GetVolumeOutput contains the result of the GetVolume use case.
type GetVolumeOutput struct {
	Volume    domain.Volume
	IsDefault bool // true if no session exists and the default applies
}

// PlaybackService handles playback operations.
type PlaybackService struct {
	registry   *session.Registry
	resolver   ports.TrackResolver
	voiceState ports.VoiceStateProvider
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(
	registry *session.Registry,
	resolver ports.TrackResolver,
	voiceState ports.VoiceStateProvider,
) *PlaybackService {
	return &PlaybackService{
		registry:   registry,
		resolver:   resolver,
		voiceState: voiceState,
	}
}

// Play resolves a track and appends it to the guild's queue, starting a
// session if none exists.
func (p *PlaybackService) Play(ctx context.Context, input PlayInput) (*PlayOutput, error) {
	params, track, err := p.prepare(ctx, input.GuildID, input.UserID, input.NotificationChannelID, input.URL)
	if err != nil {
		return nil, err
	}

	position, started, err := p.withSession(params, func(s *session.Session) (int, bool, error) {
		return s.Enqueue(ctx, track)
	})
	if err != nil {
		return nil, err
	}

	return &PlayOutput{Track: track, Position: position, Started: started}, nil
}

// PlayNext puts a track at position 2, either a freshly resolved one or one
// already in the queue.
func (p *PlaybackService) PlayNext(ctx context.Context, input PlayNextInput) (*PlayNextOutput, error) {
	if input.URL == "" {
		if input.Position == 0 {
			return nil, ErrMissingTarget
		}
		return p.moveNext(input)
	}

	params, track, err := p.prepare(ctx, input.GuildID, input.UserID, input.NotificationChannelID, input.URL)
	if err != nil {
		return nil, err
	}

	position, started, err := p.withSession(params, func(s *session.Session) (int, bool, error) {
		return s.InsertNext(ctx, track)
	})
	if err != nil {
		return nil, err
	}

	return &PlayNextOutput{
		PlayOutput: PlayOutput{Track: track, Position: position, Started: started},
	}, nil
}

func (p *PlaybackService) moveNext(input PlayNextInput) (*PlayNextOutput, error) {
	s, ok := p.registry.Get(input.GuildID)
	if !ok {
		return nil, ErrNotPlaying
	}

	moved, err := s.MoveNext(input.Position)
	if err != nil {
		return nil, err
	}

	return &PlayNextOutput{
		PlayOutput: PlayOutput{Track: moved, Position: 2},
		Moved:      true,
	}, nil
}

// prepare validates the request and resolves the track. No session lock is
// held while resolving.
func (p *PlaybackService) prepare(
	ctx context.Context,
	guildID, userID, notificationChannelID snowflake.ID,
	rawURL string,
) (session.Params, *domain.Track, error) {
	url, err := domain.ValidateSourceURL(rawURL)
	if err != nil {
		return session.Params{}, nil, err
	}

	voiceChannelID, err := p.voiceState.GetUserVoiceChannel(guildID, userID)
	if err != nil {
		return session.Params{}, nil, err
	}
	if voiceChannelID == 0 {
		return session.Params{}, nil, ErrUserNotInVoice
	}

	track, err := p.resolver.ResolveTrack(ctx, url)
	if err != nil {
		return session.Params{}, nil, fmt.Errorf("%w: %w", ErrResolutionFailed, err)
	}
	if track == nil || !track.IsValid() {
		return session.Params{}, nil, ErrResolutionFailed
	}

	params := session.Params{
		GuildID:               guildID,
		VoiceChannelID:        voiceChannelID,
		NotificationChannelID: notificationChannelID,
	}
	return params, track, nil
}

// withSession looks the session up after resolution finished. If it was torn
// down in between, a new one is created once.
func (p *PlaybackService) withSession(
	params session.Params,
	add func(*session.Session) (int, bool, error),
) (int, bool, error) {
	for attempt := 0; ; attempt++ {
		s, _ := p.registry.GetOrCreate(params)

		position, started, err := add(s)
		if errors.Is(err, session.ErrSessionClosed) && attempt == 0 {
			slog.Debug(
				"session closed during resolution, retrying",
				"guild", params.GuildID,
				"session", s.ID(),
			)
			continue
		}
		return position, started, err
	}
}

// Pause pauses the current playback.
func (p *PlaybackService) Pause(ctx context.Context, input GuildInput) error {
	s, ok := p.registry.Get(input.GuildID)
	if !ok {
		return ErrNotPlaying
	}
	return s.Pause(ctx)
}

// Resume resumes the paused playback.
func (p *PlaybackService) Resume(ctx context.Context, input GuildInput) error {
	s, ok := p.registry.Get(input.GuildID)
	if !ok {
		return ErrNotPlaying
	}
	return s.Resume(ctx)
}

// Stop stops playback, clears the queue and leaves the voice channel.
func (p *PlaybackService) Stop(ctx context.Context, input GuildInput) error {
	s, ok := p.registry.Get(input.GuildID)
	if !ok {
		return ErrNotPlaying
	}
	return s.Stop(ctx)
}

// Skip skips the current track and plays the next one from the queue.
func (p *PlaybackService) Skip(ctx context.Context, input GuildInput) (*SkipOutput, error) {
	s, ok := p.registry.Get(input.GuildID)
	if !ok {
		return nil, ErrNotPlaying
	}

	skipped, next, err := s.Skip(ctx)
	if err != nil {
		return nil, err
	}
	return &SkipOutput{SkippedTrack: skipped, NextTrack: next}, nil
}

// NowPlaying returns the status of the current track.
func (p *PlaybackService) NowPlaying(input GuildInput) (*NowPlayingInfo, error) {
	s, ok := p.registry.Get(input.GuildID)
	if !ok {
		return nil, ErrNotPlaying
	}

	info, err := s.NowPlaying()
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// SetVolume changes the guild's volume. The user must share the bot's voice channel.
func (p *PlaybackService) SetVolume(ctx context.Context, input SetVolumeInput) (domain.Volume, error) {
	volume, err := domain.NewVolume(input.Percent)
	if err != nil {
		return domain.Volume{}, err
	}

	s, ok := p.registry.Get(input.GuildID)
	if !ok {
		return domain.Volume{}, ErrNotPlaying
	}

	userChannel, err := p.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
	if err != nil {
		return domain.Volume{}, err
	}
	if userChannel == 0 {
		return domain.Volume{}, ErrUserNotInVoice
	}
	if userChannel != s.VoiceChannelID() {
		return domain.Volume{}, ErrNotInSameVoiceChannel
	}

	if err := s.SetVolume(ctx, volume); err != nil {
		return domain.Volume{}, err
	}
	return volume, nil
}

// GetVolume reports the guild's volume, or the default when none was ever set.
func (p *PlaybackService) GetVolume(input GuildInput) GetVolumeOutput {
	volume, ok := p.registry.Volume(input.GuildID)
	return GetVolumeOutput{Volume: volume, IsDefault: !ok}
}
