package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// maxOutstandingPlays caps plays kept waiting for an end event, in case the
// transport loses one.
const maxOutstandingPlays = 16

// Session is the playback context of one guild. Every method takes the
// session lock, so queue mutations, state transitions and the transport and
// display calls they trigger are serialized per guild.
type Session struct {
	id                    uuid.UUID
	guildID               snowflake.ID
	voiceChannelID        snowflake.ID
	notificationChannelID snowflake.ID

	registry *Registry
	player   ports.AudioPlayer
	voice    ports.VoiceConnection
	display  ports.StatusDisplay
	interval time.Duration

	mu     sync.Mutex
	state  domain.SessionState
	queue  *domain.Queue
	volume domain.Volume
	joined bool
	// bound is the stream handle currently loaded into the transport.
	bound string
	// plays holds the stream handle of every play still owed an end event,
	// oldest first. Only the last entry can be the bound play.
	plays         []string
	nowPlaying    *domain.NowPlayingMessage
	cancelRefresh context.CancelFunc
}

func newSession(r *Registry, params Params, volume domain.Volume) *Session {
	return &Session{
		id:                    uuid.New(),
		guildID:               params.GuildID,
		voiceChannelID:        params.VoiceChannelID,
		notificationChannelID: params.NotificationChannelID,
		registry:              r,
		player:                r.deps.Player,
		voice:                 r.deps.Voice,
		display:               r.deps.Display,
		interval:              r.deps.RefreshInterval,
		state:                 domain.StateIdle,
		queue:                 domain.NewQueue(),
		volume:                volume,
	}
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

func (s *Session) GuildID() snowflake.ID {
	return s.guildID
}

func (s *Session) VoiceChannelID() snowflake.ID {
	return s.voiceChannelID
}

// Snapshot is a consistent copy of a session's observable state.
type Snapshot struct {
	State   domain.SessionState
	Tracks  []*domain.Track
	Looping bool
	Volume  domain.Volume
	Elapsed time.Duration
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:   s.state,
		Tracks:  s.queue.Tracks(),
		Looping: s.queue.IsLooping(),
		Volume:  s.volume,
	}
	if s.state.IsActive() {
		snap.Elapsed = s.player.Position(s.guildID)
	}
	return snap
}

// NowPlaying returns the status of the active track.
func (s *Session) NowPlaying() (ports.NowPlayingInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActiveLocked(); err != nil {
		return ports.NowPlayingInfo{}, err
	}
	return s.nowPlayingInfoLocked(), nil
}

// Enqueue appends a track. On an idle session it joins voice and starts
// playing it.
func (s *Session) Enqueue(ctx context.Context, track *domain.Track) (position int, started bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.StateStopped {
		return 0, false, ErrSessionClosed
	}

	position = s.queue.Add(track)
	if s.state != domain.StateIdle {
		return position, false, nil
	}
	if err := s.startLocked(ctx); err != nil {
		return 0, false, err
	}
	return position, true, nil
}

// InsertNext puts a track right after the active one. On an idle session it
// behaves like Enqueue.
func (s *Session) InsertNext(ctx context.Context, track *domain.Track) (position int, started bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.StateStopped {
		return 0, false, ErrSessionClosed
	}

	position = s.queue.InsertNext(track)
	if s.state != domain.StateIdle {
		return position, false, nil
	}
	if err := s.startLocked(ctx); err != nil {
		return 0, false, err
	}
	return position, true, nil
}

// MoveNext relocates the track at position to position 2.
func (s *Session) MoveNext(position int) (*domain.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActiveLocked(); err != nil {
		return nil, err
	}
	return s.queue.MoveNext(position)
}

func (s *Session) Reorder(from, to int) (*domain.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActiveLocked(); err != nil {
		return nil, err
	}
	return s.queue.Reorder(from, to)
}

func (s *Session) RemoveRange(start, end int) ([]*domain.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActiveLocked(); err != nil {
		return nil, err
	}
	return s.queue.RemoveRange(start, end)
}

// Shuffle randomizes every pending track.
func (s *Session) Shuffle() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActiveLocked(); err != nil {
		return err
	}
	if s.queue.Len() < 2 {
		return ErrNotEnoughItems
	}
	s.queue.Shuffle(nil)
	return nil
}

func (s *Session) ToggleLoop() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActiveLocked(); err != nil {
		return false, err
	}
	return s.queue.ToggleLoop(), nil
}

func (s *Session) Volume() domain.Volume {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.volume
}

// SetVolume stores the volume for the guild and applies it to the bound track.
func (s *Session) SetVolume(ctx context.Context, volume domain.Volume) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.StateStopped {
		return ErrSessionClosed
	}

	s.volume = volume
	s.registry.rememberVolume(s.guildID, volume)
	if !s.state.IsActive() {
		return nil
	}
	if err := s.player.SetGain(ctx, s.guildID, volume.TransportGain()); err != nil {
		return s.failLocked(ctx, err)
	}
	return nil
}

func (s *Session) Pause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case domain.StatePlaying:
	case domain.StatePaused:
		return ErrAlreadyPaused
	case domain.StateStopped:
		return ErrSessionClosed
	default:
		return ErrNotPlaying
	}

	if err := s.player.Pause(ctx, s.guildID); err != nil {
		return s.failLocked(ctx, err)
	}
	s.stopRefresherLocked()
	s.state = domain.StatePaused
	s.updateDisplayLocked(ctx)

	slog.Info("playback paused", "guild", s.guildID, "session", s.id)

	return nil
}

func (s *Session) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case domain.StatePaused:
	case domain.StatePlaying:
		return ErrNotPaused
	case domain.StateStopped:
		return ErrSessionClosed
	default:
		return ErrNotPlaying
	}

	if err := s.player.Resume(ctx, s.guildID); err != nil {
		return s.failLocked(ctx, err)
	}
	s.state = domain.StatePlaying
	s.updateDisplayLocked(ctx)
	s.startRefresherLocked()

	slog.Info("playback resumed", "guild", s.guildID, "session", s.id)

	return nil
}

// Skip advances past the active track. next is nil when the queue ran out
// and the session stopped.
func (s *Session) Skip(ctx context.Context) (skipped, next *domain.Track, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActiveLocked(); err != nil {
		return nil, nil, err
	}
	return s.advanceLocked(ctx)
}

// HandleTrackEnded settles the end event of one play. The transport reports
// exactly one end per play, in play order, so the event belongs to the oldest
// outstanding play of streamHandle. The queue advances only when that play is
// the bound one and it finished on its own. Ends of plays that a skip already
// replaced are consumed without effect, even when the same track was played
// again.
func (s *Session) HandleTrackEnded(
	ctx context.Context,
	streamHandle string,
	reason domain.TrackEndReason,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.IsActive() {
		return false, nil
	}

	index := slices.Index(s.plays, streamHandle)
	if index < 0 {
		slog.Debug("ignoring unknown track end", "guild", s.guildID, "session", s.id)
		return false, nil
	}
	bound := index == len(s.plays)-1
	s.plays = slices.Delete(s.plays, index, index+1)

	if !bound || !reason.ShouldAdvanceQueue() {
		slog.Debug(
			"track end settled without advancing",
			"guild", s.guildID,
			"session", s.id,
			"reason", reason,
			"replaced", !bound,
		)
		return false, nil
	}

	_, _, err := s.advanceLocked(ctx)
	return true, err
}

// Fail tears the session down after an unrecoverable transport error and
// reports it once to the notification channel.
func (s *Session) Fail(ctx context.Context, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.StateStopped {
		return
	}

	slog.Error(
		"playback failed, stopping session",
		"guild", s.guildID,
		"session", s.id,
		"error", message,
	)

	s.teardownLocked(ctx)
	s.reportLocked(ctx, message)
}

// Stop tears the session down.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.StateStopped {
		return ErrSessionClosed
	}
	s.teardownLocked(ctx)
	return nil
}

func (s *Session) requireActiveLocked() error {
	switch {
	case s.state == domain.StateStopped:
		return ErrSessionClosed
	case !s.state.IsActive():
		return ErrNotPlaying
	default:
		return nil
	}
}

func (s *Session) startLocked(ctx context.Context) error {
	if err := s.voice.JoinChannel(ctx, s.guildID, s.voiceChannelID); err != nil {
		return s.failLocked(ctx, fmt.Errorf("failed to join voice channel: %w", err))
	}
	s.joined = true

	slog.Info(
		"session started",
		"guild", s.guildID,
		"session", s.id,
		"voice_channel", s.voiceChannelID,
	)

	return s.playCurrentLocked(ctx)
}

// advanceLocked skips the active track and plays the next one, or stops the
// session when nothing is left.
func (s *Session) advanceLocked(ctx context.Context) (skipped, next *domain.Track, err error) {
	s.stopRefresherLocked()
	s.deleteDisplayLocked(ctx)

	skipped = s.queue.Skip()
	next = s.queue.Current()
	if next == nil {
		slog.Info("queue exhausted", "guild", s.guildID, "session", s.id)
		s.teardownLocked(ctx)
		return skipped, nil, nil
	}

	if err := s.playCurrentLocked(ctx); err != nil {
		return skipped, nil, err
	}
	return skipped, next, nil
}

// playCurrentLocked binds the head of the queue to the transport, then
// delivers a fresh status display and restarts the refresher.
func (s *Session) playCurrentLocked(ctx context.Context) error {
	track := s.queue.Current()

	if err := s.player.SetGain(ctx, s.guildID, s.volume.TransportGain()); err != nil {
		return s.failLocked(ctx, err)
	}
	if err := s.player.Play(ctx, s.guildID, track); err != nil {
		return s.failLocked(ctx, err)
	}
	s.bound = track.StreamHandle
	s.plays = append(s.plays, track.StreamHandle)
	if len(s.plays) > maxOutstandingPlays {
		s.plays = slices.Delete(s.plays, 0, len(s.plays)-maxOutstandingPlays)
	}
	s.state = domain.StatePlaying

	slog.Info(
		"now playing",
		"guild", s.guildID,
		"session", s.id,
		"title", track.Title,
	)

	s.deliverDisplayLocked(ctx)
	s.startRefresherLocked()

	return nil
}

// failLocked stops the session and surfaces err once.
func (s *Session) failLocked(ctx context.Context, err error) error {
	slog.Error(
		"transport failure, stopping session",
		"guild", s.guildID,
		"session", s.id,
		"error", err,
	)

	s.teardownLocked(ctx)
	s.reportLocked(ctx, "Playback stopped because of an audio error.")

	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// teardownLocked releases everything the session holds. The registry entry
// is removed last so no caller can observe a half torn down session through it.
func (s *Session) teardownLocked(ctx context.Context) {
	if s.state == domain.StateStopped {
		return
	}

	s.stopRefresherLocked()

	if s.bound != "" {
		if err := s.player.Stop(ctx, s.guildID); err != nil {
			slog.Warn("failed to stop playback", "guild", s.guildID, "session", s.id, "error", err)
		}
		s.bound = ""
	}
	s.plays = nil
	if s.joined {
		if err := s.voice.LeaveChannel(ctx, s.guildID); err != nil {
			slog.Warn("failed to leave voice channel", "guild", s.guildID, "session", s.id, "error", err)
		}
		s.joined = false
	}

	s.deleteDisplayLocked(ctx)
	s.queue.Clear()
	s.state = domain.StateStopped

	s.registry.remove(s.guildID, s)

	slog.Info("session stopped", "guild", s.guildID, "session", s.id)
}

func (s *Session) nowPlayingInfoLocked() ports.NowPlayingInfo {
	return ports.NowPlayingInfo{
		Track:   s.queue.Current(),
		Elapsed: s.player.Position(s.guildID),
		Paused:  s.state == domain.StatePaused,
		Looping: s.queue.IsLooping(),
	}
}

func (s *Session) deliverDisplayLocked(ctx context.Context) {
	info := ports.NowPlayingInfo{
		Track:   s.queue.Current(),
		Looping: s.queue.IsLooping(),
	}

	message, err := s.display.Deliver(ctx, s.notificationChannelID, info)
	if err != nil {
		slog.Warn(
			"failed to deliver now playing message",
			"guild", s.guildID,
			"session", s.id,
			"error", err,
		)
		return
	}
	s.nowPlaying = message
}

// updateDisplayLocked re-renders the display once, best effort.
func (s *Session) updateDisplayLocked(ctx context.Context) {
	if s.nowPlaying == nil {
		return
	}
	if err := s.display.Update(ctx, s.nowPlaying, s.nowPlayingInfoLocked()); err != nil {
		slog.Debug(
			"failed to update now playing message",
			"guild", s.guildID,
			"session", s.id,
			"error", err,
		)
	}
}

func (s *Session) deleteDisplayLocked(ctx context.Context) {
	if s.nowPlaying == nil {
		return
	}
	if err := s.display.Delete(ctx, s.nowPlaying); err != nil {
		slog.Warn(
			"failed to delete now playing message",
			"guild", s.guildID,
			"session", s.id,
			"now_playing", s.nowPlaying,
			"error", err,
		)
	}
	s.nowPlaying = nil
}

func (s *Session) reportLocked(ctx context.Context, message string) {
	if err := s.display.SendError(ctx, s.notificationChannelID, message); err != nil {
		slog.Warn(
			"failed to report playback error",
			"guild", s.guildID,
			"session", s.id,
			"error", err,
		)
	}
}
