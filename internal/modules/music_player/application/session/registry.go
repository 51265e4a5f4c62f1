package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/samber/lo"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// DefaultRefreshInterval is how often the status display is re-rendered.
const DefaultRefreshInterval = 15 * time.Second

// Dependencies are the collaborators shared by every session.
type Dependencies struct {
	Player          ports.AudioPlayer
	Voice           ports.VoiceConnection
	Display         ports.StatusDisplay
	RefreshInterval time.Duration
}

// Params identify where a new session plays and reports.
type Params struct {
	GuildID               snowflake.ID
	VoiceChannelID        snowflake.ID
	NotificationChannelID snowflake.ID
}

// Registry owns the one-session-per-guild mapping. It also keeps each guild's
// chosen volume, which outlives the sessions that use it.
type Registry struct {
	deps Dependencies

	mu       sync.Mutex
	sessions map[snowflake.ID]*Session
	volumes  map[snowflake.ID]domain.Volume
}

// NewRegistry creates an empty Registry.
func NewRegistry(deps Dependencies) *Registry {
	if deps.RefreshInterval <= 0 {
		deps.RefreshInterval = DefaultRefreshInterval
	}

	return &Registry{
		deps:     deps,
		sessions: make(map[snowflake.ID]*Session),
		volumes:  make(map[snowflake.ID]domain.Volume),
	}
}

// Get returns the live session for a guild.
func (r *Registry) Get(guildID snowflake.ID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[guildID]
	return s, ok
}

// GetOrCreate returns the guild's session, creating an idle one if none exists.
// created reports whether this call made it.
func (r *Registry) GetOrCreate(params Params) (s *Session, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[params.GuildID]; ok {
		return existing, false
	}

	s = newSession(r, params, r.volumeLocked(params.GuildID))
	r.sessions[params.GuildID] = s

	slog.Debug(
		"session created",
		"guild", params.GuildID,
		"session", s.id,
	)

	return s, true
}

// Volume returns the volume last set for a guild. ok is false when none was
// ever set and the default applies.
func (r *Registry) Volume(guildID snowflake.ID) (volume domain.Volume, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	volume, ok = r.volumes[guildID]
	if !ok {
		volume = domain.DefaultVolume
	}
	return volume, ok
}

func (r *Registry) volumeLocked(guildID snowflake.ID) domain.Volume {
	if volume, ok := r.volumes[guildID]; ok {
		return volume
	}
	return domain.DefaultVolume
}

func (r *Registry) rememberVolume(guildID snowflake.ID, volume domain.Volume) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.volumes[guildID] = volume
}

// remove deletes the entry only if it still maps to s.
func (r *Registry) remove(guildID snowflake.ID, s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessions[guildID] != s {
		return false
	}
	delete(r.sessions, guildID)
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// Shutdown stops every live session.
func (r *Registry) Shutdown(ctx context.Context) {
	r.mu.Lock()
	sessions := lo.Values(r.sessions)
	r.mu.Unlock()

	for _, s := range sessions {
		if err := s.Stop(ctx); err != nil && !errors.Is(err, ErrSessionClosed) {
			slog.Warn(
				"failed to stop session during shutdown",
				"guild", s.guildID,
				"session", s.id,
				"error", err,
			)
		}
	}
}
