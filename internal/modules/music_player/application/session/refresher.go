package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// startRefresherLocked replaces any running refresher with a new one, so at
// most one refresher exists per session.
func (s *Session) startRefresherLocked() {
	s.stopRefresherLocked()

	if s.nowPlaying == nil || s.interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancelRefresh = cancel

	go s.refreshLoop(ctx, s.interval)
}

func (s *Session) stopRefresherLocked() {
	if s.cancelRefresh != nil {
		s.cancelRefresh()
		s.cancelRefresh = nil
	}
}

func (s *Session) refreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Waiting for the edit budget happens outside the session lock,
			// so commands for this guild are never queued behind it.
			if err := s.display.AwaitRefresh(ctx); err != nil {
				return
			}
			if !s.safeRefresh(ctx) {
				return
			}
		}
	}
}

func (s *Session) safeRefresh(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error(
				"status refresher panicked",
				"guild", s.guildID,
				"session", s.id,
				"panic", r,
			)
			ok = false
		}
	}()

	return s.refresh(ctx)
}

// refresh re-renders the status display once. It returns false when the
// refresher should exit.
func (s *Session) refresh(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A cancelled refresher must never touch the display, even if it won the
	// race for the lock against the transition that cancelled it.
	if ctx.Err() != nil {
		return false
	}
	if s.state != domain.StatePlaying || s.nowPlaying == nil {
		s.stopRefresherLocked()
		return false
	}

	info := s.nowPlayingInfoLocked()

	err := s.display.Update(ctx, s.nowPlaying, info)
	if err == nil {
		return true
	}

	slog.Debug(
		"failed to refresh now playing message, locating it again",
		"guild", s.guildID,
		"session", s.id,
		"error", err,
	)

	located, err := s.display.Locate(ctx, s.nowPlaying)
	if err == nil {
		err = s.display.Update(ctx, located, info)
	}
	if err != nil {
		slog.Warn(
			"now playing message unreachable, stopping refresher",
			"guild", s.guildID,
			"session", s.id,
			"error", err,
		)
		s.stopRefresherLocked()
		return false
	}

	s.nowPlaying = located
	return true
}
