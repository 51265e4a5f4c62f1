package usecases

import (
	"errors"

	"github.com/sglre6355/jukebox/internal/modules/music_player/application/session"
)

var (
	// ErrUserNotInVoice is returned when the user is not in a voice channel.
	ErrUserNotInVoice = errors.New("you must be in a voice channel")

	// ErrNotInSameVoiceChannel is returned when the user is in a different voice channel than the bot.
	ErrNotInSameVoiceChannel = errors.New("you must be in the same voice channel as the bot")

	// ErrQueueEmpty is returned when there is no queue to show.
	ErrQueueEmpty = errors.New("the queue is empty")

	// ErrMissingTarget is returned when playnext gets neither a URL nor an index.
	ErrMissingTarget = errors.New("provide a SoundCloud URL or a queue index")

	// ErrResolutionFailed wraps track resolution failures.
	ErrResolutionFailed = errors.New("failed to load track")
)

// Session errors surfaced to the presentation layer.
var (
	ErrNotPlaying     = session.ErrNotPlaying
	ErrAlreadyPaused  = session.ErrAlreadyPaused
	ErrNotPaused      = session.ErrNotPaused
	ErrNotEnoughItems = session.ErrNotEnoughItems
	ErrSessionClosed  = session.ErrSessionClosed
	ErrTransport      = session.ErrTransport
)
