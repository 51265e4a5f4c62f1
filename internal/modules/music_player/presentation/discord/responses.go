package discord

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/jukebox/internal/bot"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

// Replies for errors that need more than their own text.
const (
	msgNoLongerApplicable = "This command is no longer applicable, playback has already stopped."
	msgResolutionFailed   = "Could not load that track from SoundCloud."
	msgTransportFailed    = "Playback stopped because of an audio error."
	msgUnexpected         = "An error occurred while processing your command."
)

// userFacingErrors are shown to the user with their own message.
var userFacingErrors = []error{
	domain.ErrInvalidPosition,
	domain.ErrInvalidRange,
	domain.ErrCurrentTrackProtected,
	domain.ErrInvalidVolume,
	domain.ErrUnsupportedURL,
	usecases.ErrUserNotInVoice,
	usecases.ErrNotInSameVoiceChannel,
	usecases.ErrQueueEmpty,
	usecases.ErrMissingTarget,
	usecases.ErrNotPlaying,
	usecases.ErrAlreadyPaused,
	usecases.ErrNotPaused,
	usecases.ErrNotEnoughItems,
}

// errorMessage maps a use case error to the reply shown to the user.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, usecases.ErrSessionClosed):
		return msgNoLongerApplicable
	case errors.Is(err, usecases.ErrResolutionFailed):
		return msgResolutionFailed
	case errors.Is(err, usecases.ErrTransport):
		return msgTransportFailed
	}

	for _, known := range userFacingErrors {
		if errors.Is(err, known) {
			return sentence(known.Error())
		}
	}

	slog.Error("unexpected command error", "error", err)
	return msgUnexpected
}

// sentence capitalizes s and terminates it with a period.
func sentence(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToUpper(s[:1]) + s[1:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}

func successEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: description,
		Color:       colorSuccess,
	}
}

func errorEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Error",
		Description: message,
		Color:       colorError,
	}
}

func respondEmbed(r bot.Responder, embed *discordgo.MessageEmbed, flags discordgo.MessageFlags) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  flags,
		},
	})
}

func respondSuccess(r bot.Responder, description string) error {
	return respondEmbed(r, successEmbed(description), 0)
}

func respondError(r bot.Responder, message string) error {
	return respondEmbed(r, errorEmbed(message), 0)
}

func respondErr(r bot.Responder, err error) error {
	return respondError(r, errorMessage(err))
}

func respondContent(r bot.Responder, content string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
}

func editEmbed(r bot.Responder, embed *discordgo.MessageEmbed) error {
	embeds := []*discordgo.MessageEmbed{embed}
	return r.Edit(&discordgo.WebhookEdit{Embeds: &embeds})
}

// trackLink renders a track title, linked to its source when known.
func trackLink(track *domain.Track) string {
	if track.SourceURL != "" {
		return "[" + track.Title + "](" + track.SourceURL + ")"
	}
	return "**" + track.Title + "**"
}
