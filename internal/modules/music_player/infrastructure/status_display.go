package infrastructure

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/time/rate"

	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorNowPlaying = 0xCDF69C
	colorRed        = 0xE74C3C
)

// DefaultStatusEditRate is the default number of status edits per second
// shared by every guild.
const DefaultStatusEditRate = 5

// DiscordStatusDisplay renders the "Now Playing" message in a Discord text channel.
type DiscordStatusDisplay struct {
	session *discordgo.Session
	// refreshes paces periodic edits across every guild.
	refreshes *rate.Limiter
}

// NewDiscordStatusDisplay creates a new DiscordStatusDisplay allowing editsPerSecond
// periodic status edits per second.
func NewDiscordStatusDisplay(session *discordgo.Session, editsPerSecond float64) *DiscordStatusDisplay {
	if editsPerSecond <= 0 {
		editsPerSecond = DefaultStatusEditRate
	}
	return &DiscordStatusDisplay{
		session:   session,
		refreshes: rate.NewLimiter(rate.Limit(editsPerSecond), 1),
	}
}

// Deliver posts a new status display.
func (d *DiscordStatusDisplay) Deliver(
	ctx context.Context,
	channelID snowflake.ID,
	info ports.NowPlayingInfo,
) (*domain.NowPlayingMessage, error) {
	msg, err := d.session.ChannelMessageSendComplex(channelID.String(), &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{buildNowPlayingEmbed(info)},
		Components: buildNowPlayingComponents(info.Paused),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to send now playing message: %w", err)
	}

	return parseMessage(msg)
}

// Update edits an existing status display in place.
func (d *DiscordStatusDisplay) Update(
	ctx context.Context,
	message *domain.NowPlayingMessage,
	info ports.NowPlayingInfo,
) error {
	components := buildNowPlayingComponents(info.Paused)
	edit := discordgo.NewMessageEdit(message.ChannelID.String(), message.MessageID.String()).
		SetEmbed(buildNowPlayingEmbed(info))
	edit.Components = &components

	if _, err := d.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to edit now playing message: %w", err)
	}
	return nil
}

// AwaitRefresh waits for the shared periodic edit budget.
func (d *DiscordStatusDisplay) AwaitRefresh(ctx context.Context) error {
	return d.refreshes.Wait(ctx)
}

// Locate fetches the message again by its channel and message IDs.
func (d *DiscordStatusDisplay) Locate(
	ctx context.Context,
	message *domain.NowPlayingMessage,
) (*domain.NowPlayingMessage, error) {
	msg, err := d.session.ChannelMessage(
		message.ChannelID.String(),
		message.MessageID.String(),
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch now playing message: %w", err)
	}

	return parseMessage(msg)
}

// Delete removes a status display.
func (d *DiscordStatusDisplay) Delete(ctx context.Context, message *domain.NowPlayingMessage) error {
	return d.session.ChannelMessageDelete(
		message.ChannelID.String(),
		message.MessageID.String(),
		discordgo.WithContext(ctx),
	)
}

// SendError sends an error message embed to the channel.
func (d *DiscordStatusDisplay) SendError(
	ctx context.Context,
	channelID snowflake.ID,
	message string,
) error {
	embed := &discordgo.MessageEmbed{
		Description: message,
		Color:       colorRed,
	}

	_, err := d.session.ChannelMessageSendEmbed(channelID.String(), embed, discordgo.WithContext(ctx))
	return err
}

func parseMessage(msg *discordgo.Message) (*domain.NowPlayingMessage, error) {
	channelID, err := snowflake.Parse(msg.ChannelID)
	if err != nil {
		return nil, err
	}
	messageID, err := snowflake.Parse(msg.ID)
	if err != nil {
		return nil, err
	}
	return domain.NewNowPlayingMessage(channelID, messageID), nil
}

// buildNowPlayingEmbed renders the status display embed.
func buildNowPlayingEmbed(info ports.NowPlayingInfo) *discordgo.MessageEmbed {
	track := info.Track

	title := "🎶 Now Playing: " + track.Title
	if info.Paused {
		title = "⏸️ Paused: " + track.Title
	}

	footer := "Music Player"
	if info.Looping {
		footer += " • Loop enabled"
	}

	embed := &discordgo.MessageEmbed{
		Title: title,
		URL:   track.SourceURL,
		Color: colorNowPlaying,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Artist",
				Value:  track.Artist,
				Inline: true,
			},
			{
				Name:   "Duration",
				Value:  formatProgress(info),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: footer,
		},
	}

	if track.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{
			URL: track.ThumbnailURL,
		}
	}

	return embed
}

// formatProgress renders "elapsed / total", clamping elapsed to the track length.
func formatProgress(info ports.NowPlayingInfo) string {
	elapsed := max(0, min(info.Elapsed, info.Track.Duration))
	return domain.FormatClock(elapsed) + " / " + info.Track.FormattedDuration()
}

// buildNowPlayingComponents renders the control buttons, disabling the one
// that does not apply in the current state.
func buildNowPlayingComponents(paused bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Pause",
					Style:    discordgo.SecondaryButton,
					CustomID: ports.ControlPause,
					Emoji:    &discordgo.ComponentEmoji{Name: "⏸️"},
					Disabled: paused,
				},
				discordgo.Button{
					Label:    "Resume",
					Style:    discordgo.SuccessButton,
					CustomID: ports.ControlResume,
					Emoji:    &discordgo.ComponentEmoji{Name: "▶️"},
					Disabled: !paused,
				},
				discordgo.Button{
					Label:    "Stop",
					Style:    discordgo.DangerButton,
					CustomID: ports.ControlStop,
					Emoji:    &discordgo.ComponentEmoji{Name: "⏹️"},
				},
			},
		},
	}
}

// Ensure DiscordStatusDisplay implements ports.StatusDisplay.
var _ ports.StatusDisplay = (*DiscordStatusDisplay)(nil)
