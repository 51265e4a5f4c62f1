package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/bot"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

var errNotInGuild = errors.New("this command can only be used in a server")

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	playback   *usecases.PlaybackService
	queue      *usecases.QueueService
	listBudget int
}

// NewCommandHandlers creates new CommandHandlers. listBudget bounds the
// length of the /queue reply.
func NewCommandHandlers(
	playback *usecases.PlaybackService,
	queue *usecases.QueueService,
	listBudget int,
) *CommandHandlers {
	if listBudget <= 0 {
		listBudget = DefaultListBudget
	}
	return &CommandHandlers{
		playback:   playback,
		queue:      queue,
		listBudget: listBudget,
	}
}

// interactionContext holds the IDs every command needs.
type interactionContext struct {
	guildID   snowflake.ID
	userID    snowflake.ID
	channelID snowflake.ID
}

func parseInteraction(i *discordgo.InteractionCreate) (interactionContext, error) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return interactionContext{}, errNotInGuild
	}

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return interactionContext{}, fmt.Errorf("invalid guild: %w", err)
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return interactionContext{}, fmt.Errorf("invalid user: %w", err)
	}
	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return interactionContext{}, fmt.Errorf("invalid channel: %w", err)
	}

	return interactionContext{guildID: guildID, userID: userID, channelID: channelID}, nil
}

func stringOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func intOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) int {
	for _, opt := range options {
		if opt.Name == name {
			return int(opt.IntValue())
		}
	}
	return 0
}

// HandlePlay handles the /play command.
func (h *CommandHandlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, sentence(errNotInGuild.Error()))
	}
	url := stringOption(i.ApplicationCommandData().Options, "url")

	// Resolution can take longer than the interaction deadline
	if err := r.Defer(); err != nil {
		return err
	}

	output, err := h.playback.Play(context.Background(), usecases.PlayInput{
		GuildID:               ic.guildID,
		UserID:                ic.userID,
		NotificationChannelID: ic.channelID,
		URL:                   url,
	})
	if err != nil {
		return editEmbed(r, errorEmbed(errorMessage(err)))
	}

	return editEmbed(r, successEmbed(describeQueued(output)))
}

func describeQueued(output *usecases.PlayOutput) string {
	if output.Started {
		return "Now playing " + trackLink(output.Track) + "."
	}
	return fmt.Sprintf("Added %s to the queue at position %d.", trackLink(output.Track), output.Position)
}

// HandlePlayNext handles the /playnext command.
func (h *CommandHandlers) HandlePlayNext(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, sentence(errNotInGuild.Error()))
	}
	options := i.ApplicationCommandData().Options
	input := usecases.PlayNextInput{
		GuildID:               ic.guildID,
		UserID:                ic.userID,
		NotificationChannelID: ic.channelID,
		URL:                   stringOption(options, "url"),
		Position:              intOption(options, "index"),
	}

	if input.URL == "" {
		output, err := h.playback.PlayNext(context.Background(), input)
		if err != nil {
			return respondErr(r, err)
		}
		return respondSuccess(r, describePlayNext(output))
	}

	if err := r.Defer(); err != nil {
		return err
	}

	output, err := h.playback.PlayNext(context.Background(), input)
	if err != nil {
		return editEmbed(r, errorEmbed(errorMessage(err)))
	}

	return editEmbed(r, successEmbed(describePlayNext(output)))
}

func describePlayNext(output *usecases.PlayNextOutput) string {
	switch {
	case output.Moved:
		return "Moved " + trackLink(output.Track) + " to play next."
	case output.Started:
		return "Now playing " + trackLink(output.Track) + "."
	default:
		return trackLink(output.Track) + " will play next."
	}
}

// HandlePause handles the /pause command.
func (h *CommandHandlers) HandlePause(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.pause(i, r, 0)
}

func (h *CommandHandlers) pause(
	i *discordgo.InteractionCreate,
	r bot.Responder,
	flags discordgo.MessageFlags,
) error {
	ic, err := parseInteraction(i)
	if err != nil {
		return respondEmbed(r, errorEmbed(sentence(errNotInGuild.Error())), flags)
	}

	if err := h.playback.Pause(context.Background(), usecases.GuildInput{GuildID: ic.guildID}); err != nil {
		return respondEmbed(r, errorEmbed(errorMessage(err)), flags)
	}

	return respondEmbed(r, successEmbed("Paused playback."), flags)
}

// HandleResume handles the /resume command.
func (h *CommandHandlers) HandleResume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.resume(i, r, 0)
}

func (h *CommandHandlers) resume(
	i *discordgo.InteractionCreate,
	r bot.Responder,
	flags discordgo.MessageFlags,
) error {
	ic, err := parseInteraction(i)
	if err != nil {
		return respondEmbed(r, errorEmbed(sentence(errNotInGuild.Error())), flags)
	}

	if err := h.playback.Resume(context.Background(), usecases.GuildInput{GuildID: ic.guildID}); err != nil {
		return respondEmbed(r, errorEmbed(errorMessage(err)), flags)
	}

	return respondEmbed(r, successEmbed("Resumed playback."), flags)
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.stop(i, r, 0)
}

func (h *CommandHandlers) stop(
	i *discordgo.InteractionCreate,
	r bot.Responder,
	flags discordgo.MessageFlags,
) error {
	ic, err := parseInteraction(i)
	if err != nil {
		return respondEmbed(r, errorEmbed(sentence(errNotInGuild.Error())), flags)
	}

	if err := h.playback.Stop(context.Background(), usecases.GuildInput{GuildID: ic.guildID}); err != nil {
		return respondEmbed(r, errorEmbed(errorMessage(err)), flags)
	}

	return respondEmbed(r, successEmbed("Stopped playback and left the voice channel."), flags)
}

// HandleControl handles the buttons on the now playing message.
// Replies are only visible to the user who pressed the button.
func (h *CommandHandlers) HandleControl(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	switch i.MessageComponentData().CustomID {
	case ports.ControlPause:
		return h.pause(i, r, discordgo.MessageFlagsEphemeral)
	case ports.ControlResume:
		return h.resume(i, r, discordgo.MessageFlagsEphemeral)
	case ports.ControlStop:
		return h.stop(i, r, discordgo.MessageFlagsEphemeral)
	default:
		return respondEmbed(r, errorEmbed("Unknown control."), discordgo.MessageFlagsEphemeral)
	}
}

// HandleNowPlaying handles the /nowplaying command.
func (h *CommandHandlers) HandleNowPlaying(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, sentence(errNotInGuild.Error()))
	}

	info, err := h.playback.NowPlaying(usecases.GuildInput{GuildID: ic.guildID})
	if err != nil {
		return respondErr(r, err)
	}

	return respondSuccess(r, describeNowPlaying(info))
}

func describeNowPlaying(info *usecases.NowPlayingInfo) string {
	track := info.Track
	elapsed := max(0, min(info.Elapsed, track.Duration))

	description := fmt.Sprintf(
		"**Now Playing:** %s by %s\n`%s / %s`",
		trackLink(track),
		track.Artist,
		domain.FormatClock(elapsed),
		track.FormattedDuration(),
	)
	if info.Paused {
		description += " (paused)"
	}
	if info.Looping {
		description += "\nQueue loop is enabled."
	}
	return description
}

// HandleReorder handles the /reorder command.
func (h *CommandHandlers) HandleReorder(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, sentence(errNotInGuild.Error()))
	}
	options := i.ApplicationCommandData().Options
	to := intOption(options, "to")

	output, err := h.queue.Reorder(usecases.QueueReorderInput{
		GuildID: ic.guildID,
		From:    intOption(options, "from"),
		To:      to,
	})
	if err != nil {
		return respondErr(r, err)
	}

	return respondSuccess(r, fmt.Sprintf("Moved %s to position %d.", trackLink(output.MovedTrack), to))
}

// HandleSetVolume handles the /setvolume command.
func (h *CommandHandlers) HandleSetVolume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, sentence(errNotInGuild.Error()))
	}

	volume, err := h.playback.SetVolume(context.Background(), usecases.SetVolumeInput{
		GuildID: ic.guildID,
		UserID:  ic.userID,
		Percent: intOption(i.ApplicationCommandData().Options, "volume"),
	})
	if err != nil {
		return respondErr(r, err)
	}

	return respondSuccess(r, fmt.Sprintf("Volume set to %s.", volume))
}

// HandleGetVolume handles the /getvolume command.
func (h *CommandHandlers) HandleGetVolume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, sentence(errNotInGuild.Error()))
	}

	output := h.playback.GetVolume(usecases.GuildInput{GuildID: ic.guildID})
	if output.IsDefault {
		return respondSuccess(r, fmt.Sprintf("Current volume: default (%s).", output.Volume))
	}
	return respondSuccess(r, fmt.Sprintf("Current volume: %s.", output.Volume))
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, sentence(errNotInGuild.Error()))
	}

	output, err := h.queue.List(usecases.GuildInput{GuildID: ic.guildID})
	if err != nil {
		return respondErr(r, err)
	}

	return respondContent(r, renderQueueListing(output.Tracks, output.Looping, h.listBudget))
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, sentence(errNotInGuild.Error()))
	}

	output, err := h.playback.Skip(context.Background(), usecases.GuildInput{GuildID: ic.guildID})
	if err != nil {
		return respondErr(r, err)
	}

	description := "Skipped " + trackLink(output.SkippedTrack) + "."
	if output.NextTrack != nil {
		description += " Now playing " + trackLink(output.NextTrack) + "."
	} else {
		description += " The queue is empty, leaving the voice channel."
	}
	return respondSuccess(r, description)
}

// HandleRemove handles the /remove command.
func (h *CommandHandlers) HandleRemove(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, sentence(errNotInGuild.Error()))
	}

	positions, err := domain.ParseRange(stringOption(i.ApplicationCommandData().Options, "range"))
	if err != nil {
		return respondErr(r, err)
	}

	output, err := h.queue.Remove(usecases.QueueRemoveInput{
		GuildID: ic.guildID,
		Range:   positions,
	})
	if err != nil {
		return respondErr(r, err)
	}

	return respondSuccess(r, describeRemoval(output.Range))
}

// HandleShuffle handles the /shuffle command.
func (h *CommandHandlers) HandleShuffle(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, sentence(errNotInGuild.Error()))
	}

	if err := h.queue.Shuffle(usecases.GuildInput{GuildID: ic.guildID}); err != nil {
		return respondErr(r, err)
	}

	return respondSuccess(r, "Shuffled the queue.")
}

// HandleLoop handles the /loop command.
func (h *CommandHandlers) HandleLoop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, sentence(errNotInGuild.Error()))
	}

	output, err := h.queue.Loop(usecases.GuildInput{GuildID: ic.guildID})
	if err != nil {
		return respondErr(r, err)
	}

	if output.Enabled {
		return respondSuccess(r, "Queue loop enabled.")
	}
	return respondSuccess(r, "Queue loop disabled.")
}
