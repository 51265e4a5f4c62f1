package discord

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// maxChoices is Discord's limit on autocomplete choices.
const maxChoices = 25

// AutocompleteHandler suggests queue positions for position options.
type AutocompleteHandler struct {
	queue *usecases.QueueService
}

// NewAutocompleteHandler creates a new AutocompleteHandler.
func NewAutocompleteHandler(queue *usecases.QueueService) *AutocompleteHandler {
	return &AutocompleteHandler{
		queue: queue,
	}
}

// HandleQueuePosition answers autocomplete for any option that takes a
// queue position: playnext index, reorder from and to, remove range.
func (h *AutocompleteHandler) HandleQueuePosition(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	choices := []*discordgo.ApplicationCommandOptionChoice{}

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		slog.Warn("failed to parse guild ID in autocomplete", "error", err, "guild", i.GuildID)
		return
	}

	if focused := focusedOption(i.ApplicationCommandData().Options); focused != nil {
		if output, err := h.queue.List(usecases.GuildInput{GuildID: guildID}); err == nil {
			choices = positionChoices(output.Tracks, focused.Type)
		}
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
	if err != nil {
		slog.Warn("failed to respond to autocomplete", "guild", guildID, "error", err)
	}
}

func focusedOption(
	options []*discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Focused {
			return opt
		}
	}
	return nil
}

// positionChoices lists the movable positions (2 and up). Integer options
// get integer values; string options get the position as text.
func positionChoices(
	tracks []*domain.Track,
	optionType discordgo.ApplicationCommandOptionType,
) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, min(maxChoices, max(0, len(tracks)-1)))

	for idx := 1; idx < len(tracks) && len(choices) < maxChoices; idx++ {
		position := idx + 1

		var value any = position
		if optionType == discordgo.ApplicationCommandOptionString {
			value = strconv.Itoa(position)
		}

		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("%d. %s", position, truncate(tracks[idx].Title, 90)),
			Value: value,
		})
	}

	return choices
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
