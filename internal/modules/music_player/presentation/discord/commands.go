package discord

import "github.com/bwmarrin/discordgo"

// Commands returns all slash commands for the music player module.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "play",
			Description: "Play a SoundCloud track or add it to the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "url",
					Description: "SoundCloud track URL",
					Required:    true,
				},
			},
		},
		{
			Name:        "playnext",
			Description: "Play a track right after the current one",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "url",
					Description: "SoundCloud track URL to add next",
					Required:    false,
				},
				{
					Type:         discordgo.ApplicationCommandOptionInteger,
					Name:         "index",
					Description:  "Queue position of a track to move next",
					Required:     false,
					MinValue:     floatPtr(2),
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "pause",
			Description: "Pause playback",
		},
		{
			Name:        "resume",
			Description: "Resume playback",
		},
		{
			Name:        "stop",
			Description: "Stop playback, clear the queue and leave the voice channel",
		},
		{
			Name:        "nowplaying",
			Description: "Show the current track",
		},
		{
			Name:        "reorder",
			Description: "Move a track to another queue position",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionInteger,
					Name:         "from",
					Description:  "Current position of the track",
					Required:     true,
					MinValue:     floatPtr(2),
					Autocomplete: true,
				},
				{
					Type:         discordgo.ApplicationCommandOptionInteger,
					Name:         "to",
					Description:  "New position of the track",
					Required:     true,
					MinValue:     floatPtr(2),
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "setvolume",
			Description: "Set the playback volume",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "volume",
					Description: "Volume from 1 to 100",
					Required:    true,
					MinValue:    floatPtr(1),
					MaxValue:    100,
				},
			},
		},
		{
			Name:        "queue",
			Description: "Show the current queue",
		},
		{
			Name:        "skip",
			Description: "Skip the current track",
		},
		{
			Name:        "remove",
			Description: "Remove tracks from the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "range",
					Description:  "Position or range to remove, e.g. 3 or 3-5",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "shuffle",
			Description: "Shuffle the upcoming tracks",
		},
		{
			Name:        "loop",
			Description: "Toggle queue looping",
		},
		{
			Name:        "getvolume",
			Description: "Show the playback volume",
		},
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
