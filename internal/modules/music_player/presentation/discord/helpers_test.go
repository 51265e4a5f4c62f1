package discord

import (
	"context"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/require"

	"github.com/sglre6355/jukebox/internal/bot"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/session"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

const (
	testGuild   = "1"
	testUser    = "2"
	testChannel = "3"
	testVoice   = snowflake.ID(4)
)

type stubPlayer struct{}

func (stubPlayer) Play(context.Context, snowflake.ID, *domain.Track) error { return nil }
func (stubPlayer) Stop(context.Context, snowflake.ID) error                { return nil }
func (stubPlayer) Pause(context.Context, snowflake.ID) error               { return nil }
func (stubPlayer) Resume(context.Context, snowflake.ID) error              { return nil }
func (stubPlayer) SetGain(context.Context, snowflake.ID, float64) error    { return nil }
func (stubPlayer) Position(snowflake.ID) time.Duration                     { return 30 * time.Second }

type stubVoice struct{}

func (stubVoice) JoinChannel(context.Context, snowflake.ID, snowflake.ID) error { return nil }
func (stubVoice) LeaveChannel(context.Context, snowflake.ID) error              { return nil }

type stubDisplay struct {
	mu     sync.Mutex
	nextID snowflake.ID
}

func (d *stubDisplay) Deliver(
	_ context.Context,
	channelID snowflake.ID,
	_ ports.NowPlayingInfo,
) (*domain.NowPlayingMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	return domain.NewNowPlayingMessage(channelID, d.nextID), nil
}

func (d *stubDisplay) Update(context.Context, *domain.NowPlayingMessage, ports.NowPlayingInfo) error {
	return nil
}

func (d *stubDisplay) AwaitRefresh(context.Context) error { return nil }

func (d *stubDisplay) Locate(
	_ context.Context,
	message *domain.NowPlayingMessage,
) (*domain.NowPlayingMessage, error) {
	return message, nil
}

func (d *stubDisplay) Delete(context.Context, *domain.NowPlayingMessage) error { return nil }

func (d *stubDisplay) SendError(context.Context, snowflake.ID, string) error { return nil }

// stubResolver names tracks after the last path segment of their URL.
type stubResolver struct{}

func (stubResolver) ResolveTrack(_ context.Context, url string) (*domain.Track, error) {
	id := path.Base(url)
	return domain.NewTrack("Track "+id, "Artist", 3*time.Minute, "", url, "encoded-"+id), nil
}

type stubVoiceState struct {
	channels map[snowflake.ID]snowflake.ID
}

func (v stubVoiceState) GetUserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	return v.channels[userID], nil
}

type testHarness struct {
	registry *session.Registry
	handlers *CommandHandlers
	voice    stubVoiceState
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	registry := session.NewRegistry(session.Dependencies{
		Player:          stubPlayer{},
		Voice:           stubVoice{},
		Display:         &stubDisplay{},
		RefreshInterval: time.Hour,
	})
	t.Cleanup(func() { registry.Shutdown(context.Background()) })

	voice := stubVoiceState{channels: map[snowflake.ID]snowflake.ID{
		snowflake.MustParse(testUser): testVoice,
	}}

	return &testHarness{
		registry: registry,
		handlers: NewCommandHandlers(
			usecases.NewPlaybackService(registry, stubResolver{}, voice),
			usecases.NewQueueService(registry),
			DefaultListBudget,
		),
		voice: voice,
	}
}

func trackURL(id string) string {
	return "https://soundcloud.com/artist/" + id
}

// play runs /play for each id and requires every reply to succeed.
func (h *testHarness) play(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		r := &bot.MockResponder{}
		err := h.handlers.HandlePlay(nil, command("play", stringOpt("url", trackURL(id))), r)
		require.NoError(t, err)
		require.Equal(t, colorSuccess, editedEmbed(t, r).Color, editedEmbed(t, r).Description)
	}
}

func command(
	name string,
	options ...*discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:      discordgo.InteractionApplicationCommand,
			GuildID:   testGuild,
			ChannelID: testChannel,
			Member:    &discordgo.Member{User: &discordgo.User{ID: testUser}},
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    name,
				Options: options,
			},
		},
	}
}

func button(customID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:      discordgo.InteractionMessageComponent,
			GuildID:   testGuild,
			ChannelID: testChannel,
			Member:    &discordgo.Member{User: &discordgo.User{ID: testUser}},
			Data: discordgo.MessageComponentInteractionData{
				CustomID: customID,
			},
		},
	}
}

func stringOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

// intOpt mirrors the gateway, which decodes integers as float64.
func intOpt(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(value),
	}
}

func respondedEmbed(t *testing.T, r *bot.MockResponder) *discordgo.MessageEmbed {
	t.Helper()
	require.NotNil(t, r.LastResponse)
	require.NotNil(t, r.LastResponse.Data)
	require.Len(t, r.LastResponse.Data.Embeds, 1)
	return r.LastResponse.Data.Embeds[0]
}

func editedEmbed(t *testing.T, r *bot.MockResponder) *discordgo.MessageEmbed {
	t.Helper()
	require.True(t, r.Deferred, "expected a deferred reply")
	require.NotNil(t, r.LastEdit)
	require.NotNil(t, r.LastEdit.Embeds)
	require.Len(t, *r.LastEdit.Embeds, 1)
	return (*r.LastEdit.Embeds)[0]
}
