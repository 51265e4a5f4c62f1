package music_player

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/jukebox/internal/bot"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/session"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/jukebox/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/jukebox/internal/modules/music_player/presentation/discord"
)

// lavalinkConnectTimeout bounds the initial Lavalink handshake.
const lavalinkConnectTimeout = 10 * time.Second

// shutdownTimeout bounds stopping every session at exit.
const shutdownTimeout = 10 * time.Second

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var (
	_ bot.ConfigurableModule = (*MusicPlayerModule)(nil)
	_ bot.ComponentModule    = (*MusicPlayerModule)(nil)
)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	commandHandlers *discord.CommandHandlers
	autocomplete    *discord.AutocompleteHandler
	lavalinkAdapter *infrastructure.LavalinkAdapter

	registry         *session.Registry
	eventBus         *infrastructure.ChannelEventBus
	transportHandler *application.TransportEventHandler
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"play":       m.commandHandlers.HandlePlay,
		"playnext":   m.commandHandlers.HandlePlayNext,
		"pause":      m.commandHandlers.HandlePause,
		"resume":     m.commandHandlers.HandleResume,
		"stop":       m.commandHandlers.HandleStop,
		"nowplaying": m.commandHandlers.HandleNowPlaying,
		"reorder":    m.commandHandlers.HandleReorder,
		"setvolume":  m.commandHandlers.HandleSetVolume,
		"queue":      m.commandHandlers.HandleQueue,
		"skip":       m.commandHandlers.HandleSkip,
		"remove":     m.commandHandlers.HandleRemove,
		"shuffle":    m.commandHandlers.HandleShuffle,
		"loop":       m.commandHandlers.HandleLoop,
		"getvolume":  m.commandHandlers.HandleGetVolume,
	}
}

// ComponentHandlers returns the handlers for the now playing buttons.
func (m *MusicPlayerModule) ComponentHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		ports.ControlPause:  m.commandHandlers.HandleControl,
		ports.ControlResume: m.commandHandlers.HandleControl,
		ports.ControlStop:   m.commandHandlers.HandleControl,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.handleVoiceServerUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.handleVoiceStateUpdate(s, event)
		},
		func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			m.handleInteractionCreate(s, i)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init connects to Lavalink and wires the module.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return errors.New("music_player requires a Discord session")
	}
	if m.config == nil {
		if err := m.LoadConfig(); err != nil {
			return err
		}
	}

	// Create event bus (needed by Lavalink adapter for publishing events)
	m.eventBus = infrastructure.NewChannelEventBus(infrastructure.DefaultEventBufferSize)

	ctx, cancel := context.WithTimeout(context.Background(), lavalinkConnectTimeout)
	defer cancel()

	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(
		ctx,
		deps.Session,
		infrastructure.LavalinkConfig{
			Address:  m.config.LavalinkAddress,
			Password: m.config.LavalinkPassword,
			Secure:   m.config.LavalinkSecure,
		},
		m.eventBus,
	)
	if err != nil {
		m.eventBus.Close()
		return err
	}
	m.lavalinkAdapter = lavalinkAdapter

	display := infrastructure.NewDiscordStatusDisplay(deps.Session, m.config.StatusEditRate)
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)

	m.registry = session.NewRegistry(session.Dependencies{
		Player:          lavalinkAdapter,
		Voice:           lavalinkAdapter,
		Display:         display,
		RefreshInterval: m.config.RefreshInterval,
	})

	playback := usecases.NewPlaybackService(m.registry, lavalinkAdapter, voiceState)
	queue := usecases.NewQueueService(m.registry)

	m.transportHandler = application.NewTransportEventHandler(m.registry, m.eventBus)
	m.transportHandler.Start()

	m.commandHandlers = discord.NewCommandHandlers(playback, queue, m.config.QueueListBudget)
	m.autocomplete = discord.NewAutocompleteHandler(queue)

	slog.Info("music_player module initialized with Lavalink",
		"refresh_interval", m.config.RefreshInterval,
		"status_edit_rate", m.config.StatusEditRate,
	)

	return nil
}

// Shutdown stops every session, then closes the event bus and Lavalink.
func (m *MusicPlayerModule) Shutdown() error {
	if m.registry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		m.registry.Shutdown(ctx)
	}

	if m.eventBus != nil {
		m.eventBus.Close()
	}

	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Close()
	}

	return nil
}

// Event handlers.

func (m *MusicPlayerModule) handleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceServerUpdate(event)
	}
}

func (m *MusicPlayerModule) handleVoiceStateUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceStateUpdate(event)
	}
}

func (m *MusicPlayerModule) handleInteractionCreate(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	if i.Type != discordgo.InteractionApplicationCommandAutocomplete || m.autocomplete == nil {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "playnext", "reorder", "remove":
		m.autocomplete.HandleQueuePosition(s, i)
	}
}
