package music_player

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sglre6355/jukebox/internal/modules/music_player/presentation/discord"
)

// Config holds the music player module configuration.
type Config struct {
	LavalinkAddress  string `env:"LAVALINK_ADDRESS,notEmpty"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE"`

	RefreshInterval time.Duration `env:"MUSIC_REFRESH_INTERVAL" envDefault:"15s"`
	QueueListBudget int           `env:"MUSIC_QUEUE_LIST_BUDGET" envDefault:"2000"`
	StatusEditRate  float64       `env:"MUSIC_STATUS_EDIT_RATE" envDefault:"5"`
}

func loadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse music player config: %w", err)
	}

	if cfg.RefreshInterval <= 0 {
		return nil, fmt.Errorf("MUSIC_REFRESH_INTERVAL must be positive, got %s", cfg.RefreshInterval)
	}
	if cfg.QueueListBudget <= discord.TruncationMargin {
		return nil, fmt.Errorf("MUSIC_QUEUE_LIST_BUDGET must be greater than %d, got %d",
			discord.TruncationMargin, cfg.QueueListBudget)
	}
	if cfg.StatusEditRate <= 0 {
		return nil, fmt.Errorf("MUSIC_STATUS_EDIT_RATE must be positive, got %v", cfg.StatusEditRate)
	}

	return cfg, nil
}
