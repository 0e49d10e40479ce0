// Package config loads settings from the environment, with .env support for
// local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Discord  Discord
	ITAD     ITAD
	Priority Priority
	Digest   Digest
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type Discord struct {
	Token   string `env:"DISCORD_TOKEN,required"`
	AppID   string `env:"DISCORD_APP_ID,required"`
	GuildID string `env:"DISCORD_GUILD_ID"` // empty registers commands globally
}

type ITAD struct {
	APIKey    string        `env:"ITAD_API_KEY,required"`
	Timeout   time.Duration `env:"ITAD_TIMEOUT" envDefault:"10s"`
	RateLimit float64       `env:"ITAD_RATE_LIMIT" envDefault:"4"`
}

type Priority struct {
	DatabasePath string `env:"PRIORITY_DB_PATH" envDefault:"data/priority_games.json"`
}

type Digest struct {
	Enabled   bool   `env:"DIGEST_ENABLED" envDefault:"true"`
	ChannelID string `env:"DIGEST_CHANNEL_ID"`
	// Schedule is a cron expression; default posts at 09:00 daily.
	Schedule    string `env:"DIGEST_SCHEDULE" envDefault:"0 9 * * *"`
	MinDiscount int    `env:"DIGEST_MIN_DISCOUNT" envDefault:"30"`
}

// Load reads configuration, failing before any network call when a required
// value (Discord token, ITAD API key) is missing.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}
	return cfg, nil
}
