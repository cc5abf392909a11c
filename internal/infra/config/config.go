// Package config provides configuration loading from YAML files.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Bot        BotConfig        `yaml:"bot"`
	Logging    LoggingConfig    `yaml:"logging"`
	Spotify    SpotifyConfig    `yaml:"spotify"`
	Queue      QueueConfig      `yaml:"queue"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Validation SettingsBlock    `yaml:"validation"`
	Search     SettingsBlock    `yaml:"search"`
	Messages   MessagesConfig   `yaml:"messages"`
}

// BotConfig represents Discord bot configuration.
type BotConfig struct {
	Token   string `yaml:"token" validate:"required"`
	GuildID string `yaml:"guild_id"` // when set, commands register per guild (fast sync for development)
}

// LoggingConfig represents logger configuration.
type LoggingConfig struct {
	Output string `yaml:"output" default:"stdout"`
	Level  string `yaml:"level" default:"info"`
	File   string `yaml:"file"`
}

// SpotifyConfig represents Spotify API configuration. Optional: the spotify
// engine is only wired when credentials are present.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// QueueConfig represents queue capacity configuration.
type QueueConfig struct {
	MaxSize int `yaml:"max_size" default:"100" validate:"gte=1,lte=1000"`
}

// NormalizerConfig represents the title normalizer configuration.
type NormalizerConfig struct {
	CacheSize           int     `yaml:"cache_size" default:"1000" validate:"gte=1"`
	FlushIntervalMin    int     `yaml:"flush_interval_min" default:"10" validate:"gte=1"`
	Threshold           float64 `yaml:"threshold" default:"0.8" validate:"gt=0,lte=1"`
	CaseSensitive       bool    `yaml:"case_sensitive"`
	NormalizeWhitespace bool    `yaml:"normalize_whitespace" default:"true"`
}

// SettingsBlock is a free-form settings map decoded by its consumer
// (validate.OptionsFromSettings, search.ConfigFromSettings).
type SettingsBlock struct {
	Settings map[string]any `yaml:"settings"`
}

// MessagesConfig represents user-facing messages rendered by the command
// layer. Rejection reasons from the core are mapped onto these.
type MessagesConfig struct {
	Queued        string `yaml:"queued" default:"Added **%s** to the queue."`
	QueuedMany    string `yaml:"queued_many" default:"Added %d tracks to the queue (%d skipped)."`
	QueueFull     string `yaml:"queue_full" default:"The queue is full."`
	Duplicate     string `yaml:"duplicate" default:"That track is already queued."`
	NothingFound  string `yaml:"nothing_found" default:"No tracks found for that query."`
	SearchFailed  string `yaml:"search_failed" default:"Search failed: %s"`
	DefaultError  string `yaml:"default_error" default:"Something went wrong."`
	QueueEmpty    string `yaml:"queue_empty" default:"The queue is empty."`
	Shuffled      string `yaml:"shuffled" default:"Shuffled %d tracks."`
	Cleared       string `yaml:"cleared" default:"Queue cleared."`
	Removed       string `yaml:"removed" default:"Removed **%s** from the queue."`
	Moved         string `yaml:"moved" default:"Moved **%s** to position %d."`
	InvalidIndex  string `yaml:"invalid_index" default:"That queue position does not exist."`
}

// Load loads configuration from a YAML file. Environment variables take
// precedence over file values for secrets.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// overrideFromEnv applies environment overrides for sensitive fields.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		c.Bot.Token = v
	}
	if v := os.Getenv("DISCORD_GUILD_ID"); v != "" {
		c.Bot.GuildID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
}
