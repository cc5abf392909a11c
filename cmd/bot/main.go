// Package main provides the bot entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/groovebox/groovebox/internal/bot"
	"github.com/groovebox/groovebox/internal/infra/config"
	"github.com/groovebox/groovebox/internal/infra/logger"
	"github.com/groovebox/groovebox/internal/infra/spotify"
	"github.com/groovebox/groovebox/internal/infra/youtube"
	"github.com/groovebox/groovebox/internal/infra/ytmusic"
	"github.com/groovebox/groovebox/internal/norm"
	"github.com/groovebox/groovebox/internal/queue"
	"github.com/groovebox/groovebox/internal/search"
	"github.com/groovebox/groovebox/internal/validate"
)

var (
	app        = kingpin.New("groovebox", "groovebox music bot")
	configPath = app.Flag("config", "Path to config file").Default("config/bot.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	loggerConfig := logger.Config{
		Output: cfg.Logging.Output,
		Level:  cfg.Logging.Level,
		File:   cfg.Logging.File,
	}
	// Command-line flags win over the config file
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
		loggerConfig.File = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loaded config from %s", *configPath)

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Bot error: %v", err)
		os.Exit(1)
	}
}

// run executes the main bot logic. Using a separate function ensures defer
// statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	normalizer, err := norm.New(
		norm.Options{
			Threshold:           cfg.Normalizer.Threshold,
			CaseSensitive:       cfg.Normalizer.CaseSensitive,
			NormalizeWhitespace: cfg.Normalizer.NormalizeWhitespace,
		},
		cfg.Normalizer.CacheSize,
		time.Duration(cfg.Normalizer.FlushIntervalMin)*time.Minute,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create normalizer")
	}
	normalizer.Start(ctx)

	validateOpts, err := validate.OptionsFromSettings(cfg.Validation.Settings)
	if err != nil {
		return errors.Wrap(err, "invalid validation settings")
	}
	validator := validate.New(validateOpts, normalizer)
	queues := queue.NewManager(validator, cfg.Queue.MaxSize)

	searchCfg, err := search.ConfigFromSettings(cfg.Search.Settings)
	if err != nil {
		return errors.Wrap(err, "invalid search settings")
	}
	searcher := search.NewManager(searchCfg)

	ytClient := youtube.NewClient(0, cfg.Queue.MaxSize)
	searcher.Register(youtube.NewVideoEngine(ytClient))
	searcher.Register(youtube.NewPlaylistEngine(ytClient))
	searcher.Register(ytmusic.New(0))

	if cfg.Spotify.ClientID != "" && cfg.Spotify.ClientSecret != "" {
		spotifyEngine, err := spotify.New(ctx, spotify.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
		}, 0)
		if err != nil {
			return errors.Wrap(err, "failed to create spotify engine")
		}
		searcher.Register(spotifyEngine)
	} else {
		zlog.Info().Msg("Spotify credentials not configured, spotify engine disabled")
	}

	b, err := bot.New(cfg, searcher, queues, searchCfg.EnableFallbacks)
	if err != nil {
		return errors.Wrap(err, "failed to create bot")
	}

	if err := b.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start bot")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	zlog.Info().Msg("Received shutdown signal...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	b.Close(shutdownCtx)

	zlog.Info().Msg("Bot stopped")
	return nil
}
