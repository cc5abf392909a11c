package search

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/groovebox/groovebox/internal/domain/track"
)

// Config controls the retry loop and fallback ordering.
type Config struct {
	MaxRetries        int      `mapstructure:"max_retries" default:"3" validate:"gte=1,lte=10"`
	EnableFallbacks   bool     `mapstructure:"enable_fallbacks" default:"true"`
	DefaultTextEngine string   `mapstructure:"default_text_engine" default:"ytmusic"`
	RetryDelayMs      int      `mapstructure:"retry_delay_ms" default:"500" validate:"gte=0,lte=10000"`
	FallbackOrder     []string `mapstructure:"fallback_order"`
}

// ConfigFromSettings decodes a raw settings block, applying defaults and
// validating the result.
func ConfigFromSettings(settings map[string]any) (Config, error) {
	var cfg Config

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &cfg,
		TagName: "mapstructure",
	})
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to create decoder")
	}
	if err := decoder.Decode(settings); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, errors.Wrap(err, "validation failed")
	}
	return cfg, nil
}

// Request describes one search.
type Request struct {
	Query           string
	RequestedBy     track.Requester
	PreferredEngine EngineID // empty means auto-detect
	MaxRetries      int      // 0 means the configured default
	EnableFallbacks bool
}

// Outcome is the result of a search. Err is empty on success; a success may
// still carry zero tracks when every engine came back empty.
type Outcome struct {
	Tracks       []track.Track
	Err          string
	UsedFallback bool
	Attempts     int
}

// Success reports whether the search completed without a terminal error.
func (o Outcome) Success() bool {
	return o.Err == ""
}

// Manager selects engines and executes queries against them. It never lets
// an engine error escape: every failure is classified, logged, and folded
// into the Outcome.
type Manager struct {
	cfg      Config
	engines  map[EngineID]Engine
	fallback []EngineID
}

// NewManager creates a search manager. Engines are registered afterwards
// with Register.
func NewManager(cfg Config) *Manager {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.DefaultTextEngine == "" {
		cfg.DefaultTextEngine = string(EngineYTMusic)
	}

	fallback := make([]EngineID, 0, len(cfg.FallbackOrder))
	for _, id := range cfg.FallbackOrder {
		fallback = append(fallback, EngineID(id))
	}
	if len(fallback) == 0 {
		fallback = []EngineID{EngineYTMusic, EngineYouTube, EngineSpotify}
	}

	return &Manager{
		cfg:      cfg,
		engines:  make(map[EngineID]Engine),
		fallback: fallback,
	}
}

// Register adds an engine. Engines registered under the same ID replace
// each other.
func (m *Manager) Register(e Engine) {
	m.engines[e.Name()] = e
}

// Search resolves the request with a single attempt against the primary
// engine.
func (m *Manager) Search(ctx context.Context, req Request) Outcome {
	req.MaxRetries = 1
	req.EnableFallbacks = false
	return m.SearchWithRetry(ctx, req)
}

// SearchWithRetry resolves the request inside a bounded retry loop,
// substituting fallback engines when the classified error points at a
// provider-level fault. The first engine returning at least one track wins.
func (m *Manager) SearchWithRetry(ctx context.Context, req Request) Outcome {
	requestID := uuid.NewString()

	primary := req.PreferredEngine
	if primary == "" {
		primary = Detect(req.Query, EngineID(m.cfg.DefaultTextEngine))
	}

	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = m.cfg.MaxRetries
	}

	outcome := Outcome{}
	engineID := primary
	unknownRetried := false

	zlog.Debug().Msgf("search started: request=%s engine=%s query=%q", requestID, engineID, req.Query)

	for outcome.Attempts < maxRetries {
		if err := ctx.Err(); err != nil {
			outcome.Err = "Search canceled."
			return outcome
		}
		outcome.Attempts++

		engine, ok := m.engines[engineID]
		if !ok {
			// engine not wired (e.g. spotify disabled in config)
			next, found := m.nextFallback(engineID, primary)
			if req.EnableFallbacks && found {
				zlog.Debug().Msgf("engine unavailable, falling back: request=%s engine=%s next=%s", requestID, engineID, next)
				engineID = next
				outcome.UsedFallback = true
				continue
			}
			outcome.Err = "No search engine available."
			return outcome
		}

		tracks, err := engine.Search(ctx, req.Query, req.RequestedBy)
		if err == nil {
			if len(tracks) > 0 {
				zlog.Info().Msgf("search succeeded: request=%s engine=%s tracks=%d attempts=%d fallback=%t",
					requestID, engineID, len(tracks), outcome.Attempts, outcome.UsedFallback)
				outcome.Tracks = tracks
				return outcome
			}
			// empty result is not a fault; try the next engine for coverage
			next, found := m.nextFallback(engineID, primary)
			if req.EnableFallbacks && found {
				engineID = next
				outcome.UsedFallback = true
				continue
			}
			return outcome
		}

		cls := Classify(err)
		zlog.WithLevel(cls.LogLevel).Msgf("search attempt failed: request=%s engine=%s kind=%s attempt=%d error=%v",
			requestID, engineID, cls.Kind, outcome.Attempts, err)

		if !cls.ShouldRetry {
			outcome.Err = cls.UserMessage
			return outcome
		}
		if cls.Kind == KindUnknown {
			if unknownRetried {
				outcome.Err = cls.UserMessage
				return outcome
			}
			unknownRetried = true
		}

		if cls.RetryWithFallback && req.EnableFallbacks {
			if next, found := m.nextFallback(engineID, primary); found {
				engineID = next
				outcome.UsedFallback = true
			}
		}

		if outcome.Attempts < maxRetries {
			if err := m.wait(ctx, outcome.Attempts); err != nil {
				outcome.Err = "Search canceled."
				return outcome
			}
		} else {
			outcome.Err = cls.UserMessage
		}
	}

	if outcome.Err == "" {
		outcome.Err = "Search failed."
	}
	return outcome
}

// nextFallback returns the first configured fallback engine that differs
// from both the current and the primary engine.
func (m *Manager) nextFallback(current, primary EngineID) (EngineID, bool) {
	for _, id := range m.fallback {
		if id == current || id == primary {
			continue
		}
		if _, ok := m.engines[id]; ok {
			return id, true
		}
	}
	return "", false
}

// wait sleeps the linear backoff delay, aborting on cancellation.
func (m *Manager) wait(ctx context.Context, attempt int) error {
	delay := time.Duration(m.cfg.RetryDelayMs) * time.Millisecond * time.Duration(attempt)
	if delay == 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
