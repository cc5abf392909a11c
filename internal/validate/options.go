package validate

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Options controls track admission.
type Options struct {
	AllowDuplicates    bool    `mapstructure:"allow_duplicates"`
	DuplicateThreshold float64 `mapstructure:"duplicate_threshold" default:"0.8" validate:"gt=0,lte=1"`
	MinDurationMs      int64   `mapstructure:"min_duration_ms" default:"30000" validate:"gte=0"`
	MaxDurationMs      int64   `mapstructure:"max_duration_ms" default:"600000" validate:"gte=0"`
}

// MinDuration returns the minimum admitted duration.
func (o Options) MinDuration() time.Duration {
	return time.Duration(o.MinDurationMs) * time.Millisecond
}

// MaxDuration returns the maximum admitted duration.
func (o Options) MaxDuration() time.Duration {
	return time.Duration(o.MaxDurationMs) * time.Millisecond
}

// DefaultOptions returns Options with all defaults applied.
func DefaultOptions() Options {
	var o Options
	_ = defaults.Set(&o)
	return o
}

// OptionsFromSettings decodes a raw settings block into Options, applying
// defaults and validating the result.
func OptionsFromSettings(settings map[string]any) (Options, error) {
	var opts Options

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &opts,
		TagName: "mapstructure",
	})
	if err != nil {
		return Options{}, errors.Wrap(err, "failed to create decoder")
	}
	if err := decoder.Decode(settings); err != nil {
		return Options{}, errors.Wrap(err, "failed to decode settings")
	}

	if err := defaults.Set(&opts); err != nil {
		return Options{}, errors.Wrap(err, "failed to set defaults")
	}

	if err := validator.New().Struct(opts); err != nil {
		return Options{}, errors.Wrap(err, "validation failed")
	}

	if opts.MaxDurationMs > 0 && opts.MinDurationMs > opts.MaxDurationMs {
		return Options{}, errors.New("min_duration_ms cannot be greater than max_duration_ms")
	}

	return opts, nil
}
