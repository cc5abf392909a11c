// Package validate provides admission control for candidate tracks against
// a queue snapshot.
package validate

import (
	"fmt"
	"time"

	"github.com/groovebox/groovebox/internal/domain/track"
	"github.com/groovebox/groovebox/internal/norm"
)

// Rejection reasons surfaced to the command layer.
const (
	ReasonInvalidData = "Invalid track data"
	ReasonDuplicate   = "Duplicate track detected"
)

// similarity component weights
const (
	titleWeight    = 0.4
	authorWeight   = 0.3
	durationWeight = 0.2
	urlWeight      = 0.1
)

// Result is the outcome of validating one track. Never persisted; consumed
// once by the caller.
type Result struct {
	IsValid bool
	Reason  string
	Score   float64 // advisory quality score in [0,1], set only when valid
}

// BatchResult partitions a batch of candidates, preserving input order
// within each partition.
type BatchResult struct {
	Valid   []track.Track
	Invalid []track.Track
	Results []Result // one per input track, in input order
}

// Validator decides admit/reject for candidate tracks.
// All methods are pure over the supplied queue snapshot.
type Validator struct {
	opts       Options
	normalizer *norm.Normalizer
}

// New creates a Validator.
func New(opts Options, normalizer *norm.Normalizer) *Validator {
	return &Validator{opts: opts, normalizer: normalizer}
}

// WithOptions returns a copy of the validator with the given options,
// sharing the normalizer. Used for per-command overrides.
func (v *Validator) WithOptions(opts Options) *Validator {
	return &Validator{opts: opts, normalizer: v.normalizer}
}

// Options returns the validator's options.
func (v *Validator) Options() Options {
	return v.opts
}

// ValidateTrack checks one candidate against the current queue snapshot.
func (v *Validator) ValidateTrack(candidate track.Track, queued []track.Track) Result {
	if !candidate.HasRequiredData() {
		return Result{Reason: ReasonInvalidData}
	}

	if max := v.opts.MaxDuration(); max > 0 && candidate.Duration > max {
		return Result{Reason: fmt.Sprintf("Track too long (max %d minutes)", int(max.Minutes()))}
	}
	if min := v.opts.MinDuration(); candidate.Duration < min {
		return Result{Reason: fmt.Sprintf("Track too short (min %d seconds)", int(min.Seconds()))}
	}

	if !v.opts.AllowDuplicates {
		for i := range queued {
			if v.TrackSimilarity(candidate, queued[i]) >= v.opts.DuplicateThreshold {
				return Result{Reason: ReasonDuplicate}
			}
		}
	}

	return Result{IsValid: true, Score: TrackQuality(candidate)}
}

// ValidateTracks validates a batch against the same queue snapshot.
func (v *Validator) ValidateTracks(candidates []track.Track, queued []track.Track) BatchResult {
	batch := BatchResult{Results: make([]Result, 0, len(candidates))}

	for _, c := range candidates {
		res := v.ValidateTrack(c, queued)
		batch.Results = append(batch.Results, res)
		if res.IsValid {
			batch.Valid = append(batch.Valid, c)
		} else {
			batch.Invalid = append(batch.Invalid, c)
		}
	}

	return batch
}

// TrackSimilarity returns a weighted composite similarity between two tracks
// in [0,1]. Symmetric.
func (v *Validator) TrackSimilarity(a, b track.Track) float64 {
	return titleWeight*norm.TokenSetSimilarity(a.Title, b.Title) +
		authorWeight*norm.TokenSetSimilarity(v.authorOf(a), v.authorOf(b)) +
		durationWeight*durationRatio(a.Duration, b.Duration) +
		urlWeight*boolToScore(a.URL == b.URL)
}

// authorOf returns the track's author, falling back to the artist extracted
// from the title when the source did not report one.
func (v *Validator) authorOf(t track.Track) string {
	if t.Author != "" {
		return t.Author
	}
	if at := v.normalizer.ExtractArtistTitle(t.Title); at.Artist != norm.UnknownArtist {
		return at.Artist
	}
	return ""
}

// TrackQuality scores a track's metadata completeness in [0,1].
// Advisory only, never an admission gate.
func TrackQuality(t track.Track) float64 {
	score := 0.5

	if l := len(t.Title); l > 10 && l < 100 {
		score += 0.1
	}
	if len(t.Author) > 2 {
		score += 0.1
	}
	if t.Duration >= 2*time.Minute && t.Duration <= 8*time.Minute {
		score += 0.2
	}
	if t.ThumbnailURL != "" {
		score += 0.1
	}
	if t.ViewCount > 1000 {
		score += 0.1
	}

	if score > 1 {
		score = 1
	}
	return score
}

func durationRatio(a, b time.Duration) float64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > b {
		a, b = b, a
	}
	return float64(a) / float64(b)
}

func boolToScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
