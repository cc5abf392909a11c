package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovebox/groovebox/internal/domain/track"
	"github.com/groovebox/groovebox/internal/norm"
)

func newTestValidator(t *testing.T, opts Options) *Validator {
	t.Helper()
	n, err := norm.New(norm.Options{Threshold: 0.8, NormalizeWhitespace: true}, 100, time.Hour)
	require.NoError(t, err)
	return New(opts, n)
}

func goodTrack() track.Track {
	return track.Track{
		ID:       "u1",
		Title:    "Song A",
		Author:   "Artist X",
		URL:      "https://example.com/u1",
		Duration: 200 * time.Second,
	}
}

func TestValidateTrackStructural(t *testing.T) {
	v := newTestValidator(t, DefaultOptions())

	tests := []struct {
		name  string
		track track.Track
	}{
		{name: "missing title", track: track.Track{URL: "u", Duration: time.Minute}},
		{name: "missing url", track: track.Track{Title: "t", Duration: time.Minute}},
		{name: "missing duration", track: track.Track{Title: "t", URL: "u"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.ValidateTrack(tt.track, nil)
			assert.False(t, res.IsValid)
			assert.Equal(t, ReasonInvalidData, res.Reason)
		})
	}
}

func TestValidateTrackDurationBounds(t *testing.T) {
	v := newTestValidator(t, DefaultOptions())

	tests := []struct {
		name     string
		duration time.Duration
		valid    bool
		reason   string
	}{
		{name: "just below minimum", duration: 29999 * time.Millisecond, valid: false, reason: "Track too short (min 30 seconds)"},
		{name: "exactly minimum", duration: 30000 * time.Millisecond, valid: true},
		{name: "exactly maximum", duration: 600000 * time.Millisecond, valid: true},
		{name: "just above maximum", duration: 600001 * time.Millisecond, valid: false, reason: "Track too long (max 10 minutes)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := goodTrack()
			tr.Duration = tt.duration
			res := v.ValidateTrack(tr, nil)
			assert.Equal(t, tt.valid, res.IsValid)
			if !tt.valid {
				assert.Equal(t, tt.reason, res.Reason)
			}
		})
	}
}

func TestValidateTrackDuplicate(t *testing.T) {
	v := newTestValidator(t, DefaultOptions())
	queued := []track.Track{goodTrack()}

	res := v.ValidateTrack(goodTrack(), queued)
	assert.False(t, res.IsValid)
	assert.Equal(t, ReasonDuplicate, res.Reason)

	// different song by a different artist is admitted
	other := track.Track{
		ID:       "u2",
		Title:    "Completely Other Tune",
		Author:   "Someone Else",
		URL:      "https://example.com/u2",
		Duration: 95 * time.Second,
	}
	res = v.ValidateTrack(other, queued)
	assert.True(t, res.IsValid)
}

func TestValidateTrackAllowDuplicates(t *testing.T) {
	opts := DefaultOptions()
	opts.AllowDuplicates = true
	v := newTestValidator(t, opts)

	res := v.ValidateTrack(goodTrack(), []track.Track{goodTrack()})
	assert.True(t, res.IsValid)
}

func TestTrackSimilaritySymmetry(t *testing.T) {
	v := newTestValidator(t, DefaultOptions())

	a := goodTrack()
	b := track.Track{
		ID:       "u2",
		Title:    "Song A Remix",
		Author:   "Artist X",
		URL:      "https://example.com/u2",
		Duration: 210 * time.Second,
	}

	assert.InDelta(t, v.TrackSimilarity(a, b), v.TrackSimilarity(b, a), 1e-9)
}

func TestTrackSimilarityIdentical(t *testing.T) {
	v := newTestValidator(t, DefaultOptions())
	assert.InDelta(t, 1.0, v.TrackSimilarity(goodTrack(), goodTrack()), 1e-9)
}

func TestTrackSimilarityZeroDuration(t *testing.T) {
	v := newTestValidator(t, DefaultOptions())

	a := goodTrack()
	b := goodTrack()
	b.Duration = 0

	// duration component contributes nothing when either side is zero
	assert.InDelta(t, 0.8, v.TrackSimilarity(a, b), 1e-9)
}

func TestTrackQuality(t *testing.T) {
	tests := []struct {
		name     string
		track    track.Track
		expected float64
	}{
		{
			name:     "bare minimum",
			track:    track.Track{Title: "x", URL: "u", Duration: 31 * time.Second},
			expected: 0.5,
		},
		{
			name: "everything bonused",
			track: track.Track{
				Title:        "A Title Longer Than Ten",
				Author:       "Artist X",
				URL:          "u",
				Duration:     4 * time.Minute,
				ThumbnailURL: "https://example.com/t.jpg",
				ViewCount:    50000,
			},
			expected: 1.0,
		},
		{
			name: "duration bonus boundaries inclusive",
			track: track.Track{
				Title:    "x",
				URL:      "u",
				Duration: 2 * time.Minute,
			},
			expected: 0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, TrackQuality(tt.track), 1e-9)
		})
	}
}

func TestValidateTracksPartition(t *testing.T) {
	v := newTestValidator(t, DefaultOptions())

	tooLong := goodTrack()
	tooLong.ID, tooLong.URL = "u3", "https://example.com/u3"
	tooLong.Title = "Way Too Long Epic"
	tooLong.Duration = 700 * time.Second

	second := track.Track{
		ID:       "u2",
		Title:    "Another Fine Tune",
		Author:   "Artist Y",
		URL:      "https://example.com/u2",
		Duration: 180 * time.Second,
	}

	batch := v.ValidateTracks([]track.Track{goodTrack(), tooLong, second}, nil)

	require.Len(t, batch.Results, 3)
	require.Len(t, batch.Valid, 2)
	assert.Equal(t, []string{"u1", "u2"}, []string{batch.Valid[0].ID, batch.Valid[1].ID}, "order preserved")
	require.Len(t, batch.Invalid, 1)
	assert.Equal(t, "u3", batch.Invalid[0].ID)
	assert.False(t, batch.Results[1].IsValid)
	assert.Equal(t, "Track too long (max 10 minutes)", batch.Results[1].Reason)
}

func TestOptionsFromSettings(t *testing.T) {
	opts, err := OptionsFromSettings(map[string]any{
		"duplicate_threshold": 0.9,
		"allow_duplicates":    true,
	})
	require.NoError(t, err)
	assert.True(t, opts.AllowDuplicates)
	assert.InDelta(t, 0.9, opts.DuplicateThreshold, 1e-9)
	assert.Equal(t, 30*time.Second, opts.MinDuration())
	assert.Equal(t, 10*time.Minute, opts.MaxDuration())

	_, err = OptionsFromSettings(map[string]any{
		"min_duration_ms": 5000,
		"max_duration_ms": 1000,
	})
	assert.Error(t, err)
}
