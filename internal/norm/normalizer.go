// Package norm turns raw display titles into best-effort {artist, title}
// pairs and provides token-set similarity between titles.
package norm

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru/v2"
	zlog "github.com/rs/zerolog/log"

	"github.com/groovebox/groovebox/internal/domain/track"
)

const (
	// DefaultCacheSize bounds the extraction cache.
	DefaultCacheSize = 1000
	// DefaultFlushInterval is how often the cache is fully cleared to bound
	// staleness regardless of access pattern.
	DefaultFlushInterval = 10 * time.Minute
)

// UnknownArtist is the fallback artist name when extraction fails.
const UnknownArtist = "Unknown"

// extraction pattern groups, tried in order. The first group whose pattern
// yields both a non-empty artist and title wins.
var (
	// noise stripped before any pattern is applied
	noisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s*[(\[](official\s*)?(music\s*)?(video|audio|visuali[sz]er)[)\]]`),
		regexp.MustCompile(`(?i)\s*[(\[]official[)\]]`),
		regexp.MustCompile(`(?i)\s*[(\[]lyrics?(\s*video)?[)\]]`),
		regexp.MustCompile(`(?i)\s*[(\[](hd|hq|4k|full\s*hd)[)\]]`),
		regexp.MustCompile(`(?i)\s*【[^】]*】`),
	}

	// separator patterns: "Artist - Title" and friends
	separatorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(.+?)\s+[-–—]\s+(.+)$`),
		regexp.MustCompile(`^(.+?)\s*\|\s*(.+)$`),
		regexp.MustCompile(`^(.+?)\s*//\s*(.+)$`),
	}

	// platform patterns: shapes specific to how platforms label uploads
	platformPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(.+?)\s+["“](.+?)["”]\s*$`), // Artist "Title"
		regexp.MustCompile(`^(.+?)\s*[:：]\s*(.+)$`),      // Artist: Title
	}

	// generic patterns where the title comes first
	genericPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(.+?)\s+by\s+(.+)$`), // Title by Artist (swapped)
	}

	featPattern       = regexp.MustCompile(`(?i)\s+(feat\.?|ft\.?|featuring)\s+.*$`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Options controls title similarity comparisons.
type Options struct {
	Threshold           float64 `mapstructure:"threshold" default:"0.8" validate:"gt=0,lte=1"`
	CaseSensitive       bool    `mapstructure:"case_sensitive"`
	NormalizeWhitespace bool    `mapstructure:"normalize_whitespace" default:"true"`
}

// SimilarityResult is the outcome of a title comparison.
// Symmetric in its two inputs.
type SimilarityResult struct {
	IsSimilar  bool
	Score      float64 // token-set similarity in [0,1]
	Confidence float64 // min(Score/Threshold, 1)
}

// Normalizer memoizes artist/title extraction in a bounded cache.
// Safe for concurrent use.
type Normalizer struct {
	opts          Options
	cache         *lru.Cache[string, track.ArtistTitle]
	flushInterval time.Duration
}

// New creates a Normalizer with a bounded extraction cache.
// cacheSize and flushInterval fall back to the package defaults when zero.
func New(opts Options, cacheSize int, flushInterval time.Duration) (*Normalizer, error) {
	if opts.Threshold <= 0 || opts.Threshold > 1 {
		opts.Threshold = 0.8
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if flushInterval <= 0 {
		flushInterval = DefaultFlushInterval
	}

	cache, err := lru.New[string, track.ArtistTitle](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create extraction cache")
	}

	return &Normalizer{
		opts:          opts,
		cache:         cache,
		flushInterval: flushInterval,
	}, nil
}

// Start runs the periodic cache flush until ctx is canceled.
func (n *Normalizer) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(n.flushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n.cache.Purge()
				zlog.Debug().Msg("normalizer cache flushed")
			}
		}
	}()
}

// ExtractArtistTitle extracts an {artist, title} pair from a raw display
// string. Extraction never fails: on no match it returns
// {Unknown, trimmed input}. Results are memoized by lowercase input.
func (n *Normalizer) ExtractArtistTitle(input string) track.ArtistTitle {
	key := strings.ToLower(input)
	if cached, ok := n.cache.Get(key); ok {
		return cached
	}

	result := extract(input)
	n.cache.Add(key, result)
	return result
}

// CacheLen returns the number of memoized extractions.
func (n *Normalizer) CacheLen() int {
	return n.cache.Len()
}

// extract applies the ordered pattern groups to input.
func extract(input string) (result track.ArtistTitle) {
	// extraction must never escape an internal failure to the caller
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("artist/title extraction panicked: input=%q panic=%v", input, r)
			result = track.ArtistTitle{Artist: UnknownArtist, Title: strings.TrimSpace(input)}
		}
	}()

	cleaned := stripNoise(input)

	for _, p := range separatorPatterns {
		if at, ok := matchArtistTitle(p, cleaned, false); ok {
			return at
		}
	}
	for _, p := range platformPatterns {
		if at, ok := matchArtistTitle(p, cleaned, false); ok {
			return at
		}
	}
	for _, p := range genericPatterns {
		if at, ok := matchArtistTitle(p, cleaned, true); ok {
			return at
		}
	}

	return track.ArtistTitle{Artist: UnknownArtist, Title: strings.TrimSpace(input)}
}

// matchArtistTitle applies one pattern; swapped means the pattern captures
// title first and artist second.
func matchArtistTitle(p *regexp.Regexp, input string, swapped bool) (track.ArtistTitle, bool) {
	m := p.FindStringSubmatch(input)
	if len(m) != 3 {
		return track.ArtistTitle{}, false
	}

	artist, title := m[1], m[2]
	if swapped {
		artist, title = m[2], m[1]
	}

	artist = strings.TrimSpace(featPattern.ReplaceAllString(artist, ""))
	title = strings.TrimSpace(title)
	if artist == "" || title == "" {
		return track.ArtistTitle{}, false
	}
	return track.ArtistTitle{Artist: artist, Title: title}, true
}

func stripNoise(input string) string {
	out := input
	for _, p := range noisePatterns {
		out = p.ReplaceAllString(out, "")
	}
	return strings.TrimSpace(out)
}
