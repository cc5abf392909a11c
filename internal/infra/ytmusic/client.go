// Package ytmusic provides the YouTube Music search engine.
package ytmusic

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	ytm "github.com/raitonoberu/ytmusic"
	"golang.org/x/time/rate"

	"github.com/groovebox/groovebox/internal/domain/track"
	"github.com/groovebox/groovebox/internal/search"
)

// Engine searches YouTube Music. Results carry proper artist metadata,
// which makes it the preferred engine for free-text queries.
type Engine struct {
	limiter *rate.Limiter
	maxHits int
}

// New creates the engine registered as "ytmusic".
func New(maxHits int) *Engine {
	if maxHits <= 0 {
		maxHits = 5
	}
	return &Engine{
		limiter: rate.NewLimiter(rate.Limit(4), 8),
		maxHits: maxHits,
	}
}

func (e *Engine) Name() search.EngineID {
	return search.EngineYTMusic
}

func (e *Engine) Search(ctx context.Context, query string, requestedBy track.Requester) ([]track.Track, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter wait failed")
	}

	// music.youtube.com links carry a plain video ID; search for it directly
	if id := extractVideoID(query); id != "" {
		query = id
	}

	s := ytm.TrackSearch(query)
	result, err := s.Next()
	if err != nil {
		return nil, errors.Wrap(err, "youtube music search failed")
	}

	tracks := make([]track.Track, 0, e.maxHits)
	for _, item := range result.Tracks {
		if item.VideoID == "" {
			continue
		}
		tracks = append(tracks, convertTrack(item, requestedBy))
		if len(tracks) >= e.maxHits {
			break
		}
	}
	return tracks, nil
}

func convertTrack(item *ytm.TrackItem, requestedBy track.Requester) track.Track {
	author := ""
	if len(item.Artists) > 0 {
		author = item.Artists[0].Name
	}

	thumbnail := ""
	if len(item.Thumbnails) > 0 {
		// thumbnails are ordered smallest first
		thumbnail = item.Thumbnails[len(item.Thumbnails)-1].URL
	}

	return track.Track{
		ID:           item.VideoID,
		Title:        item.Title,
		Author:       author,
		URL:          "https://music.youtube.com/watch?v=" + item.VideoID,
		Duration:     secondsToDuration(item.Duration),
		ThumbnailURL: thumbnail,
		Requester:    requestedBy,
	}
}

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// extractVideoID pulls the video ID out of a music.youtube.com watch URL,
// returning empty for anything else.
func extractVideoID(query string) string {
	if !strings.Contains(query, "music.youtube.com") {
		return ""
	}
	idx := strings.Index(query, "v=")
	if idx < 0 {
		return ""
	}
	id := query[idx+2:]
	if amp := strings.IndexAny(id, "&?"); amp >= 0 {
		id = id[:amp]
	}
	return id
}
