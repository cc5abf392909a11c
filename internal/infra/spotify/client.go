// Package spotify provides the Spotify metadata search engine.
package spotify

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/groovebox/groovebox/internal/domain/track"
	"github.com/groovebox/groovebox/internal/search"
)

// Config represents Spotify API configuration.
type Config struct {
	ClientID     string
	ClientSecret string
}

// Engine resolves Spotify track URLs/URIs and free-text queries into track
// metadata. Spotify only supplies metadata here; audio always comes from
// elsewhere.
type Engine struct {
	client  *spotify.Client
	limiter *rate.Limiter
	maxHits int
}

// New creates the engine registered as "spotify" using the client
// credentials flow (no user context is needed for metadata lookups).
func New(ctx context.Context, cfg Config, maxHits int) (*Engine, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify credentials are required")
	}
	if maxHits <= 0 {
		maxHits = 5
	}

	auth := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := auth.Token(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to obtain spotify token")
	}

	httpClient := spotifyauth.New().Client(ctx, token)

	return &Engine{
		client:  spotify.New(httpClient),
		limiter: rate.NewLimiter(rate.Limit(8), 16),
		maxHits: maxHits,
	}, nil
}

func (e *Engine) Name() search.EngineID {
	return search.EngineSpotify
}

func (e *Engine) Search(ctx context.Context, query string, requestedBy track.Requester) ([]track.Track, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter wait failed")
	}

	if id := extractTrackID(query); id != "" {
		t, err := e.getTrack(ctx, id, requestedBy)
		if err != nil {
			return nil, err
		}
		return []track.Track{*t}, nil
	}

	return e.searchTracks(ctx, query, requestedBy)
}

func (e *Engine) getTrack(ctx context.Context, id string, requestedBy track.Requester) (*track.Track, error) {
	full, err := e.client.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get track")
	}
	t := convertTrack(full, requestedBy)
	return &t, nil
}

func (e *Engine) searchTracks(ctx context.Context, query string, requestedBy track.Requester) ([]track.Track, error) {
	result, err := e.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(e.maxHits))
	if err != nil {
		return nil, errors.Wrap(err, "spotify search failed")
	}

	if result.Tracks == nil {
		return nil, nil
	}
	tracks := make([]track.Track, 0, len(result.Tracks.Tracks))
	for i := range result.Tracks.Tracks {
		tracks = append(tracks, convertTrack(&result.Tracks.Tracks[i], requestedBy))
	}
	return tracks, nil
}

func convertTrack(t *spotify.FullTrack, requestedBy track.Requester) track.Track {
	author := ""
	if len(t.Artists) > 0 {
		author = t.Artists[0].Name
	}

	thumbnail := ""
	if len(t.Album.Images) > 0 {
		thumbnail = t.Album.Images[0].URL
	}

	return track.Track{
		ID:           string(t.ID),
		Title:        t.Name,
		Author:       author,
		URL:          trackURL(string(t.ID)),
		Duration:     time.Duration(t.Duration) * time.Millisecond,
		ThumbnailURL: thumbnail,
		ViewCount:    int64(t.Popularity), // best available popularity signal
		Requester:    requestedBy,
	}
}

func trackURL(id string) string {
	return "https://open.spotify.com/track/" + id
}

// extractTrackID extracts the track ID from a Spotify track URL or URI,
// returning empty for free-text queries.
func extractTrackID(input string) string {
	input = strings.TrimSpace(input)

	if strings.HasPrefix(input, "spotify:track:") {
		return strings.TrimPrefix(input, "spotify:track:")
	}

	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/track/") {
		parts := strings.Split(input, "/track/")
		if len(parts) >= 2 {
			id := strings.Split(parts[len(parts)-1], "?")[0]
			return strings.TrimRight(id, "/")
		}
	}

	return ""
}
