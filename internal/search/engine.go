// Package search resolves user queries into track candidates despite an
// unreliable upstream provider, with retries and engine fallback.
package search

import (
	"context"
	"strings"

	"github.com/groovebox/groovebox/internal/domain/track"
)

// EngineID identifies a search backend.
type EngineID string

const (
	EngineYouTube         EngineID = "youtube"
	EngineYouTubePlaylist EngineID = "youtube_playlist"
	EngineYTMusic         EngineID = "ytmusic"
	EngineSpotify         EngineID = "spotify"
)

// Engine is a single upstream search/extraction backend.
type Engine interface {
	// Name returns the engine's identifier.
	Name() EngineID
	// Search resolves a query or URL into zero or more tracks.
	Search(ctx context.Context, query string, requestedBy track.Requester) ([]track.Track, error)
}

// Detect picks the engine for an unconstrained query from its shape:
// explicit platform URLs first, generic text search last.
func Detect(query string, textEngine EngineID) EngineID {
	q := strings.TrimSpace(strings.ToLower(query))

	if !strings.HasPrefix(q, "http://") && !strings.HasPrefix(q, "https://") && !strings.HasPrefix(q, "spotify:") {
		return textEngine
	}

	switch {
	case strings.Contains(q, "open.spotify.com") || strings.HasPrefix(q, "spotify:"):
		return EngineSpotify
	case strings.Contains(q, "list="):
		return EngineYouTubePlaylist
	case strings.Contains(q, "music.youtube.com"):
		return EngineYTMusic
	default:
		// youtube.com/watch, youtu.be and any other URL yt-dlp can take
		return EngineYouTube
	}
}
