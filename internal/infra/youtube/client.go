// Package youtube provides the YouTube search engines: text search through
// the search scraper with yt-dlp metadata resolution, and direct video and
// playlist extraction through yt-dlp.
package youtube

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lrstanley/go-ytdlp"
	"github.com/ppalone/ytsearch"
	"golang.org/x/time/rate"

	"github.com/groovebox/groovebox/internal/domain/track"
	"github.com/groovebox/groovebox/internal/search"
)

const (
	defaultMaxResults      = 5
	defaultMaxPlaylistSize = 100
)

// Client wraps the upstream calls shared by the video and playlist engines.
type Client struct {
	searcher        *ytsearch.Client
	limiter         *rate.Limiter
	maxResults      int
	maxPlaylistSize int
}

// NewClient creates a YouTube client. The limiter protects the scraper
// endpoints, which start returning 429s quickly under bursts.
func NewClient(maxResults, maxPlaylistSize int) *Client {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if maxPlaylistSize <= 0 {
		maxPlaylistSize = defaultMaxPlaylistSize
	}
	return &Client{
		searcher:        ytsearch.NewClient(nil),
		limiter:         rate.NewLimiter(rate.Limit(4), 8),
		maxResults:      maxResults,
		maxPlaylistSize: maxPlaylistSize,
	}
}

// VideoEngine resolves single videos and free-text queries.
type VideoEngine struct {
	client *Client
}

// NewVideoEngine creates the engine registered as "youtube".
func NewVideoEngine(client *Client) *VideoEngine {
	return &VideoEngine{client: client}
}

func (e *VideoEngine) Name() search.EngineID {
	return search.EngineYouTube
}

func (e *VideoEngine) Search(ctx context.Context, query string, requestedBy track.Requester) ([]track.Track, error) {
	if err := e.client.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter wait failed")
	}

	if strings.HasPrefix(query, "http://") || strings.HasPrefix(query, "https://") {
		t, err := e.client.resolveURL(ctx, query, requestedBy)
		if err != nil {
			return nil, err
		}
		return []track.Track{*t}, nil
	}

	return e.client.textSearch(ctx, query, requestedBy)
}

// PlaylistEngine extracts whole playlists.
type PlaylistEngine struct {
	client *Client
}

// NewPlaylistEngine creates the engine registered as "youtube_playlist".
func NewPlaylistEngine(client *Client) *PlaylistEngine {
	return &PlaylistEngine{client: client}
}

func (e *PlaylistEngine) Name() search.EngineID {
	return search.EngineYouTubePlaylist
}

func (e *PlaylistEngine) Search(ctx context.Context, query string, requestedBy track.Requester) ([]track.Track, error) {
	if err := e.client.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter wait failed")
	}
	return e.client.extractPlaylist(ctx, query, requestedBy)
}

// textSearch lists candidates via the search scraper and resolves their
// durations with a single yt-dlp invocation over the result URLs.
func (c *Client) textSearch(ctx context.Context, query string, requestedBy track.Requester) ([]track.Track, error) {
	res, err := c.searcher.Search(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "youtube search failed")
	}

	urls := make([]string, 0, c.maxResults)
	titles := make(map[string]string, c.maxResults)
	for _, v := range res.Results {
		if v.VideoID == "" {
			continue
		}
		u := "https://www.youtube.com/watch?v=" + v.VideoID
		urls = append(urls, u)
		titles[v.VideoID] = v.Title
		if len(urls) >= c.maxResults {
			break
		}
	}
	if len(urls) == 0 {
		return nil, nil
	}

	resolved, err := c.resolveBatch(ctx, urls, requestedBy)
	if err != nil {
		return nil, err
	}
	// prefer the scraper's title when yt-dlp returned a bare one
	for i := range resolved {
		if resolved[i].Title == "" {
			resolved[i].Title = titles[resolved[i].ID]
		}
	}
	return resolved, nil
}

// resolveURL fetches metadata for one video URL.
func (c *Client) resolveURL(ctx context.Context, url string, requestedBy track.Requester) (*track.Track, error) {
	tracks, err := c.resolveBatch(ctx, []string{url}, requestedBy)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, errors.New("failed to parse video metadata")
	}
	return &tracks[0], nil
}

// resolveBatch runs one yt-dlp process over the given URLs and parses its
// tab-separated metadata lines.
func (c *Client) resolveBatch(ctx context.Context, urls []string, requestedBy track.Requester) ([]track.Track, error) {
	args := append([]string{"--skip-download"}, urls...)
	res, err := ytdlp.New().
		Print("%(id)s\t%(title)s\t%(uploader)s\t%(duration)s\t%(view_count)s\t%(thumbnail)s").
		NoWarnings().
		IgnoreConfig().
		Run(ctx, args...)
	if err != nil {
		return nil, errors.Wrap(err, "yt-dlp metadata extraction failed")
	}

	lines := strings.Split(strings.TrimSpace(res.Stdout), "\n")
	tracks := make([]track.Track, 0, len(lines))
	for _, line := range lines {
		t, ok := parseMetadataLine(line, requestedBy)
		if !ok {
			continue
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// extractPlaylist flat-extracts up to maxPlaylistSize playlist entries.
func (c *Client) extractPlaylist(ctx context.Context, url string, requestedBy track.Requester) ([]track.Track, error) {
	res, err := ytdlp.New().
		FlatPlaylist().
		Print("%(id)s\t%(title)s\t%(uploader)s\t%(duration)s\t%(view_count)s\t%(thumbnail)s").
		PlaylistItems(fmt.Sprintf("1-%d", c.maxPlaylistSize)).
		NoWarnings().
		IgnoreConfig().
		Run(ctx, url)
	if err != nil {
		return nil, errors.Wrap(err, "yt-dlp playlist extraction failed")
	}

	lines := strings.Split(strings.TrimSpace(res.Stdout), "\n")
	tracks := make([]track.Track, 0, len(lines))
	for _, line := range lines {
		t, ok := parseMetadataLine(line, requestedBy)
		if !ok {
			continue
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// parseMetadataLine parses one yt-dlp print line:
// id \t title \t uploader \t duration \t view_count \t thumbnail
func parseMetadataLine(line string, requestedBy track.Requester) (track.Track, bool) {
	parts := strings.Split(line, "\t")
	if len(parts) < 4 {
		return track.Track{}, false
	}

	id, title, uploader := parts[0], parts[1], parts[2]
	if id == "" || id == "NA" {
		return track.Track{}, false
	}

	seconds, _ := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)

	t := track.Track{
		ID:        id,
		Title:     title,
		Author:    sanitizeNA(uploader),
		URL:       "https://www.youtube.com/watch?v=" + id,
		Duration:  time.Duration(seconds * float64(time.Second)),
		Requester: requestedBy,
	}
	if len(parts) > 4 {
		if views, err := strconv.ParseInt(strings.TrimSpace(parts[4]), 10, 64); err == nil {
			t.ViewCount = views
		}
	}
	if len(parts) > 5 {
		t.ThumbnailURL = sanitizeNA(parts[5])
	}
	return t, true
}

// sanitizeNA maps yt-dlp's "NA" placeholder to empty.
func sanitizeNA(s string) string {
	if s == "NA" {
		return ""
	}
	return s
}
