// Package track provides the Track domain entity.
package track

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Track represents one playable audio item.
// Immutable once constructed; owned by whichever queue currently holds it.
type Track struct {
	ID           string        // Stable identifier (platform video/track ID or generated UUID)
	Title        string        // Display title
	Author       string        // Channel / artist name
	URL          string        // Canonical URL, unique-ish identifier
	Duration     time.Duration // Track duration
	ThumbnailURL string        // Thumbnail URL (optional)
	ViewCount    int64         // View count, 0 when the source does not report one
	Requester    Requester     // Who asked for this track
	AddedAt      time.Time     // Time when added to a queue
}

// RequesterType represents the type of requester.
type RequesterType string

const (
	RequesterTypeUser     RequesterType = "USER"
	RequesterTypeAutoplay RequesterType = "AUTOPLAY"
	RequesterTypeSystem   RequesterType = "SYSTEM"
)

// Requester represents the person (or subsystem) that requested a track.
type Requester struct {
	ID   snowflake.ID  // Discord user ID
	Name string        // Display name
	Type RequesterType // Type of requester
}

// ArtistTitle is an {artist, title} pair derived from a raw display string.
type ArtistTitle struct {
	Artist string
	Title  string
}

// HasRequiredData reports whether the track carries the fields every
// downstream consumer relies on.
func (t *Track) HasRequiredData() bool {
	return t.Title != "" && t.URL != "" && t.Duration > 0
}

// SameIdentity reports whether two tracks refer to the same upstream item,
// matching by ID first and URL second.
func (t *Track) SameIdentity(other *Track) bool {
	if t.ID != "" && t.ID == other.ID {
		return true
	}
	return t.URL != "" && t.URL == other.URL
}

// DisplayName returns "Author - Title" when an author is known, the bare
// title otherwise.
func (t *Track) DisplayName() string {
	if t.Author == "" {
		return t.Title
	}
	return t.Author + " - " + t.Title
}
