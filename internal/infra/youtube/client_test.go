package youtube

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovebox/groovebox/internal/domain/track"
)

func TestParseMetadataLine(t *testing.T) {
	requester := track.Requester{Name: "tester", Type: track.RequesterTypeUser}

	tests := []struct {
		name     string
		line     string
		ok       bool
		expected track.Track
	}{
		{
			name: "full line",
			line: "abc123\tSong A\tArtist X\t215\t420000\thttps://i.ytimg.com/vi/abc123/hq720.jpg",
			ok:   true,
			expected: track.Track{
				ID:           "abc123",
				Title:        "Song A",
				Author:       "Artist X",
				URL:          "https://www.youtube.com/watch?v=abc123",
				Duration:     215 * time.Second,
				ViewCount:    420000,
				ThumbnailURL: "https://i.ytimg.com/vi/abc123/hq720.jpg",
				Requester:    requester,
			},
		},
		{
			name: "minimal line without views and thumbnail",
			line: "abc123\tSong A\tArtist X\t215",
			ok:   true,
			expected: track.Track{
				ID:        "abc123",
				Title:     "Song A",
				Author:    "Artist X",
				URL:       "https://www.youtube.com/watch?v=abc123",
				Duration:  215 * time.Second,
				Requester: requester,
			},
		},
		{
			name: "NA placeholders",
			line: "abc123\tSong A\tNA\t90.5\tNA\tNA",
			ok:   true,
			expected: track.Track{
				ID:        "abc123",
				Title:     "Song A",
				URL:       "https://www.youtube.com/watch?v=abc123",
				Duration:  90500 * time.Millisecond,
				Requester: requester,
			},
		},
		{name: "missing id", line: "NA\tSong A\tArtist X\t215", ok: false},
		{name: "too few fields", line: "abc123\tSong A", ok: false},
		{name: "empty line", line: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseMetadataLine(tt.line, requester)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(0, 0)
	assert.Equal(t, defaultMaxResults, c.maxResults)
	assert.Equal(t, defaultMaxPlaylistSize, c.maxPlaylistSize)
}
