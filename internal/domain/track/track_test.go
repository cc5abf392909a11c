package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasRequiredData(t *testing.T) {
	tests := []struct {
		name     string
		track    Track
		expected bool
	}{
		{
			name:     "complete track",
			track:    Track{Title: "Song A", URL: "https://example.com/u1", Duration: 3 * time.Minute},
			expected: true,
		},
		{
			name:     "missing title",
			track:    Track{URL: "https://example.com/u1", Duration: 3 * time.Minute},
			expected: false,
		},
		{
			name:     "missing url",
			track:    Track{Title: "Song A", Duration: 3 * time.Minute},
			expected: false,
		},
		{
			name:     "zero duration",
			track:    Track{Title: "Song A", URL: "https://example.com/u1"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.track.HasRequiredData())
		})
	}
}

func TestSameIdentity(t *testing.T) {
	a := Track{ID: "abc", URL: "https://example.com/a"}
	b := Track{ID: "abc", URL: "https://example.com/b"}
	c := Track{ID: "xyz", URL: "https://example.com/a"}
	d := Track{ID: "xyz", URL: "https://example.com/d"}

	assert.True(t, a.SameIdentity(&b), "matching IDs")
	assert.True(t, a.SameIdentity(&c), "matching URLs")
	assert.False(t, b.SameIdentity(&d), "no common identity")
}

func TestDisplayName(t *testing.T) {
	withAuthor := Track{Title: "Song A", Author: "Artist X"}
	assert.Equal(t, "Artist X - Song A", withAuthor.DisplayName())

	noAuthor := Track{Title: "Song A"}
	assert.Equal(t, "Song A", noAuthor.DisplayName())
}
