package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/groovebox/groovebox/internal/domain/track"
	"github.com/groovebox/groovebox/internal/infra/config"
	"github.com/groovebox/groovebox/internal/queue"
	"github.com/groovebox/groovebox/internal/validate"
)

func testBot() *Bot {
	return &Bot{cfg: &config.Config{
		Messages: config.MessagesConfig{
			Queued:       "Added **%s** to the queue.",
			QueuedMany:   "Added %d tracks to the queue (%d skipped).",
			QueueFull:    "The queue is full.",
			Duplicate:    "That track is already queued.",
			DefaultError: "Something went wrong.",
		},
	}}
}

func TestRenderAddResult(t *testing.T) {
	b := testBot()
	one := []track.Track{{Title: "Song A", Author: "Artist X"}}

	tests := []struct {
		name       string
		result     queue.OperationResult
		candidates []track.Track
		want       string
	}{
		{
			name:       "single track added",
			result:     queue.OperationResult{Success: true, TracksAdded: 1},
			candidates: one,
			want:       "Added **Artist X - Song A** to the queue.",
		},
		{
			name:       "batch added with skips",
			result:     queue.OperationResult{Success: true, TracksAdded: 3, TracksSkipped: 2},
			candidates: make([]track.Track, 5),
			want:       "Added 3 tracks to the queue (2 skipped).",
		},
		{
			name:   "queue full",
			result: queue.OperationResult{Err: queue.ErrQueueFull},
			want:   "The queue is full.",
		},
		{
			name:   "duplicate",
			result: queue.OperationResult{Err: validate.ReasonDuplicate},
			want:   "That track is already queued.",
		},
		{
			name:   "other rejection passes through",
			result: queue.OperationResult{Err: "Track too short (min 30 seconds)"},
			want:   "Track too short (min 30 seconds)",
		},
		{
			name:   "empty error falls back",
			result: queue.OperationResult{},
			want:   "Something went wrong.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.renderAddResult(tt.result, tt.candidates))
		})
	}
}

func TestIsBatchQuery(t *testing.T) {
	many := make([]track.Track, 3)

	assert.True(t, isBatchQuery("https://www.youtube.com/playlist?list=PL123", many))
	assert.False(t, isBatchQuery("some song name", many))
	assert.False(t, isBatchQuery("https://www.youtube.com/watch?v=abc", many))
	assert.False(t, isBatchQuery("https://www.youtube.com/playlist?list=PL123", many[:1]))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "3:05", formatDuration(185*time.Second))
	assert.Equal(t, "0:00", formatDuration(0))
	assert.Equal(t, "62:30", formatDuration(62*time.Minute+30*time.Second))
}
