// Package queue provides the per-guild playback queue and its state manager.
package queue

import (
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/groovebox/groovebox/internal/domain/track"
)

// DefaultMaxSize is the default queue capacity.
const DefaultMaxSize = 100

// RepeatMode represents the repeat setting of a queue.
type RepeatMode string

const (
	RepeatOff   RepeatMode = "OFF"
	RepeatTrack RepeatMode = "TRACK"
	RepeatQueue RepeatMode = "QUEUE"
)

// PlaybackStatus is the playback engine's view of a queue. The queue manager
// only reads it; the player layer owns every field.
type PlaybackStatus struct {
	IsPlaying  bool
	IsPaused   bool
	RepeatMode RepeatMode
	Volume     int
	Position   time.Duration
}

// Queue is the ordered list of pending tracks for one guild's playback
// session. All access goes through the Manager, which serializes mutation
// on the queue's mutex.
type Queue struct {
	mu sync.Mutex

	guildID snowflake.ID
	maxSize int

	pending []track.Track
	current *track.Track
	status  PlaybackStatus
}

// New creates an empty queue for a guild. maxSize falls back to
// DefaultMaxSize when zero or negative.
func New(guildID snowflake.ID, maxSize int) *Queue {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Queue{
		guildID: guildID,
		maxSize: maxSize,
		status:  PlaybackStatus{RepeatMode: RepeatOff, Volume: 100},
	}
}

// GuildID returns the owning guild.
func (q *Queue) GuildID() snowflake.ID {
	return q.guildID
}

// MaxSize returns the queue capacity.
func (q *Queue) MaxSize() int {
	return q.maxSize
}

// SetStatus replaces the playback status snapshot. Called by the player
// layer only.
func (q *Queue) SetStatus(s PlaybackStatus) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.status = s
}

// SetCurrent sets the currently playing track (nil when playback stops).
// Called by the player layer only.
func (q *Queue) SetCurrent(t *track.Track) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.current = t
}

// snapshotLocked returns a copy of pending plus the current track for
// read-only use. Caller must hold q.mu.
func (q *Queue) snapshotLocked() []track.Track {
	snapshot := make([]track.Track, 0, len(q.pending)+1)
	if q.current != nil {
		snapshot = append(snapshot, *q.current)
	}
	snapshot = append(snapshot, q.pending...)
	return snapshot
}
