package queue

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	zlog "github.com/rs/zerolog/log"

	"github.com/groovebox/groovebox/internal/domain/track"
	"github.com/groovebox/groovebox/internal/validate"
)

// error strings surfaced in OperationResult.Err
const (
	ErrQueueFull = "Queue is full"
)

// OperationResult reports the outcome of a queue write operation.
type OperationResult struct {
	Success         bool
	TracksProcessed int
	TracksAdded     int
	TracksSkipped   int
	Message         string
	Err             string
}

// AddOptions controls a single add operation.
type AddOptions struct {
	MaxTracks int  // cap on tracks taken from the batch, 0 means no cap
	PlayNext  bool // insert at the head instead of appending
}

// State is a read-only view of a queue for display layers.
type State struct {
	IsPlaying    bool
	IsPaused     bool
	CurrentTrack *track.Track
	QueueSize    int
	RepeatMode   RepeatMode
	Volume       int
	Position     time.Duration
	Duration     time.Duration
}

// Stats aggregates a queue's pending tracks.
type Stats struct {
	TotalTracks     int
	TotalDuration   time.Duration
	AverageDuration time.Duration
	Artists         []string
}

// Manager is the only component that mutates queues. Each operation holds
// the queue's mutex for its whole read-modify-write, so concurrent commands
// against the same guild serialize.
type Manager struct {
	validator *validate.Validator
	maxSize   int

	mu     sync.Mutex
	queues map[snowflake.ID]*Queue
}

// NewManager creates a queue manager. maxSize applies to every queue it
// creates; 0 means DefaultMaxSize.
func NewManager(validator *validate.Validator, maxSize int) *Manager {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Manager{
		validator: validator,
		maxSize:   maxSize,
		queues:    make(map[snowflake.ID]*Queue),
	}
}

// Get returns the guild's queue, creating it on first use.
func (m *Manager) Get(guildID snowflake.ID) *Queue {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queues[guildID]
	if !ok {
		q = New(guildID, m.maxSize)
		m.queues[guildID] = q
	}
	return q
}

// Release drops the guild's queue. Called when the bot disconnects.
func (m *Manager) Release(guildID snowflake.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.queues, guildID)
}

// AddTracks validates candidates against the queue and appends the admitted
// ones, bounded by remaining capacity. Skipped = rejected by validation plus
// truncated by capacity.
func (m *Manager) AddTracks(q *Queue, candidates []track.Track, opts AddOptions) OperationResult {
	return m.addTracks(q, candidates, opts, m.validator)
}

// AddTracksAllowingDuplicates is AddTracks with the duplicate check
// disabled, for explicit user overrides.
func (m *Manager) AddTracksAllowingDuplicates(q *Queue, candidates []track.Track, opts AddOptions) OperationResult {
	vopts := m.validator.Options()
	vopts.AllowDuplicates = true
	return m.addTracks(q, candidates, opts, m.validator.WithOptions(vopts))
}

func (m *Manager) addTracks(q *Queue, candidates []track.Track, opts AddOptions, v *validate.Validator) (result OperationResult) {
	defer m.recoverOp("AddTracks", &result)

	q.mu.Lock()
	defer q.mu.Unlock()

	result.TracksProcessed = len(candidates)

	batch := v.ValidateTracks(candidates, q.snapshotLocked())
	if len(batch.Valid) == 0 {
		result.TracksSkipped = len(candidates)
		result.Err = firstReason(batch.Results)
		return result
	}

	available := q.maxSize - len(q.pending)
	if available <= 0 {
		result.TracksSkipped = len(candidates)
		result.Err = ErrQueueFull
		return result
	}

	take := len(batch.Valid)
	if opts.MaxTracks > 0 && opts.MaxTracks < take {
		take = opts.MaxTracks
	}
	if available < take {
		take = available
	}

	admitted := make([]track.Track, take)
	copy(admitted, batch.Valid[:take])
	now := time.Now()
	for i := range admitted {
		admitted[i].AddedAt = now
	}

	if opts.PlayNext {
		q.pending = append(admitted, q.pending...)
	} else {
		q.pending = append(q.pending, admitted...)
	}

	result.Success = true
	result.TracksAdded = take
	result.TracksSkipped = len(candidates) - take

	zlog.Debug().Msgf("tracks added: guild=%s added=%d skipped=%d size=%d",
		q.guildID, result.TracksAdded, result.TracksSkipped, len(q.pending))
	return result
}

// AddTrack is a convenience wrapper for a single track.
func (m *Manager) AddTrack(q *Queue, t track.Track, opts AddOptions) OperationResult {
	return m.AddTracks(q, []track.Track{t}, opts)
}

// Clear removes all pending tracks. The currently playing track is not
// touched.
func (m *Manager) Clear(q *Queue) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = nil
	zlog.Debug().Msgf("queue cleared: guild=%s", q.guildID)
	return true
}

// Shuffle rearranges the pending tracks in place. No-op success for 0 or 1
// pending tracks.
func (m *Manager) Shuffle(q *Queue) (result OperationResult) {
	defer m.recoverOp("Shuffle", &result)

	q.mu.Lock()
	defer q.mu.Unlock()

	result.TracksProcessed = len(q.pending)
	if len(q.pending) > 1 {
		rand.Shuffle(len(q.pending), func(i, j int) {
			q.pending[i], q.pending[j] = q.pending[j], q.pending[i]
		})
	}
	result.Success = true
	return result
}

// Remove removes the pending track at position, returning it, or nil when
// the position is out of range.
func (m *Manager) Remove(q *Queue, position int) *track.Track {
	q.mu.Lock()
	defer q.mu.Unlock()

	if position < 0 || position >= len(q.pending) {
		return nil
	}
	removed := q.pending[position]
	q.pending = append(q.pending[:position], q.pending[position+1:]...)
	return &removed
}

// Move relocates a pending track from one position to another. Both indices
// are checked against the current size; invalid indices leave the queue
// untouched and return nil. A target beyond the post-removal tail appends.
func (m *Manager) Move(q *Queue, from, to int) *track.Track {
	q.mu.Lock()
	defer q.mu.Unlock()

	size := len(q.pending)
	if from < 0 || from >= size || to < 0 || to >= size {
		return nil
	}

	moved := q.pending[from]
	q.pending = append(q.pending[:from], q.pending[from+1:]...)

	if to >= len(q.pending) {
		q.pending = append(q.pending, moved)
	} else {
		q.pending = append(q.pending[:to], append([]track.Track{moved}, q.pending[to:]...)...)
	}
	return &moved
}

// Replenish is the hook point for auto-fill-on-empty behavior. The base
// implementation only logs.
func (m *Manager) Replenish(q *Queue) OperationResult {
	zlog.Debug().Msgf("replenish requested: guild=%s size=%d", q.guildID, m.Size(q))
	return OperationResult{Success: true, Message: "queue replenish is not enabled"}
}

// State returns a display snapshot. Never fails: an internal failure logs
// and yields a safe default.
func (m *Manager) State(q *Queue) (state State) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("queue state read failed: guild=%s panic=%v", q.guildID, r)
			state = State{RepeatMode: RepeatOff, Volume: 100}
		}
	}()

	q.mu.Lock()
	defer q.mu.Unlock()

	state = State{
		IsPlaying:  q.status.IsPlaying,
		IsPaused:   q.status.IsPaused,
		QueueSize:  len(q.pending),
		RepeatMode: q.status.RepeatMode,
		Volume:     q.status.Volume,
		Position:   q.status.Position,
	}
	if q.current != nil {
		current := *q.current
		state.CurrentTrack = &current
		state.Duration = current.Duration
	}
	return state
}

// Stats folds over the pending tracks.
func (m *Manager) Stats(q *Queue) Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	stats := Stats{TotalTracks: len(q.pending)}
	seen := make(map[string]bool)
	for _, t := range q.pending {
		stats.TotalDuration += t.Duration
		if t.Author != "" && !seen[t.Author] {
			seen[t.Author] = true
			stats.Artists = append(stats.Artists, t.Author)
		}
	}
	if stats.TotalTracks > 0 {
		stats.AverageDuration = stats.TotalDuration / time.Duration(stats.TotalTracks)
	}
	return stats
}

// IsEmpty reports whether no tracks are pending.
func (m *Manager) IsEmpty(q *Queue) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending) == 0
}

// IsFull reports whether the queue is at capacity.
func (m *Manager) IsFull(q *Queue) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending) >= q.maxSize
}

// Size returns the number of pending tracks.
func (m *Manager) Size(q *Queue) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// NextTrack returns the head of the pending tracks without removing it, or
// nil when empty.
func (m *Manager) NextTrack(q *Queue) *track.Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	head := q.pending[0]
	return &head
}

// TrackAt returns the pending track at position, or nil out of range.
func (m *Manager) TrackAt(q *Queue, position int) *track.Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	if position < 0 || position >= len(q.pending) {
		return nil
	}
	t := q.pending[position]
	return &t
}

// Contains reports whether a track with the given ID or URL is pending.
func (m *Manager) Contains(q *Queue, id string) bool {
	return m.Position(q, id) >= 0
}

// Position returns the index of the pending track with the given ID or URL,
// or -1 when absent.
func (m *Manager) Position(q *Queue, id string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, t := range q.pending {
		if t.ID == id || t.URL == id {
			return i
		}
	}
	return -1
}

// recoverOp converts an internal panic into a failure result. Callers must
// treat a panic here as a bug, not expected control flow.
func (m *Manager) recoverOp(op string, result *OperationResult) {
	if r := recover(); r != nil {
		zlog.Error().Msgf("queue operation panicked: op=%s panic=%v", op, r)
		*result = OperationResult{Err: "internal error"}
	}
}

// firstReason returns the first rejection reason from a batch, for the
// all-rejected failure message.
func firstReason(results []validate.Result) string {
	for _, r := range results {
		if !r.IsValid && r.Reason != "" {
			return r.Reason
		}
	}
	return "no valid tracks"
}
