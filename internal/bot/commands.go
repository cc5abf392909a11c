package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	zlog "github.com/rs/zerolog/log"

	"github.com/groovebox/groovebox/internal/domain/track"
	"github.com/groovebox/groovebox/internal/queue"
	"github.com/groovebox/groovebox/internal/search"
	"github.com/groovebox/groovebox/internal/validate"
)

// searchTimeout bounds one /play resolution including retries.
const searchTimeout = 30 * time.Second

func (b *Bot) handlePlay(e *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	query := data.String("query")
	playNext, _ := data.OptBool("next")
	force, _ := data.OptBool("force")

	if err := e.DeferCreateMessage(false); err != nil {
		zlog.Error().Msgf("failed to defer interaction: error=%v", err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()

		requester := track.Requester{
			ID:   e.User().ID,
			Name: e.User().EffectiveName(),
			Type: track.RequesterTypeUser,
		}

		outcome := b.searcher.SearchWithRetry(ctx, search.Request{
			Query:           query,
			RequestedBy:     requester,
			EnableFallbacks: b.fallback,
		})
		if !outcome.Success() {
			b.followUp(e, fmt.Sprintf(b.cfg.Messages.SearchFailed, outcome.Err))
			return
		}
		if len(outcome.Tracks) == 0 {
			b.followUp(e, b.cfg.Messages.NothingFound)
			return
		}

		q := b.queues.Get(*e.GuildID())
		candidates := outcome.Tracks
		opts := queue.AddOptions{PlayNext: playNext}
		if !isBatchQuery(query, candidates) {
			// free-text search returns alternatives for one song; queue the
			// best match only
			candidates = candidates[:1]
		}
		result := b.addTracks(q, candidates, opts, force)
		b.followUp(e, b.renderAddResult(result, candidates))
	}()
}

// addTracks runs the add through the manager, swapping in a
// duplicates-allowed validator when forced.
func (b *Bot) addTracks(q *queue.Queue, candidates []track.Track, opts queue.AddOptions, force bool) queue.OperationResult {
	if force {
		return b.queues.AddTracksAllowingDuplicates(q, candidates, opts)
	}
	return b.queues.AddTracks(q, candidates, opts)
}

func (b *Bot) renderAddResult(result queue.OperationResult, candidates []track.Track) string {
	if !result.Success {
		switch result.Err {
		case queue.ErrQueueFull:
			return b.cfg.Messages.QueueFull
		case validate.ReasonDuplicate:
			return b.cfg.Messages.Duplicate
		case "":
			return b.cfg.Messages.DefaultError
		default:
			return result.Err
		}
	}
	if result.TracksAdded == 1 && len(candidates) >= 1 {
		return fmt.Sprintf(b.cfg.Messages.Queued, candidates[0].DisplayName())
	}
	return fmt.Sprintf(b.cfg.Messages.QueuedMany, result.TracksAdded, result.TracksSkipped)
}

func (b *Bot) handleQueue(e *events.ApplicationCommandInteractionCreate) {
	q := b.queues.Get(*e.GuildID())
	state := b.queues.State(q)

	if state.QueueSize == 0 && state.CurrentTrack == nil {
		b.reply(e, b.cfg.Messages.QueueEmpty)
		return
	}

	var sb strings.Builder
	if state.CurrentTrack != nil {
		fmt.Fprintf(&sb, "Now playing: **%s**\n", state.CurrentTrack.DisplayName())
	}
	for i := 0; i < state.QueueSize && i < 10; i++ {
		if t := b.queues.TrackAt(q, i); t != nil {
			fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, t.DisplayName(), formatDuration(t.Duration))
		}
	}
	if state.QueueSize > 10 {
		fmt.Fprintf(&sb, "... and %d more", state.QueueSize-10)
	}
	b.reply(e, sb.String())
}

func (b *Bot) handleShuffle(e *events.ApplicationCommandInteractionCreate) {
	q := b.queues.Get(*e.GuildID())
	result := b.queues.Shuffle(q)
	if !result.Success {
		b.reply(e, b.cfg.Messages.DefaultError)
		return
	}
	b.reply(e, fmt.Sprintf(b.cfg.Messages.Shuffled, result.TracksProcessed))
}

func (b *Bot) handleRemove(e *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	q := b.queues.Get(*e.GuildID())

	position := data.Int("position") - 1 // user positions are 1-based
	removed := b.queues.Remove(q, position)
	if removed == nil {
		b.reply(e, b.cfg.Messages.InvalidIndex)
		return
	}
	b.reply(e, fmt.Sprintf(b.cfg.Messages.Removed, removed.DisplayName()))
}

func (b *Bot) handleMove(e *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	q := b.queues.Get(*e.GuildID())

	from := data.Int("from") - 1
	to := data.Int("to") - 1
	moved := b.queues.Move(q, from, to)
	if moved == nil {
		b.reply(e, b.cfg.Messages.InvalidIndex)
		return
	}
	b.reply(e, fmt.Sprintf(b.cfg.Messages.Moved, moved.DisplayName(), to+1))
}

func (b *Bot) handleClear(e *events.ApplicationCommandInteractionCreate) {
	q := b.queues.Get(*e.GuildID())
	b.queues.Clear(q)
	b.reply(e, b.cfg.Messages.Cleared)
}

func (b *Bot) handleStats(e *events.ApplicationCommandInteractionCreate) {
	q := b.queues.Get(*e.GuildID())
	stats := b.queues.Stats(q)

	if stats.TotalTracks == 0 {
		b.reply(e, b.cfg.Messages.QueueEmpty)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Tracks: %d\n", stats.TotalTracks)
	fmt.Fprintf(&sb, "Total duration: %s\n", formatDuration(stats.TotalDuration))
	fmt.Fprintf(&sb, "Average duration: %s\n", formatDuration(stats.AverageDuration))
	fmt.Fprintf(&sb, "Artists: %s", strings.Join(stats.Artists, ", "))
	b.reply(e, sb.String())
}

func (b *Bot) reply(e *events.ApplicationCommandInteractionCreate, content string) {
	if err := e.CreateMessage(discord.NewMessageCreateBuilder().SetContent(content).Build()); err != nil {
		zlog.Error().Msgf("failed to reply: error=%v", err)
	}
}

func (b *Bot) followUp(e *events.ApplicationCommandInteractionCreate, content string) {
	_, err := e.Client().Rest().UpdateInteractionResponse(
		e.ApplicationID(),
		e.Token(),
		discord.NewMessageUpdateBuilder().SetContent(content).Build(),
	)
	if err != nil {
		zlog.Error().Msgf("failed to update interaction response: error=%v", err)
	}
}

// isBatchQuery reports whether the query legitimately resolves to multiple
// tracks (playlists), as opposed to search alternatives for one song.
func isBatchQuery(query string, tracks []track.Track) bool {
	if len(tracks) <= 1 {
		return false
	}
	return search.Detect(query, search.EngineYTMusic) == search.EngineYouTubePlaylist
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
