// Package bot provides the Discord slash-command surface. It consumes the
// search and queue contracts only; rendering stops at message strings.
package bot

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/snowflake/v2"
	zlog "github.com/rs/zerolog/log"

	"github.com/groovebox/groovebox/internal/infra/config"
	"github.com/groovebox/groovebox/internal/queue"
	"github.com/groovebox/groovebox/internal/search"
)

// Bot wires Discord interactions onto the search and queue managers.
type Bot struct {
	cfg      *config.Config
	client   bot.Client
	searcher *search.Manager
	queues   *queue.Manager
	fallback bool
}

// New creates the bot and its gateway client.
func New(cfg *config.Config, searcher *search.Manager, queues *queue.Manager, enableFallbacks bool) (*Bot, error) {
	b := &Bot{
		cfg:      cfg,
		searcher: searcher,
		queues:   queues,
		fallback: enableFallbacks,
	}

	client, err := disgo.New(cfg.Bot.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildVoiceStates,
			),
		),
		bot.WithEventListenerFunc(b.onCommand),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create discord client")
	}
	b.client = client

	return b, nil
}

// Start registers commands and opens the gateway.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.registerCommands(ctx); err != nil {
		return err
	}
	if err := b.client.OpenGateway(ctx); err != nil {
		return errors.Wrap(err, "failed to open gateway")
	}
	zlog.Info().Msg("gateway connected")
	return nil
}

// Close shuts the gateway down.
func (b *Bot) Close(ctx context.Context) {
	b.client.Close(ctx)
}

func (b *Bot) registerCommands(ctx context.Context) error {
	cmds := commandDefinitions()

	appID := b.client.ApplicationID()
	var err error
	if b.cfg.Bot.GuildID != "" {
		var guildID snowflake.ID
		guildID, err = snowflake.Parse(b.cfg.Bot.GuildID)
		if err != nil {
			return errors.Wrap(err, "invalid guild_id")
		}
		_, err = b.client.Rest().SetGuildCommands(appID, guildID, cmds)
	} else {
		_, err = b.client.Rest().SetGlobalCommands(appID, cmds)
	}
	if err != nil {
		return errors.Wrap(err, "failed to register commands")
	}

	zlog.Info().Msgf("commands registered: count=%d guild_scoped=%t", len(cmds), b.cfg.Bot.GuildID != "")
	return nil
}

func commandDefinitions() []discord.ApplicationCommandCreate {
	return []discord.ApplicationCommandCreate{
		discord.SlashCommandCreate{
			Name:        "play",
			Description: "Search for a track and add it to the queue",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "query",
					Description: "Search terms or a track/playlist URL",
					Required:    true,
				},
				discord.ApplicationCommandOptionBool{
					Name:        "next",
					Description: "Insert at the front of the queue",
				},
				discord.ApplicationCommandOptionBool{
					Name:        "force",
					Description: "Skip the duplicate check",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "queue",
			Description: "Show the pending tracks",
		},
		discord.SlashCommandCreate{
			Name:        "shuffle",
			Description: "Shuffle the pending tracks",
		},
		discord.SlashCommandCreate{
			Name:        "remove",
			Description: "Remove a track from the queue",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "position",
					Description: "Queue position, starting at 1",
					Required:    true,
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "move",
			Description: "Move a track to another position",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "from",
					Description: "Current position, starting at 1",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "to",
					Description: "Target position, starting at 1",
					Required:    true,
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        "clear",
			Description: "Remove every pending track",
		},
		discord.SlashCommandCreate{
			Name:        "stats",
			Description: "Show queue statistics",
		},
	}
}

func (b *Bot) onCommand(e *events.ApplicationCommandInteractionCreate) {
	if e.GuildID() == nil {
		_ = e.CreateMessage(discord.NewMessageCreateBuilder().
			SetContent("This command can only be used in a server.").
			SetEphemeral(true).
			Build())
		return
	}

	data := e.SlashCommandInteractionData()
	switch data.CommandName() {
	case "play":
		b.handlePlay(e, data)
	case "queue":
		b.handleQueue(e)
	case "shuffle":
		b.handleShuffle(e)
	case "remove":
		b.handleRemove(e, data)
	case "move":
		b.handleMove(e, data)
	case "clear":
		b.handleClear(e)
	case "stats":
		b.handleStats(e)
	default:
		zlog.Warn().Msgf("unknown command: name=%s", data.CommandName())
	}
}
