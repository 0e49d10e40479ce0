// Package discord is the slash-command transport: it registers commands,
// routes interactions to the deal pipeline, and renders results as embeds.
package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/guarzo/gamedealer/internal/deals"
	"github.com/guarzo/gamedealer/internal/priority"
)

// Searcher is the slice of the deal pipeline the bot invokes.
type Searcher interface {
	Search(ctx context.Context, q deals.Query) ([]deals.RankedDeal, error)
	SearchPriority(ctx context.Context, q deals.Query) ([]deals.RankedDeal, error)
	SearchHybrid(ctx context.Context, q deals.Query) ([]deals.RankedDeal, error)
}

// Bot owns the Discord session and command routing.
type Bot struct {
	session *discordgo.Session
	search  Searcher
	db      *priority.Database
	appID   string
	guildID string
	log     *slog.Logger
}

// New creates the bot but does not connect yet.
func New(token, appID, guildID string, search Searcher, db *priority.Database, log *slog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	return &Bot{
		session: session,
		search:  search,
		db:      db,
		appID:   appID,
		guildID: guildID,
		log:     log,
	}, nil
}

// Session exposes the underlying session for the digest poster.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// Start opens the gateway connection and registers slash commands. With a
// guild ID set, commands register to that guild only (instant propagation,
// used in development); otherwise globally.
func (b *Bot) Start() error {
	b.session.AddHandler(b.handleInteraction)
	b.session.Identify.Intents = discordgo.IntentsGuildMessages

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening gateway: %w", err)
	}

	for _, cmd := range commandDefinitions() {
		if _, err := b.session.ApplicationCommandCreate(b.appID, b.guildID, cmd); err != nil {
			return fmt.Errorf("registering /%s: %w", cmd.Name, err)
		}
		b.log.Info("registered command", "name", cmd.Name)
	}
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	return b.session.Close()
}

func commandDefinitions() []*discordgo.ApplicationCommand {
	intOption := func(name, desc string, required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        name,
			Description: desc,
			Required:    required,
		}
	}
	stringOption := func(name, desc string, required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        name,
			Description: desc,
			Required:    required,
		}
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "deals",
			Description: "Top gaming deals from Steam, Epic & GOG",
			Options: []*discordgo.ApplicationCommandOption{
				intOption("amount", "How many deals to show (1-25, default 10)", false),
				intOption("min_discount", "Minimum discount percentage (default 60)", false),
			},
		},
		{
			Name:        "storedeals",
			Description: "Deals from a specific store",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("store", "Store name, e.g. Steam or GOG", true),
				intOption("amount", "How many deals to show (1-25, default 10)", false),
				intOption("min_discount", "Minimum discount percentage (default 60)", false),
			},
		},
		{
			Name:        "prioritysearch",
			Description: "Deals matched exactly against your curated priority games",
			Options: []*discordgo.ApplicationCommandOption{
				intOption("amount", "How many deals to show (1-25, default 10)", false),
				intOption("min_priority", "Minimum priority level (1-10, default 5)", false),
				intOption("min_discount", "Minimum discount percentage (default 1)", false),
				stringOption("store", "Store name filter", false),
			},
		},
		{
			Name:        "qualitydeals",
			Description: "Deals ranked by the quality score (discount, popularity, reputation)",
			Options: []*discordgo.ApplicationCommandOption{
				intOption("amount", "How many deals to show (1-25, default 10)", false),
				intOption("min_discount", "Minimum discount percentage (default 50)", false),
				stringOption("store", "Store name filter", false),
			},
		},
		{
			Name:        "stores",
			Description: "List the store names accepted by the store filters",
		},
		{
			Name:        "dbstats",
			Description: "Priority games database statistics",
		},
		{
			Name:        "reloaddb",
			Description: "Reload the priority games database from disk",
		},
	}
}
