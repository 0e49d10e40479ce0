package discord

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/guarzo/gamedealer/internal/deals"
	"github.com/guarzo/gamedealer/internal/itad"
	"github.com/guarzo/gamedealer/internal/stores"
)

// handlerTimeout bounds a single command's pipeline run. Discord gives us 15
// minutes after a deferred ack, but nobody wants to wait that long.
const handlerTimeout = 30 * time.Second

const (
	msgServiceDown = "⚠️ The deals service is temporarily unavailable. Please try again in a few minutes."
	msgNoResults   = "😕 No deals matched your filters. Try a lower minimum discount or priority."
	msgBadInput    = "❌ That request was rejected. Check the store name and option values."
)

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	b.log.Info("command received", "name", name, "user", interactionUser(i))

	switch name {
	case "deals":
		b.handleDeals(s, i)
	case "storedeals":
		b.handleStoreDeals(s, i)
	case "prioritysearch":
		b.handlePrioritySearch(s, i)
	case "qualitydeals":
		b.handleQualityDeals(s, i)
	case "stores":
		b.handleStores(s, i)
	case "dbstats":
		b.handleDBStats(s, i)
	case "reloaddb":
		b.handleReloadDB(s, i)
	}
}

func (b *Bot) handleDeals(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	q := deals.Query{
		Limit:         clampAmount(intOption(opts, "amount", 10)),
		MinDiscount:   intOption(opts, "min_discount", 60),
		QualityFilter: true,
		MinPriority:   5,
	}
	b.respondSearch(s, i, q, b.search.Search, fmt.Sprintf("🎮 Top %d Deals (%d%%+ off)", q.Limit, q.MinDiscount))
}

func (b *Bot) handleStoreDeals(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	store := stringOptionValue(opts, "store")
	q := deals.Query{
		Limit:         clampAmount(intOption(opts, "amount", 10)),
		MinDiscount:   intOption(opts, "min_discount", 60),
		Store:         store,
		QualityFilter: true,
		MinPriority:   5,
	}
	title := fmt.Sprintf("🏪 %s Deals (%d%%+ off)", stores.DisplayName(store), q.MinDiscount)
	b.respondSearch(s, i, q, b.search.Search, title)
}

func (b *Bot) handlePrioritySearch(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	q := deals.Query{
		Limit:       clampAmount(intOption(opts, "amount", 10)),
		MinPriority: intOption(opts, "min_priority", 5),
		MinDiscount: intOption(opts, "min_discount", 1),
		Store:       stringOptionValue(opts, "store"),
	}
	title := fmt.Sprintf("🎯 Priority Game Deals (priority %d+)", q.MinPriority)
	b.respondSearch(s, i, q, b.search.SearchPriority, title)
}

func (b *Bot) handleQualityDeals(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	q := deals.Query{
		Limit:       clampAmount(intOption(opts, "amount", 10)),
		MinDiscount: intOption(opts, "min_discount", 50),
		Store:       stringOptionValue(opts, "store"),
	}
	title := fmt.Sprintf("💎 Quality Deals (%d%%+ off)", q.MinDiscount)
	b.respondSearch(s, i, q, b.search.SearchHybrid, title)
}

// respondSearch is the shared defer/search/edit flow behind every deal
// command.
func (b *Bot) respondSearch(s *discordgo.Session, i *discordgo.InteractionCreate, q deals.Query,
	run func(context.Context, deals.Query) ([]deals.RankedDeal, error), title string) {

	if err := deferResponse(s, i); err != nil {
		b.log.Error("deferring response", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	results, err := run(ctx, q)
	if err != nil {
		b.log.Error("search failed", "command", i.ApplicationCommandData().Name, "error", err)
		b.editText(s, i, userMessage(err))
		return
	}
	if len(results) == 0 {
		b.editText(s, i, msgNoResults)
		return
	}

	b.editEmbeds(s, i, dealEmbeds(title, results))
}

func (b *Bot) handleStores(s *discordgo.Session, i *discordgo.InteractionCreate) {
	names := stores.AvailableStores()
	sort.Strings(names)

	embed := &discordgo.MessageEmbed{
		Title:       "🏪 Supported Stores",
		Description: strings.Join(names, ", "),
		Color:       colorInfo,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Use any of these with /storedeals or the store option",
		},
	}
	b.respondEmbed(s, i, embed)
}

func (b *Bot) handleDBStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.respondEmbed(s, i, statsEmbed(b.db.DatabaseStats()))
}

func (b *Bot) handleReloadDB(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := b.db.Reload(); err != nil {
		b.log.Error("reloading priority database", "error", err)
		b.respondText(s, i, "❌ Reload failed: "+err.Error())
		return
	}
	stats := b.db.DatabaseStats()
	b.respondText(s, i, fmt.Sprintf("✅ Priority database reloaded: %d games.", stats.TotalGames))
}

// userMessage maps pipeline errors to one of the three user-facing phrasings.
func userMessage(err error) string {
	var transient *itad.TransientError
	var malformed *itad.MalformedResponseError
	var clientErr *itad.ClientError
	switch {
	case errors.As(err, &transient), errors.As(err, &malformed):
		return msgServiceDown
	case errors.As(err, &clientErr):
		return msgBadInput
	case errors.Is(err, deals.ErrNoPriorityDatabase):
		return "❌ No priority games database is loaded. Add one and run /reloaddb."
	default:
		return msgServiceDown
	}
}

func deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

func (b *Bot) editText(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content})
	if err != nil {
		b.log.Error("editing response", "error", err)
	}
}

func (b *Bot) editEmbeds(s *discordgo.Session, i *discordgo.InteractionCreate, embeds []*discordgo.MessageEmbed) {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Embeds: &embeds})
	if err != nil {
		b.log.Error("editing response", "error", err)
	}
}

func (b *Bot) respondText(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		b.log.Error("responding", "error", err)
	}
}

func (b *Bot) respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}},
	})
	if err != nil {
		b.log.Error("responding", "error", err)
	}
}

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

func intOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string, fallback int) int {
	if opt, ok := opts[name]; ok {
		return int(opt.IntValue())
	}
	return fallback
}

func stringOptionValue(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func clampAmount(n int) int {
	if n < 1 {
		return 1
	}
	if n > 25 {
		return 25
	}
	return n
}

func interactionUser(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.Username
	}
	if i.User != nil {
		return i.User.Username
	}
	return "unknown"
}
