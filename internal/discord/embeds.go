package discord

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"

	"github.com/guarzo/gamedealer/internal/deals"
	"github.com/guarzo/gamedealer/internal/priority"
)

const (
	colorDeal = 0x2ecc71
	colorInfo = 0x3498db

	// fieldsPerEmbed stays within Discord's 25-field cap while keeping each
	// embed readable on mobile.
	fieldsPerEmbed = 10
)

// priorityEmoji marks how important a curated game is at a glance.
func priorityEmoji(p int) string {
	switch {
	case p >= 9:
		return "🏆"
	case p >= 7:
		return "⭐"
	case p >= 5:
		return "✨"
	case p >= 3:
		return "🔹"
	default:
		return "⚪"
	}
}

// dealEmbeds renders results into one or more embeds, chunked so no embed
// exceeds fieldsPerEmbed fields. The first embed carries the title.
func dealEmbeds(title string, results []deals.RankedDeal) []*discordgo.MessageEmbed {
	chunks := lo.Chunk(results, fieldsPerEmbed)
	embeds := make([]*discordgo.MessageEmbed, 0, len(chunks))

	for idx, chunk := range chunks {
		embed := &discordgo.MessageEmbed{Color: colorDeal}
		if idx == 0 {
			embed.Title = title
			embed.Footer = &discordgo.MessageEmbedFooter{
				Text: fmt.Sprintf("%d deals via IsThereAnyDeal", len(results)),
			}
		}
		for _, rd := range chunk {
			embed.Fields = append(embed.Fields, dealField(rd))
		}
		embeds = append(embeds, embed)
	}
	return embeds
}

func dealField(rd deals.RankedDeal) *discordgo.MessageEmbedField {
	name := fmt.Sprintf("%s %s", priorityEmoji(rd.Priority), rd.Title)

	var sb strings.Builder
	fmt.Fprintf(&sb, "💰 **%s** ~~%s~~ (%s off)\n", rd.Price, rd.OriginalPrice, rd.Discount)
	fmt.Fprintf(&sb, "🏪 %s", rd.Store)
	if rd.Priority > 0 {
		fmt.Fprintf(&sb, " · Priority %d", rd.Priority)
		if rd.Category != "" {
			fmt.Fprintf(&sb, " (%s)", rd.Category)
		}
	}
	if rd.Quality > 0 {
		fmt.Fprintf(&sb, " · Score %.0f", rd.Quality)
	}
	if rd.Notes != "" {
		fmt.Fprintf(&sb, "\n📝 %s", rd.Notes)
	}
	if rd.URL != "" {
		fmt.Fprintf(&sb, "\n[View Deal](%s)", rd.URL)
	}

	return &discordgo.MessageEmbedField{Name: name, Value: sb.String()}
}

// statsEmbed renders the priority database distribution.
func statsEmbed(stats priority.Stats) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "📊 Priority Database",
		Color: colorInfo,
		Description: fmt.Sprintf("**%d** curated games", stats.TotalGames),
	}

	if len(stats.ByPriority) > 0 {
		levels := lo.Keys(stats.ByPriority)
		sort.Sort(sort.Reverse(sort.IntSlice(levels)))
		var sb strings.Builder
		for _, lvl := range levels {
			fmt.Fprintf(&sb, "%s Priority %d: %d\n", priorityEmoji(lvl), lvl, stats.ByPriority[lvl])
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "By Priority", Value: sb.String(), Inline: true,
		})
	}

	if len(stats.ByCategory) > 0 {
		categories := lo.Keys(stats.ByCategory)
		sort.Strings(categories)
		var sb strings.Builder
		for _, c := range categories {
			fmt.Fprintf(&sb, "%s: %d\n", c, stats.ByCategory[c])
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "By Category", Value: sb.String(), Inline: true,
		})
	}

	return embed
}

// digestEmbed renders the scheduled daily digest post.
func digestEmbed(results []deals.RankedDeal) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🌅 Daily Deals Digest",
		Color: colorDeal,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Deals via IsThereAnyDeal",
		},
	}
	for _, rd := range results {
		if len(embed.Fields) == fieldsPerEmbed {
			break
		}
		embed.Fields = append(embed.Fields, dealField(rd))
	}
	return embed
}

// PostDigest sends the digest results to the configured channel.
func (b *Bot) PostDigest(channelID string, results []deals.RankedDeal) error {
	if len(results) == 0 {
		b.log.Info("digest skipped, no deals matched")
		return nil
	}
	_, err := b.session.ChannelMessageSendEmbed(channelID, digestEmbed(results))
	if err != nil {
		return fmt.Errorf("posting digest: %w", err)
	}
	return nil
}
