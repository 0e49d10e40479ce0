// Command gamedealer runs the deal-watching Discord bot: it serves slash
// commands against the IsThereAnyDeal API and posts a scheduled daily digest.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/robfig/cron/v3"

	"github.com/guarzo/gamedealer/internal/config"
	"github.com/guarzo/gamedealer/internal/deals"
	"github.com/guarzo/gamedealer/internal/discord"
	"github.com/guarzo/gamedealer/internal/itad"
	"github.com/guarzo/gamedealer/internal/popularity"
	"github.com/guarzo/gamedealer/internal/priority"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := newLogger(cfg.LogLevel)

	client, err := itad.NewClient(cfg.ITAD.APIKey, log,
		itad.WithRateLimit(cfg.ITAD.RateLimit),
		itad.WithHTTPClient(&http.Client{Timeout: cfg.ITAD.Timeout}),
	)
	if err != nil {
		return fmt.Errorf("creating ITAD client: %w", err)
	}
	defer client.Close()

	db, err := priority.Open(cfg.Priority.DatabasePath, log)
	if err != nil {
		return fmt.Errorf("opening priority database: %w", err)
	}

	aggregator := popularity.New(client, popularity.DefaultTTL, log)
	service := deals.NewService(client, db, aggregator, log)

	bot, err := discord.New(cfg.Discord.Token, cfg.Discord.AppID, cfg.Discord.GuildID, service, db, log)
	if err != nil {
		return err
	}
	if err := bot.Start(); err != nil {
		return fmt.Errorf("starting bot: %w", err)
	}
	defer func() {
		if err := bot.Stop(); err != nil {
			log.Error("closing discord session", "error", err)
		}
	}()
	log.Info("bot connected")

	scheduler, err := startDigest(cfg.Digest, service, bot, log)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer scheduler.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down")
	return nil
}

// startDigest schedules the daily deals post. Returns a nil scheduler when
// the digest is disabled or has no channel to post to.
func startDigest(cfg config.Digest, service *deals.Service, bot *discord.Bot, log *slog.Logger) (*cron.Cron, error) {
	if !cfg.Enabled || cfg.ChannelID == "" {
		log.Info("daily digest disabled")
		return nil, nil
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		results, err := service.Search(ctx, deals.Query{
			MinDiscount:   cfg.MinDiscount,
			Limit:         10,
			QualityFilter: true,
			MinPriority:   5,
		})
		if err != nil {
			log.Error("digest search failed", "error", err)
			return
		}
		if err := bot.PostDigest(cfg.ChannelID, results); err != nil {
			log.Error("digest post failed", "error", err)
			return
		}
		log.Info("digest posted", "deals", len(results))
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling digest %q: %w", cfg.Schedule, err)
	}

	scheduler.Start()
	log.Info("daily digest scheduled", "cron", cfg.Schedule, "channel", cfg.ChannelID)
	return scheduler, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(log)
	return log
}
