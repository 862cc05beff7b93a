package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/skywatch/satpass/internal/adapter/celestrak"
	"github.com/skywatch/satpass/internal/adapter/heavensabove"
	"github.com/skywatch/satpass/internal/adapter/meteoblue"
	"github.com/skywatch/satpass/internal/adapter/slack"
	"github.com/skywatch/satpass/internal/almanac"
	"github.com/skywatch/satpass/internal/config"
	"github.com/skywatch/satpass/internal/observability"
	"github.com/skywatch/satpass/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	clock := clockwork.NewRealClock()

	source := heavensabove.NewClient(heavensabove.Site{
		Lat:      cfg.Site.Lat,
		Lon:      cfg.Site.Lon,
		HeightKm: cfg.Site.HeightKm,
		Timezone: "UCT",
	}, cfg.HTTPTimeout, logger)

	namer := celestrak.NewClient(cfg.HTTPTimeout, logger)

	forecast := meteoblue.NewClient(
		cfg.MeteoblueAPIKey, cfg.Site.Lat, cfg.Site.Lon,
		int(cfg.Site.HeightKm*1000), cfg.HTTPTimeout, logger,
	)
	cached := meteoblue.NewDailyCache(forecast, cfg.CacheDir, cfg.ForceWeatherRefresh, clock, logger)

	var notifier pipeline.Notifier
	if cfg.SendNotice {
		notifier = slack.NewClient(cfg.SlackToken, cfg.SlackChannel, cfg.HTTPTimeout, logger)
	}

	sun := almanac.New(cfg.Site.Lat, cfg.Site.Lon)

	p := pipeline.New(cfg, source, namer, cached, notifier, sun, clock, os.Stdout, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := p.Run(ctx); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
	logger.Info("run complete")
}
