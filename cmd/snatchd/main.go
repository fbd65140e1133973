package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"snatch/internal/config"
	"snatch/internal/daemon"
	"snatch/internal/downloader"
	"snatch/internal/events"
	"snatch/internal/jobs"
	"snatch/internal/logging"
	"snatch/internal/ytdlp"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	runner, err := ytdlp.New(
		cfg.Downloader.BinaryCandidates,
		cfg.Paths.DownloadDir,
		cfg.Downloader.StrategyBackoffSeconds,
		logger,
	)
	if err != nil {
		logger.Error("init yt-dlp client", logging.Error(err))
		return
	}

	store := jobs.NewStore()
	hub := events.NewHub()
	service := downloader.NewService(cfg, store, hub, runner, logger)

	d, err := daemon.New(cfg, store, hub, service, runner, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	d.Stop()
	logger.Info("snatchd shutting down")
}
