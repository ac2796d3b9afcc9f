package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/xvanov/clipforge/internal/config"
	"github.com/xvanov/clipforge/internal/daemon"
	"github.com/xvanov/clipforge/internal/events"
	"github.com/xvanov/clipforge/internal/export"
	"github.com/xvanov/clipforge/internal/jobstore"
	"github.com/xvanov/clipforge/internal/logging"
	"github.com/xvanov/clipforge/internal/notifications"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := jobstore.Open(cfg)
	if err != nil {
		logger.Error("open job store", logging.Error(err))
		return
	}

	emitter := events.Fanout(
		events.NewLogEmitter(logger),
		notifications.NewEmitter(cfg, logger),
	)
	manager := export.NewManager(cfg, emitter, store, logger)

	d, err := daemon.New(cfg, manager, store, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		store.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("clipforged shutting down")
}
