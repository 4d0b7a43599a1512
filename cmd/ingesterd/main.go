// Command ingesterd runs the media ingest daemon: it watches the inbox for
// new objects, drives their workflows, and resumes workflows suspended on
// asynchronous scans.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"ingester/internal/bootstrap"
	"ingester/internal/config"
	"ingester/internal/daemon"
	"ingester/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, path, existed, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	if !existed {
		logger.Info("no config file found, using defaults", logging.String("path", path))
	}

	rt, err := bootstrap.Build(cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", logging.Error(err))
		return
	}
	defer rt.Close()

	d, err := daemon.New(cfg, rt.Store, rt.Trigger, rt.Receiver, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}

	<-ctx.Done()
	d.Stop()
}
