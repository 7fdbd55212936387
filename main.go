package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clipper-mock/api"
	"clipper-mock/cli"
	"clipper-mock/config"
	"clipper-mock/core/bootstrap"
	"clipper-mock/core/store"
	"clipper-mock/core/utils"
)

func main() {
	if len(os.Args) > 1 {
		cli.Run()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger := utils.NewLogger()
	st := store.New()

	if err := bootstrap.EnsureDefaultFixtures(context.Background(), st, cfg, logger); err != nil {
		logger.Fatalf("seed fixtures: %v", err)
	}

	srv := api.NewServer(cfg, st, logger)

	bg := api.BuildBackgroundController(logger, srv.BackgroundWorkers()...)
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	bg.Start(bgCtx)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := bg.Stop(ctx); err != nil {
		logger.Errorf("background stop: %v", err)
	}
	if err := srv.Stop(ctx); err != nil {
		logger.Errorf("graceful shutdown: %v", err)
	}
}
