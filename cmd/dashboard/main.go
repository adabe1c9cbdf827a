package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"marathon-admin/internal/config"
	"marathon-admin/internal/dashboard"

	"go.uber.org/zap"
)

type deps struct {
	loadConfig  func() config.Config
	newLogger   func() (*zap.Logger, error)
	connectPush func(context.Context, string) (*dashboard.PushClient, error)
	notify      func(chan<- os.Signal, ...os.Signal)
}

var mainDepsProvider = defaultDeps

func defaultDeps() deps {
	return deps{
		loadConfig: config.Load,
		newLogger: func() (*zap.Logger, error) {
			return zap.NewProduction()
		},
		connectPush: func(ctx context.Context, url string) (*dashboard.PushClient, error) {
			return dashboard.ConnectPush(ctx, url)
		},
		notify: signal.Notify,
	}
}

func main() {
	if err := run(context.Background(), mainDepsProvider()); err != nil {
		log.Fatalf("dashboard exited with error: %v", err)
	}
}

func run(ctx context.Context, d deps) error {
	cfg := d.loadConfig()

	logger, err := d.newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	push, err := d.connectPush(ctx, cfg.StreamURL)
	if err != nil {
		return err
	}

	client := dashboard.NewClient(cfg.APIBaseURL, dashboard.WithToken(cfg.APIToken))
	notifier := dashboard.NewLogNotifier(logger)
	provider := newConsoleProvider(logger)

	ctl := dashboard.NewController(client, push, provider, notifier, logger, cfg.DownloadDir)
	if err := ctl.Start(ctx); err != nil {
		_ = push.Close()
		return err
	}
	defer ctl.Close()

	logger.Info("dashboard connected",
		zap.String("api", cfg.APIBaseURL),
		zap.String("stream", cfg.StreamURL))

	signals := make(chan os.Signal, 1)
	d.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-signals:
	case <-ctx.Done():
	}
	return nil
}
