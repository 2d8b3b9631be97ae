package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/regami/realtime/internal/alerts"
	"github.com/regami/realtime/internal/channel"
	"github.com/regami/realtime/internal/config"
	"github.com/regami/realtime/internal/dispatch"
	"github.com/regami/realtime/internal/session"
	"github.com/regami/realtime/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/notifier.example.yaml", "path to config file")
	flag.Parse()

	// Load configuration first so the log level applies from the start.
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Logging.Level),
	}))
	slog.SetDefault(logger)

	logger.Info("starting notifier",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"server", cfg.Server.BaseURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Resolve the token source
	tokens, cleanup, err := buildTokenSource(ctx, cfg.Session, logger)
	if err != nil {
		logger.Error("failed to set up token source", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Event dispatch and user-facing reactions
	events := dispatch.New(logger)
	if cfg.Alerts.Enabled {
		alerts.Register(events, alerts.NewBeeepSender(cfg.Alerts.AppName, logger), logger)
		logger.Info("desktop alerts enabled", "app_name", cfg.Alerts.AppName)
	}

	// Notification channel
	ch := channel.New(channel.Config{
		BaseURL:           cfg.Server.BaseURL,
		HeartbeatInterval: cfg.Channel.HeartbeatInterval,
		ReconnectDelay:    cfg.Channel.ReconnectDelay,
		HandshakeTimeout:  cfg.Channel.HandshakeTimeout,
		WriteTimeout:      cfg.Channel.WriteTimeout,
	}, tokens, events, logger)

	// Auth-state watcher drives Activate/Deactivate
	watcher := session.NewWatcher(tokens, ch, cfg.Session.PollInterval, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ch.Run(gctx) })
	g.Go(func() error { return watcher.Run(gctx) })

	logger.Info("notifier running")

	if err := g.Wait(); err != nil {
		logger.Error("notifier stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("notifier stopped")
}

// buildTokenSource creates the configured credential source and a cleanup
// func releasing anything it holds open.
func buildTokenSource(ctx context.Context, cfg config.SessionConfig, logger *slog.Logger) (session.TokenSource, func(), error) {
	switch cfg.Source {
	case "postgres":
		logger.Info("using postgres session store",
			"host", cfg.Postgres.Host,
			"port", cfg.Postgres.Port,
			"database", cfg.Postgres.Name,
		)
		src, err := session.NewPGSource(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	default:
		logger.Info("using token file", "path", cfg.TokenPath)
		return session.FileSource{Path: cfg.TokenPath}, func() {}, nil
	}
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
