// wsprobe connects to a Regami realtime endpoint and streams decoded
// envelopes to the console.
// Usage: go run ./cmd/wsprobe --url https://api.regami.app --token <jwt>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/regami/realtime/internal/channel"
	"github.com/regami/realtime/internal/dispatch"
	"github.com/regami/realtime/internal/envelope"
	"github.com/regami/realtime/internal/session"
)

func main() {
	baseURL := flag.String("url", "https://api.regami.app", "backend base URL")
	token := flag.String("token", "", "bearer token (required)")
	heartbeat := flag.Duration("heartbeat", 30*time.Second, "ping cadence")
	verbose := flag.Bool("verbose", false, "print full envelope JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	if *token == "" {
		logger.Error("a bearer token is required")
		logger.Info("Pass one with --token, for example from the app's login response")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	events := dispatch.New(logger)
	for _, msgType := range []string{
		envelope.TypeConnected,
		envelope.TypePong,
		envelope.TypeNewMatch,
		envelope.TypeMatchAccepted,
		envelope.TypeMatchConfirmed,
		envelope.TypeMatchRejected,
		envelope.TypeNewMessage,
		envelope.TypeNotification,
	} {
		msgType := msgType
		events.Subscribe(msgType, func(data json.RawMessage) {
			printEnvelope(msgType, data, *verbose)
		})
	}

	cfg := channel.DefaultConfig()
	cfg.BaseURL = *baseURL
	cfg.HeartbeatInterval = *heartbeat

	ch := channel.New(cfg, session.StaticSource(*token), events, logger)

	go func() {
		if err := ch.Run(ctx); err != nil {
			logger.Error("channel stopped", "error", err)
		}
	}()
	ch.Activate()

	// Stats printer
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := ch.Stats()
				logger.Info("stats",
					"state", ch.State(),
					"frames_received", stats.FramesReceived,
					"pings_sent", stats.PingsSent,
					"decode_errors", stats.DecodeErrors,
					"dial_attempts", stats.DialAttempts,
					"last_pong", stats.LastPongAt,
				)
			}
		}
	}()

	logger.Info("probing started - press Ctrl+C to stop")

	<-ctx.Done()
	logger.Info("shutdown complete")
}

func printEnvelope(msgType string, data json.RawMessage, verbose bool) {
	if verbose && len(data) > 0 {
		var pretty json.RawMessage = data
		if out, err := json.MarshalIndent(pretty, "", "  "); err == nil {
			fmt.Printf("[%s] %s\n", msgType, out)
			return
		}
	}
	fmt.Printf("[%s] %s\n", msgType, data)
}
