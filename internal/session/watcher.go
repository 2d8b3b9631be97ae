package session

import (
	"context"
	"log/slog"
	"time"
)

// Activator is the channel lifecycle surface driven by authentication state.
type Activator interface {
	Activate()
	Deactivate()
}

// Watcher observes the token source and turns authentication-state
// transitions into Activate/Deactivate calls: logged-out to logged-in
// activates the channel, the reverse deactivates it.
type Watcher struct {
	source   TokenSource
	target   Activator
	interval time.Duration
	logger   *slog.Logger
}

// NewWatcher creates a watcher polling source every interval.
func NewWatcher(source TokenSource, target Activator, interval time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		source:   source,
		target:   target,
		interval: interval,
		logger:   logger,
	}
}

// Run polls until ctx is cancelled, then deactivates the channel.
// The first check happens immediately so a session that is already
// authenticated at startup activates without waiting one interval.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	authed := w.check(ctx, false)

	for {
		select {
		case <-ctx.Done():
			w.target.Deactivate()
			return nil
		case <-ticker.C:
			authed = w.check(ctx, authed)
		}
	}
}

// check reads the source once and applies a transition if the state flipped.
// Resolution errors keep the previous state; a flapping session store must
// not bounce the channel.
func (w *Watcher) check(ctx context.Context, wasAuthed bool) bool {
	token, err := w.source.Token(ctx)
	if err != nil {
		w.logger.Warn("token resolution failed", "error", err)
		return wasAuthed
	}

	authed := token != ""
	switch {
	case authed && !wasAuthed:
		w.logger.Info("session authenticated, activating channel")
		w.target.Activate()
	case !authed && wasAuthed:
		w.logger.Info("session ended, deactivating channel")
		w.target.Deactivate()
	}
	return authed
}
