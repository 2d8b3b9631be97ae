package alerts

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// BeeepSender delivers payloads as native desktop notifications.
type BeeepSender struct {
	logger *slog.Logger
}

// NewBeeepSender creates a desktop notification sender.
func NewBeeepSender(appName string, logger *slog.Logger) *BeeepSender {
	if logger == nil {
		logger = slog.Default()
	}
	if appName != "" {
		beeep.AppName = appName
	}
	return &BeeepSender{logger: logger}
}

func (s *BeeepSender) Send(payload Payload) {
	if err := beeep.Notify(payload.Title, payload.Content, ""); err != nil {
		// Display failures never propagate; the envelope was already handled.
		s.logger.Warn("desktop notification failed", "error", err)
	}
}
