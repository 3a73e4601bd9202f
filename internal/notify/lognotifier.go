package notify

import (
	"context"
	"log/slog"
)

// LogNotifier is the default Notifier wiring: it writes messages to the
// structured log. Deployments plug a real chat transport in instead.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, subscriberID, text string) error {
	n.logger.Info("notification",
		"subscriber_id", subscriberID,
		"text", text,
	)
	return nil
}
