package notify

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
)

// LogSink writes each event as a structured log line.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Name() string { return "log" }

func (s LogSink) Publish(ctx context.Context, e domain.Event) error {
	s.Logger.InfoContext(ctx, "notification",
		slog.String("event_id", e.ID),
		slog.String("type", string(e.Type)),
		slog.String("channel", e.Channel()),
		slog.String("audience", e.Audience),
		slog.Int64("user_id", e.UserID),
		slog.String("message", e.Message),
	)
	return nil
}
