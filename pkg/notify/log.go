package notify

import (
	"context"
	"log/slog"
)

// Log only writes notifications to the log.
type Log struct{}

// Validate implements Notifier.
func (Log) Validate() error { return nil }

// Close implements Notifier.
func (Log) Close() error { return nil }

// Notify implements Notifier.
func (Log) Notify(ctx context.Context, n Notification) error {
	slog.InfoContext(
		ctx,
		"report generated",
		slog.String("title", n.Title),
		slog.String("message", n.Message),
		slog.String("location", n.Record.Location),
	)
	return nil
}
