package artistry

import (
	"context"
	"log/slog"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) ArtistCreated(ctx context.Context, id int64) error { return nil }
func (n *NoopEventSink) ArtistUpdated(ctx context.Context, id int64) error { return nil }
func (n *NoopEventSink) ArtistDeleted(ctx context.Context, id int64) error { return nil }
func (n *NoopEventSink) ArtistRated(ctx context.Context, id int64, userID string, score float64) error {
	return nil
}

// LogEventSink writes lifecycle events to a structured logger.
type LogEventSink struct {
	logger *slog.Logger
}

// NewLogEventSink creates an event sink that logs every lifecycle event
func NewLogEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventSink{logger: logger}
}

func (l *LogEventSink) ArtistCreated(ctx context.Context, id int64) error {
	l.logger.Info("artist created", "artist_id", id)
	return nil
}

func (l *LogEventSink) ArtistUpdated(ctx context.Context, id int64) error {
	l.logger.Info("artist updated", "artist_id", id)
	return nil
}

func (l *LogEventSink) ArtistDeleted(ctx context.Context, id int64) error {
	l.logger.Info("artist deleted", "artist_id", id)
	return nil
}

func (l *LogEventSink) ArtistRated(ctx context.Context, id int64, userID string, score float64) error {
	l.logger.Info("artist rated", "artist_id", id, "user_id", userID, "score", score)
	return nil
}
