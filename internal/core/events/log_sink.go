package events

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes each event as a structured log line.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger.Named("events")}
}

func (s *LogSink) Emit(_ context.Context, evs []Event) error {
	for _, e := range evs {
		s.logger.Info("event",
			zap.String("kind", string(e.Kind())),
			zap.Uint32("pool", e.Pool()),
			zap.Any("payload", e),
		)
	}
	return nil
}

func (s *LogSink) Close() error {
	_ = s.logger.Sync()
	return nil
}
