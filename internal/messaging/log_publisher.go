package messaging

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher пишет события в лог. Используется, когда брокер не настроен.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.Named("EventLog")}
}

func (p *LogPublisher) Publish(_ context.Context, event TaskEvent) error {
	fields := []zap.Field{
		zap.String("type", string(event.Type)),
		zap.Stringer("task_id", event.TaskID),
		zap.Int64("user_id", event.UserID),
		zap.String("status", string(event.Status)),
	}
	if event.Stage != "" {
		fields = append(fields, zap.String("stage", event.Stage))
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error", event.Error))
	}
	p.logger.Info("Task event", fields...)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
