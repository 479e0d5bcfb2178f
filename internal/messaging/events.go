// Package messaging публикует события жизненного цикла задач.
package messaging

import (
	"context"
	"time"

	"content-pipeline/internal/models"

	"github.com/google/uuid"
)

// EventType - тип события. Используется как routing key.
type EventType string

const (
	EventTaskStatusChanged EventType = "task.status_changed"
	EventGenerationFailed  EventType = "generation.failed"
)

// TaskEvent - событие по задаче.
type TaskEvent struct {
	Type       EventType         `json:"type"`
	TaskID     uuid.UUID         `json:"taskId"`
	UserID     int64             `json:"userId"`
	Status     models.TaskStatus `json:"status,omitempty"`
	Stage      string            `json:"stage,omitempty"`
	Provider   string            `json:"provider,omitempty"`
	Error      string            `json:"error,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}

// StatusChanged строит событие смены статуса задачи.
func StatusChanged(task *models.Task) TaskEvent {
	return TaskEvent{
		Type:       EventTaskStatusChanged,
		TaskID:     task.ID,
		UserID:     task.UserID,
		Status:     task.Status,
		OccurredAt: time.Now().UTC(),
	}
}

// GenerationFailed строит событие об ошибке этапа генерации.
func GenerationFailed(task *models.Task, stage, provider string, err error) TaskEvent {
	ev := TaskEvent{
		Type:       EventGenerationFailed,
		TaskID:     task.ID,
		UserID:     task.UserID,
		Status:     task.Status,
		Stage:      stage,
		Provider:   provider,
		OccurredAt: time.Now().UTC(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	return ev
}

// EventPublisher отправляет события. Ошибка публикации не должна ломать переход статуса.
type EventPublisher interface {
	Publish(ctx context.Context, event TaskEvent) error
	Close() error
}
