package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus - стадия задачи в конвейере генерации.
type TaskStatus string

const (
	TaskStatusProcessing    TaskStatus = "processing"
	TaskStatusReviewPending TaskStatus = "review_pending"
	TaskStatusApproved      TaskStatus = "approved"
	TaskStatusCompleted     TaskStatus = "completed"
	TaskStatusError         TaskStatus = "error"
)

// Ограничения длины полей задачи (в символах).
const (
	MaxTopicLength        = 500
	MaxRequirementsLength = 10000
	MaxSourceTextLength   = 50000
)

// IsValid сообщает, входит ли статус в известный набор.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusProcessing, TaskStatusReviewPending, TaskStatusApproved, TaskStatusCompleted, TaskStatusError:
		return true
	}
	return false
}

// IsOperatorSettable сообщает, может ли оператор выставить статус вручную.
// Статус error выставляет только конвейер.
func (s TaskStatus) IsOperatorSettable() bool {
	return s.IsValid() && s != TaskStatusError
}

// Task - запрос пользователя на генерацию аналитической статьи.
type Task struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	UserID       int64      `json:"userId" db:"user_id"`
	Topic        string     `json:"topic" db:"topic"`
	SourceURL    *string    `json:"sourceUrl,omitempty" db:"source_url"`
	SourceFile   *string    `json:"sourceFile,omitempty" db:"source_file"`
	SourceText   *string    `json:"sourceText,omitempty" db:"source_text"`
	Comparison   *string    `json:"comparison,omitempty" db:"comparison"`
	Requirements string     `json:"requirements" db:"requirements"`
	Provider     *string    `json:"provider,omitempty" db:"provider"`
	Status       TaskStatus `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// NewTask holds the user supplied fields of a task before it is persisted.
type NewTask struct {
	UserID       int64
	Topic        string
	SourceURL    *string
	SourceFile   *string
	SourceText   *string
	Comparison   *string
	Requirements string
	Provider     *string
}
