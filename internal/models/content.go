package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentType identifies what a content row holds.
type ContentType string

const (
	ContentTypeMasterDocument     ContentType = "master_document"
	ContentTypeTranslatedDocument ContentType = "translated_document"
	ContentTypeThreadPosts        ContentType = "thread_posts"
	ContentTypeMicroPosts         ContentType = "micro_posts"
)

// DerivativeContentTypes are produced together once the master document is approved.
var DerivativeContentTypes = []ContentType{
	ContentTypeTranslatedDocument,
	ContentTypeThreadPosts,
	ContentTypeMicroPosts,
}

// IsMultiItem reports whether the body is a JSON array of strings.
func (t ContentType) IsMultiItem() bool {
	return t == ContentTypeThreadPosts || t == ContentTypeMicroPosts
}

// Content is one generated artifact of a task.
type Content struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	TaskID     uuid.UUID   `json:"taskId" db:"task_id"`
	Type       ContentType `json:"type" db:"type"`
	Title      *string     `json:"title,omitempty" db:"title"`
	Body       string      `json:"content" db:"content"`
	IsApproved bool        `json:"isApproved" db:"is_approved"`
	CreatedAt  time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time   `json:"updatedAt" db:"updated_at"`
}

// NewContent holds the fields of a content row before insert.
type NewContent struct {
	TaskID uuid.UUID
	Type   ContentType
	Title  *string
	Body   string
}

// ContentPatch is a partial edit. Nil fields are left unchanged.
type ContentPatch struct {
	Title *string
	Body  *string
}
