package repository

import (
	"context"

	"content-pipeline/internal/database"
	"content-pipeline/internal/models"

	"github.com/google/uuid"
)

// TaskRepository persists tasks. Tasks are never deleted.
type TaskRepository interface {
	Create(ctx context.Context, querier database.DBTX, task models.NewTask) (*models.Task, error)
	GetByID(ctx context.Context, querier database.DBTX, id uuid.UUID) (*models.Task, error)
	// ListByUser returns the user's tasks, newest first.
	ListByUser(ctx context.Context, querier database.DBTX, userID int64) ([]*models.Task, error)
	UpdateStatus(ctx context.Context, querier database.DBTX, id uuid.UUID, status models.TaskStatus) (*models.Task, error)
}

// ContentRepository persists generated content rows.
type ContentRepository interface {
	Create(ctx context.Context, querier database.DBTX, content models.NewContent) (*models.Content, error)
	GetByID(ctx context.Context, querier database.DBTX, id uuid.UUID) (*models.Content, error)
	// ListByTask returns the task's content, newest first.
	ListByTask(ctx context.Context, querier database.DBTX, taskID uuid.UUID) ([]*models.Content, error)
	// ListByTaskAndTypes returns rows of the task with any of the given types.
	ListByTaskAndTypes(ctx context.Context, querier database.DBTX, taskID uuid.UUID, types []models.ContentType) ([]*models.Content, error)
	Update(ctx context.Context, querier database.DBTX, id uuid.UUID, patch models.ContentPatch) (*models.Content, error)
	// Approve sets the final body and flips is_approved from false to true.
	// Returns models.ErrContentAlreadyApproved if the row was approved before.
	Approve(ctx context.Context, querier database.DBTX, id uuid.UUID, body string) (*models.Content, error)
}

// CredentialRepository persists encrypted provider keys.
type CredentialRepository interface {
	GetByProvider(ctx context.Context, querier database.DBTX, provider string) (*models.Credential, error)
	Upsert(ctx context.Context, querier database.DBTX, provider, encryptedKey string) error
	Delete(ctx context.Context, querier database.DBTX, provider string) error
	List(ctx context.Context, querier database.DBTX) ([]*models.Credential, error)
}
