package repository

import (
	"context"
	"errors"
	"fmt"

	"content-pipeline/internal/database"
	"content-pipeline/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const taskFields = `id, user_id, topic, source_url, source_file, source_text, comparison, requirements, provider, status, created_at, updated_at`

const (
	createTaskQuery = `
        INSERT INTO tasks (user_id, topic, source_url, source_file, source_text, comparison, requirements, provider, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING ` + taskFields
	getTaskByIDQuery      = `SELECT ` + taskFields + ` FROM tasks WHERE id = $1`
	listTasksByUserQuery  = `SELECT ` + taskFields + ` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`
	updateTaskStatusQuery = `UPDATE tasks SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + taskFields
)

type pgTaskRepository struct {
	logger *zap.Logger
}

// NewPgTaskRepository создает репозиторий задач поверх PostgreSQL.
func NewPgTaskRepository(logger *zap.Logger) TaskRepository {
	return &pgTaskRepository{logger: logger.Named("PgTaskRepo")}
}

func (r *pgTaskRepository) Create(ctx context.Context, querier database.DBTX, task models.NewTask) (*models.Task, error) {
	var created models.Task
	err := pgxscan.Get(ctx, querier, &created, createTaskQuery,
		task.UserID, task.Topic, task.SourceURL, task.SourceFile, task.SourceText,
		task.Comparison, task.Requirements, task.Provider, models.TaskStatusProcessing,
	)
	if err != nil {
		r.logger.Error("Failed to create task", zap.Int64("userID", task.UserID), zap.Error(err))
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	r.logger.Debug("Task created", zap.Stringer("taskID", created.ID), zap.Int64("userID", created.UserID))
	return &created, nil
}

func (r *pgTaskRepository) GetByID(ctx context.Context, querier database.DBTX, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := pgxscan.Get(ctx, querier, &task, getTaskByIDQuery, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrTaskNotFound
		}
		r.logger.Error("Failed to get task", zap.Stringer("taskID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get task %s: %w", id, err)
	}
	return &task, nil
}

func (r *pgTaskRepository) ListByUser(ctx context.Context, querier database.DBTX, userID int64) ([]*models.Task, error) {
	tasks := make([]*models.Task, 0)
	if err := pgxscan.Select(ctx, querier, &tasks, listTasksByUserQuery, userID); err != nil {
		r.logger.Error("Failed to list tasks", zap.Int64("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (r *pgTaskRepository) UpdateStatus(ctx context.Context, querier database.DBTX, id uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	var task models.Task
	if err := pgxscan.Get(ctx, querier, &task, updateTaskStatusQuery, id, status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrTaskNotFound
		}
		r.logger.Error("Failed to update task status", zap.Stringer("taskID", id), zap.String("status", string(status)), zap.Error(err))
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	r.logger.Debug("Task status updated", zap.Stringer("taskID", id), zap.String("status", string(status)))
	return &task, nil
}
