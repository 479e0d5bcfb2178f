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

const contentFields = `id, task_id, type, title, content, is_approved, created_at, updated_at`

const (
	createContentQuery = `
        INSERT INTO content (task_id, type, title, content, is_approved)
        VALUES ($1, $2, $3, $4, FALSE)
        RETURNING ` + contentFields
	getContentByIDQuery         = `SELECT ` + contentFields + ` FROM content WHERE id = $1`
	listContentByTaskQuery      = `SELECT ` + contentFields + ` FROM content WHERE task_id = $1 ORDER BY created_at DESC`
	listContentByTaskTypesQuery = `SELECT ` + contentFields + ` FROM content WHERE task_id = $1 AND type = ANY($2) ORDER BY created_at DESC`
	updateContentQuery          = `
        UPDATE content SET
            title = COALESCE($2, title),
            content = COALESCE($3, content),
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + contentFields
	// The is_approved guard makes approval a single compare-and-set.
	approveContentQuery = `
        UPDATE content SET
            content = $2,
            is_approved = TRUE,
            updated_at = NOW()
        WHERE id = $1 AND is_approved = FALSE
        RETURNING ` + contentFields
	contentExistsQuery = `SELECT EXISTS(SELECT 1 FROM content WHERE id = $1)`
)

type pgContentRepository struct {
	logger *zap.Logger
}

// NewPgContentRepository создает репозиторий контента поверх PostgreSQL.
func NewPgContentRepository(logger *zap.Logger) ContentRepository {
	return &pgContentRepository{logger: logger.Named("PgContentRepo")}
}

func (r *pgContentRepository) Create(ctx context.Context, querier database.DBTX, content models.NewContent) (*models.Content, error) {
	var created models.Content
	err := pgxscan.Get(ctx, querier, &created, createContentQuery, content.TaskID, content.Type, content.Title, content.Body)
	if err != nil {
		r.logger.Error("Failed to create content",
			zap.Stringer("taskID", content.TaskID),
			zap.String("type", string(content.Type)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create %s content: %w", content.Type, err)
	}
	return &created, nil
}

func (r *pgContentRepository) GetByID(ctx context.Context, querier database.DBTX, id uuid.UUID) (*models.Content, error) {
	var content models.Content
	if err := pgxscan.Get(ctx, querier, &content, getContentByIDQuery, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrContentNotFound
		}
		r.logger.Error("Failed to get content", zap.Stringer("contentID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get content %s: %w", id, err)
	}
	return &content, nil
}

func (r *pgContentRepository) ListByTask(ctx context.Context, querier database.DBTX, taskID uuid.UUID) ([]*models.Content, error) {
	items := make([]*models.Content, 0)
	if err := pgxscan.Select(ctx, querier, &items, listContentByTaskQuery, taskID); err != nil {
		r.logger.Error("Failed to list content", zap.Stringer("taskID", taskID), zap.Error(err))
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	return items, nil
}

func (r *pgContentRepository) ListByTaskAndTypes(ctx context.Context, querier database.DBTX, taskID uuid.UUID, types []models.ContentType) ([]*models.Content, error) {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}

	items := make([]*models.Content, 0)
	if err := pgxscan.Select(ctx, querier, &items, listContentByTaskTypesQuery, taskID, names); err != nil {
		r.logger.Error("Failed to list content by type", zap.Stringer("taskID", taskID), zap.Strings("types", names), zap.Error(err))
		return nil, fmt.Errorf("failed to list content by type: %w", err)
	}
	return items, nil
}

func (r *pgContentRepository) Update(ctx context.Context, querier database.DBTX, id uuid.UUID, patch models.ContentPatch) (*models.Content, error) {
	var content models.Content
	if err := pgxscan.Get(ctx, querier, &content, updateContentQuery, id, patch.Title, patch.Body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrContentNotFound
		}
		r.logger.Error("Failed to update content", zap.Stringer("contentID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update content: %w", err)
	}
	return &content, nil
}

func (r *pgContentRepository) Approve(ctx context.Context, querier database.DBTX, id uuid.UUID, body string) (*models.Content, error) {
	var content models.Content
	err := pgxscan.Get(ctx, querier, &content, approveContentQuery, id, body)
	if err == nil {
		return &content, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error("Failed to approve content", zap.Stringer("contentID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to approve content: %w", err)
	}

	// No row updated: either missing or already approved.
	var exists bool
	if err := querier.QueryRow(ctx, contentExistsQuery, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check content existence: %w", err)
	}
	if !exists {
		return nil, models.ErrContentNotFound
	}
	return nil, models.ErrContentAlreadyApproved
}
