package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"content-pipeline/internal/dispatch"
	"content-pipeline/internal/llm"
	"content-pipeline/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *pipelineServiceImpl) ListContent(ctx context.Context, taskID uuid.UUID) ([]*models.Content, error) {
	if _, err := s.tasks.GetByID(ctx, s.db, taskID); err != nil {
		return nil, err
	}
	items, err := s.contents.ListByTask(ctx, s.db, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	return items, nil
}

// ApproveContent атомарно переводит is_approved из false в true вместе с новым телом.
// Повторное утверждение основной статьи без производного контента заново запускает
// генерацию по уже утвержденному тексту. Если производный контент есть,
// возвращается models.ErrContentAlreadyApproved.
func (s *pipelineServiceImpl) ApproveContent(ctx context.Context, id uuid.UUID, body string) (*models.Content, error) {
	if strings.TrimSpace(body) == "" {
		return nil, models.NewValidationError("content", "must not be empty")
	}

	content, err := s.contents.Approve(ctx, s.db, id, body)
	if errors.Is(err, models.ErrContentAlreadyApproved) {
		return s.retryDerivatives(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("Content approved",
		zap.Stringer("content_id", content.ID),
		zap.Stringer("task_id", content.TaskID),
		zap.String("type", string(content.Type)),
	)

	if content.Type == models.ContentTypeMasterDocument {
		s.dispatchDerivative(content)
	}
	return content, nil
}

// retryDerivatives обрабатывает повторное утверждение. Тело утвержденной строки не меняется.
func (s *pipelineServiceImpl) retryDerivatives(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	content, err := s.contents.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if content.Type != models.ContentTypeMasterDocument {
		s.logger.Info("Content already approved, ignoring", zap.Stringer("content_id", id))
		return nil, models.ErrContentAlreadyApproved
	}

	existing, err := s.contents.ListByTaskAndTypes(ctx, s.db, content.TaskID, models.DerivativeContentTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing derivatives: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Info("Content already approved, ignoring", zap.Stringer("content_id", id))
		return nil, models.ErrContentAlreadyApproved
	}

	s.logger.Info("Master already approved without derivatives, dispatching again",
		zap.Stringer("content_id", id),
		zap.Stringer("task_id", content.TaskID),
	)
	s.dispatchDerivative(content)
	return content, nil
}

func (s *pipelineServiceImpl) dispatchDerivative(content *models.Content) {
	master := llm.MasterContent{Title: deref(content.Title), Body: content.Body}
	taskID := content.TaskID
	accepted, err := s.dispatcher.Submit(dispatch.Key(taskID, string(llm.StageDerivative)), func(jobCtx context.Context) error {
		return s.generateDerivative(jobCtx, taskID, master)
	})
	if err != nil {
		s.logger.Error("Failed to dispatch derivative generation", zap.Stringer("task_id", taskID), zap.Error(err))
		stageFailuresTotal.WithLabelValues(string(llm.StageDerivative)).Inc()
	} else if !accepted {
		duplicateTriggersTotal.WithLabelValues(string(llm.StageDerivative)).Inc()
	}
}

// UpdateContent сохраняет правки без утверждения. Статус задачи не меняется.
func (s *pipelineServiceImpl) UpdateContent(ctx context.Context, id uuid.UUID, patch models.ContentPatch) (*models.Content, error) {
	current, err := s.contents.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	patch, err = validatePatch(current, patch)
	if err != nil {
		return nil, err
	}

	updated, err := s.contents.Update(ctx, s.db, id, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Content updated", zap.Stringer("content_id", id))
	return updated, nil
}
