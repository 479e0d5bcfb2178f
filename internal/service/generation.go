package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"content-pipeline/internal/database"
	"content-pipeline/internal/llm"
	"content-pipeline/internal/messaging"
	"content-pipeline/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	threadPostsTitle = "Thread Posts"
	microPostsTitle  = "Micro Posts"
)

var errDerivativesExist = errors.New("derivative content already exists")

// generateMaster - фоновый этап 1. Любая ошибка переводит задачу в error.
func (s *pipelineServiceImpl) generateMaster(ctx context.Context, task *models.Task) error {
	log := s.logger.With(zap.Stringer("task_id", task.ID))

	provider, err := s.providers.Resolve(ctx, deref(task.Provider))
	if err != nil {
		s.failMaster(ctx, task, s.providers.ResolveName(deref(task.Provider)), err)
		return err
	}

	doc, err := provider.GenerateMasterContent(ctx, llm.MasterRequest{
		Topic:        task.Topic,
		SourceURL:    deref(task.SourceURL),
		SourceText:   deref(task.SourceText),
		Comparison:   deref(task.Comparison),
		Requirements: task.Requirements,
	})
	if err != nil {
		s.failMaster(ctx, task, provider.Name(), err)
		return err
	}

	var updated *models.Task
	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx database.DBTX) error {
		title := doc.Title
		if _, err := s.contents.Create(ctx, tx, models.NewContent{
			TaskID: task.ID,
			Type:   models.ContentTypeMasterDocument,
			Title:  &title,
			Body:   doc.Body,
		}); err != nil {
			return fmt.Errorf("failed to save master document: %w", err)
		}
		updated, err = s.tasks.UpdateStatus(ctx, tx, task.ID, models.TaskStatusReviewPending)
		return err
	})
	if err != nil {
		s.failMaster(ctx, task, provider.Name(), err)
		return err
	}

	log.Info("Master document generated", zap.String("provider", provider.Name()))
	s.transitioned(updated)
	return nil
}

// failMaster переводит задачу в error. Повторов нет.
func (s *pipelineServiceImpl) failMaster(ctx context.Context, task *models.Task, provider string, cause error) {
	stageFailuresTotal.WithLabelValues(string(llm.StageMaster)).Inc()
	s.logger.Error("Master generation failed",
		zap.Stringer("task_id", task.ID),
		zap.String("provider", provider),
		zap.Error(cause),
	)

	// ctx задания мог истечь; статус все равно нужно записать.
	updated, err := s.tasks.UpdateStatus(context.WithoutCancel(ctx), s.db, task.ID, models.TaskStatusError)
	if err != nil {
		s.logger.Error("Failed to set task error status", zap.Stringer("task_id", task.ID), zap.Error(err))
		updated = task
	} else {
		s.transitioned(updated)
	}
	s.publish(messaging.GenerationFailed(updated, string(llm.StageMaster), provider, cause))
}

// generateDerivative - фоновый этап 2 после утверждения основной статьи.
// Ошибка не меняет статус задачи: она логируется, считается в метрике и публикуется событием.
func (s *pipelineServiceImpl) generateDerivative(ctx context.Context, taskID uuid.UUID, master llm.MasterContent) error {
	log := s.logger.With(zap.Stringer("task_id", taskID))

	task, err := s.tasks.GetByID(ctx, s.db, taskID)
	if err != nil {
		// Без задачи нет ни провайдера, ни владельца для события.
		stageFailuresTotal.WithLabelValues(string(llm.StageDerivative)).Inc()
		log.Error("Derivative generation failed: task not loaded", zap.Error(err))
		return err
	}

	provider, err := s.providers.Resolve(ctx, deref(task.Provider))
	if err != nil {
		s.failDerivative(task, s.providers.ResolveName(deref(task.Provider)), err)
		return err
	}

	result, err := provider.GenerateDerivativeContent(ctx, master)
	if err != nil {
		s.failDerivative(task, provider.Name(), err)
		return err
	}

	rows, err := derivativeRows(taskID, result)
	if err != nil {
		s.failDerivative(task, provider.Name(), err)
		return err
	}

	var updated *models.Task
	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx database.DBTX) error {
		existing, err := s.contents.ListByTaskAndTypes(ctx, tx, taskID, models.DerivativeContentTypes)
		if err != nil {
			return fmt.Errorf("failed to check existing derivatives: %w", err)
		}
		if len(existing) > 0 {
			return errDerivativesExist
		}
		for _, row := range rows {
			if _, err := s.contents.Create(ctx, tx, row); err != nil {
				return fmt.Errorf("failed to save %s: %w", row.Type, err)
			}
		}
		updated, err = s.tasks.UpdateStatus(ctx, tx, taskID, models.TaskStatusApproved)
		return err
	})
	if errors.Is(err, errDerivativesExist) {
		log.Warn("Derivative content already exists, skipping insert")
		return nil
	}
	if err != nil {
		s.failDerivative(task, provider.Name(), err)
		return err
	}

	log.Info("Derivative content generated",
		zap.String("provider", provider.Name()),
		zap.Int("thread_posts", len(result.ThreadPosts)),
		zap.Int("micro_posts", len(result.MicroPosts)),
	)
	s.transitioned(updated)
	return nil
}

func (s *pipelineServiceImpl) failDerivative(task *models.Task, provider string, cause error) {
	stageFailuresTotal.WithLabelValues(string(llm.StageDerivative)).Inc()
	s.logger.Error("Derivative generation failed, task status left unchanged",
		zap.Stringer("task_id", task.ID),
		zap.String("status", string(task.Status)),
		zap.String("provider", provider),
		zap.Error(cause),
	)
	s.publish(messaging.GenerationFailed(task, string(llm.StageDerivative), provider, cause))
}

func derivativeRows(taskID uuid.UUID, result *llm.DerivativeContent) ([]models.NewContent, error) {
	threads, err := json.Marshal(result.ThreadPosts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode thread posts: %w", err)
	}
	micro, err := json.Marshal(result.MicroPosts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode micro posts: %w", err)
	}

	translatedTitle := result.Translated.Title
	threadTitle := threadPostsTitle
	microTitle := microPostsTitle
	return []models.NewContent{
		{TaskID: taskID, Type: models.ContentTypeTranslatedDocument, Title: &translatedTitle, Body: result.Translated.Body},
		{TaskID: taskID, Type: models.ContentTypeThreadPosts, Title: &threadTitle, Body: string(threads)},
		{TaskID: taskID, Type: models.ContentTypeMicroPosts, Title: &microTitle, Body: string(micro)},
	}, nil
}
