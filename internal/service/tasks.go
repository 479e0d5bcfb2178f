package service

import (
	"context"
	"fmt"

	"content-pipeline/internal/dispatch"
	"content-pipeline/internal/llm"
	"content-pipeline/internal/messaging"
	"content-pipeline/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *pipelineServiceImpl) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	newTask, err := validateCreateTask(input)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.Create(ctx, s.db, newTask)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	tasksCreatedTotal.Inc()
	s.logger.Info("Task created",
		zap.Stringer("task_id", task.ID),
		zap.Int64("user_id", task.UserID),
		zap.String("provider", s.providers.ResolveName(deref(task.Provider))),
	)
	s.publish(messaging.StatusChanged(task))

	snapshot := *task
	accepted, err := s.dispatcher.Submit(dispatch.Key(task.ID, string(llm.StageMaster)), func(jobCtx context.Context) error {
		return s.generateMaster(jobCtx, &snapshot)
	})
	if err != nil {
		// Генерация не запустится: задача не должна навсегда остаться в processing.
		s.logger.Error("Failed to dispatch master generation", zap.Stringer("task_id", task.ID), zap.Error(err))
		s.failMaster(context.Background(), &snapshot, "", err)
	} else if !accepted {
		duplicateTriggersTotal.WithLabelValues(string(llm.StageMaster)).Inc()
	}

	return task, nil
}

func (s *pipelineServiceImpl) ListTasks(ctx context.Context, userID int64) ([]*models.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *pipelineServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return s.tasks.GetByID(ctx, s.db, id)
}

// UpdateTaskStatus - ручная смена статуса оператором. Статус error выставляет только конвейер.
func (s *pipelineServiceImpl) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	if !status.IsOperatorSettable() {
		return nil, models.NewValidationError("status", fmt.Sprintf("must be one of %s, %s, %s, %s",
			models.TaskStatusProcessing, models.TaskStatusReviewPending, models.TaskStatusApproved, models.TaskStatusCompleted))
	}

	task, err := s.tasks.UpdateStatus(ctx, s.db, id, status)
	if err != nil {
		return nil, err
	}
	s.transitioned(task)
	return task, nil
}

func (s *pipelineServiceImpl) MarkDistributed(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return s.UpdateTaskStatus(ctx, id, models.TaskStatusCompleted)
}

// transitioned пишет лог, метрику и событие после смены статуса.
func (s *pipelineServiceImpl) transitioned(task *models.Task) {
	taskTransitionsTotal.WithLabelValues(string(task.Status)).Inc()
	s.logger.Info("Task status changed", zap.Stringer("task_id", task.ID), zap.String("status", string(task.Status)))
	s.publish(messaging.StatusChanged(task))
}
