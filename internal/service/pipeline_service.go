// Package service содержит бизнес-логику конвейера: задачи, контент и двухэтапную генерацию.
package service

import (
	"context"
	"time"

	"content-pipeline/internal/database"
	"content-pipeline/internal/dispatch"
	"content-pipeline/internal/llm"
	"content-pipeline/internal/messaging"
	"content-pipeline/internal/models"
	"content-pipeline/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PipelineService определяет операции над задачами и контентом.
type PipelineService interface {
	// CreateTask сохраняет задачу и запускает генерацию основной статьи в фоне.
	CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error)
	ListTasks(ctx context.Context, userID int64) ([]*models.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, id uuid.UUID, status models.TaskStatus) (*models.Task, error)
	MarkDistributed(ctx context.Context, id uuid.UUID) (*models.Task, error)

	ListContent(ctx context.Context, taskID uuid.UUID) ([]*models.Content, error)
	// ApproveContent утверждает контент; для основной статьи запускает производную генерацию.
	ApproveContent(ctx context.Context, id uuid.UUID, body string) (*models.Content, error)
	UpdateContent(ctx context.Context, id uuid.UUID, patch models.ContentPatch) (*models.Content, error)
}

// ProviderResolver выбирает LLM-провайдера по имени. Реализуется llm.Factory.
type ProviderResolver interface {
	Resolve(ctx context.Context, explicit string) (llm.Provider, error)
	ResolveName(explicit string) string
}

// JobDispatcher запускает фоновые задания. Реализуется dispatch.Dispatcher.
type JobDispatcher interface {
	Submit(key string, job dispatch.JobFunc) (bool, error)
}

// Transactor выполняет функцию в транзакции.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx database.DBTX) error) error
}

// CreateTaskInput - данные новой задачи от пользователя.
type CreateTaskInput struct {
	UserID       int64
	Topic        string
	SourceURL    string
	SourceFile   string
	SourceText   string
	Comparison   string
	Requirements string
	Provider     string
}

const eventPublishTimeout = 5 * time.Second

type pipelineServiceImpl struct {
	db         database.DBTX
	tx         Transactor
	tasks      repository.TaskRepository
	contents   repository.ContentRepository
	providers  ProviderResolver
	dispatcher JobDispatcher
	events     messaging.EventPublisher
	logger     *zap.Logger
}

// Deps - зависимости PipelineService.
type Deps struct {
	DB         database.DBTX
	Tx         Transactor
	Tasks      repository.TaskRepository
	Contents   repository.ContentRepository
	Providers  ProviderResolver
	Dispatcher JobDispatcher
	Events     messaging.EventPublisher
}

func NewPipelineService(deps Deps, logger *zap.Logger) PipelineService {
	events := deps.Events
	if events == nil {
		events = messaging.NewLogPublisher(logger)
	}
	return &pipelineServiceImpl{
		db:         deps.DB,
		tx:         deps.Tx,
		tasks:      deps.Tasks,
		contents:   deps.Contents,
		providers:  deps.Providers,
		dispatcher: deps.Dispatcher,
		events:     events,
		logger:     logger.Named("PipelineService"),
	}
}

// publish отправляет событие без привязки к контексту запроса. Ошибка только логируется.
func (s *pipelineServiceImpl) publish(event messaging.TaskEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
	defer cancel()
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish task event",
			zap.String("type", string(event.Type)),
			zap.Stringer("task_id", event.TaskID),
			zap.Error(err),
		)
	}
}
