package mocks

import (
	"context"

	"content-pipeline/internal/models"
	"content-pipeline/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockPipelineService is a mock type for the service.PipelineService type
type MockPipelineService struct {
	mock.Mock
}

var _ service.PipelineService = (*MockPipelineService)(nil)

func taskOrNil(v any) *models.Task {
	if v == nil {
		return nil
	}
	return v.(*models.Task)
}

func contentOrNil(v any) *models.Content {
	if v == nil {
		return nil
	}
	return v.(*models.Content)
}

// CreateTask provides a mock function with given fields: ctx, input
func (_m *MockPipelineService) CreateTask(ctx context.Context, input service.CreateTaskInput) (*models.Task, error) {
	ret := _m.Called(ctx, input)
	return taskOrNil(ret.Get(0)), ret.Error(1)
}

// ListTasks provides a mock function with given fields: ctx, userID
func (_m *MockPipelineService) ListTasks(ctx context.Context, userID int64) ([]*models.Task, error) {
	ret := _m.Called(ctx, userID)
	var r0 []*models.Task
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Task)
	}
	return r0, ret.Error(1)
}

// GetTask provides a mock function with given fields: ctx, id
func (_m *MockPipelineService) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	ret := _m.Called(ctx, id)
	return taskOrNil(ret.Get(0)), ret.Error(1)
}

// UpdateTaskStatus provides a mock function with given fields: ctx, id, status
func (_m *MockPipelineService) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	ret := _m.Called(ctx, id, status)
	return taskOrNil(ret.Get(0)), ret.Error(1)
}

// MarkDistributed provides a mock function with given fields: ctx, id
func (_m *MockPipelineService) MarkDistributed(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	ret := _m.Called(ctx, id)
	return taskOrNil(ret.Get(0)), ret.Error(1)
}

// ListContent provides a mock function with given fields: ctx, taskID
func (_m *MockPipelineService) ListContent(ctx context.Context, taskID uuid.UUID) ([]*models.Content, error) {
	ret := _m.Called(ctx, taskID)
	var r0 []*models.Content
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Content)
	}
	return r0, ret.Error(1)
}

// ApproveContent provides a mock function with given fields: ctx, id, body
func (_m *MockPipelineService) ApproveContent(ctx context.Context, id uuid.UUID, body string) (*models.Content, error) {
	ret := _m.Called(ctx, id, body)
	return contentOrNil(ret.Get(0)), ret.Error(1)
}

// UpdateContent provides a mock function with given fields: ctx, id, patch
func (_m *MockPipelineService) UpdateContent(ctx context.Context, id uuid.UUID, patch models.ContentPatch) (*models.Content, error) {
	ret := _m.Called(ctx, id, patch)
	return contentOrNil(ret.Get(0)), ret.Error(1)
}

// NewMockPipelineService creates a new instance of MockPipelineService.
func NewMockPipelineService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPipelineService {
	m := &MockPipelineService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
