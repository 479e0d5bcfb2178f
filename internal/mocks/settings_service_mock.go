package mocks

import (
	"context"

	"content-pipeline/internal/models"
	"content-pipeline/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockSettingsService is a mock type for the service.SettingsService type
type MockSettingsService struct {
	mock.Mock
}

var _ service.SettingsService = (*MockSettingsService)(nil)

// ListKeys provides a mock function with given fields: ctx
func (_m *MockSettingsService) ListKeys(ctx context.Context) ([]models.ProviderKeyStatus, error) {
	ret := _m.Called(ctx)
	var r0 []models.ProviderKeyStatus
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.ProviderKeyStatus)
	}
	return r0, ret.Error(1)
}

// SaveKey provides a mock function with given fields: ctx, provider, apiKey
func (_m *MockSettingsService) SaveKey(ctx context.Context, provider, apiKey string) error {
	ret := _m.Called(ctx, provider, apiKey)
	return ret.Error(0)
}

// DeleteKey provides a mock function with given fields: ctx, provider
func (_m *MockSettingsService) DeleteKey(ctx context.Context, provider string) error {
	ret := _m.Called(ctx, provider)
	return ret.Error(0)
}

// ListProviders provides a mock function with given fields:
func (_m *MockSettingsService) ListProviders() []models.ProviderInfo {
	ret := _m.Called()
	var r0 []models.ProviderInfo
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.ProviderInfo)
	}
	return r0
}

// NewMockSettingsService creates a new instance of MockSettingsService.
func NewMockSettingsService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSettingsService {
	m := &MockSettingsService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
