package mocks

import (
	"context"

	"content-pipeline/internal/llm"

	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock type for the llm.Provider type
type MockProvider struct {
	mock.Mock
}

// Name provides a mock function with given fields:
func (_m *MockProvider) Name() string {
	ret := _m.Called()
	return ret.String(0)
}

// Model provides a mock function with given fields:
func (_m *MockProvider) Model() string {
	ret := _m.Called()
	return ret.String(0)
}

// GenerateMasterContent provides a mock function with given fields: ctx, req
func (_m *MockProvider) GenerateMasterContent(ctx context.Context, req llm.MasterRequest) (*llm.MasterContent, error) {
	ret := _m.Called(ctx, req)

	var r0 *llm.MasterContent
	if rf, ok := ret.Get(0).(func(context.Context, llm.MasterRequest) *llm.MasterContent); ok {
		r0 = rf(ctx, req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*llm.MasterContent)
	}

	return r0, ret.Error(1)
}

// GenerateDerivativeContent provides a mock function with given fields: ctx, master
func (_m *MockProvider) GenerateDerivativeContent(ctx context.Context, master llm.MasterContent) (*llm.DerivativeContent, error) {
	ret := _m.Called(ctx, master)

	var r0 *llm.DerivativeContent
	if rf, ok := ret.Get(0).(func(context.Context, llm.MasterContent) *llm.DerivativeContent); ok {
		r0 = rf(ctx, master)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*llm.DerivativeContent)
	}

	return r0, ret.Error(1)
}

// NewMockProvider creates a new instance of MockProvider.
func NewMockProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockProvider {
	m := &MockProvider{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ llm.Provider = (*MockProvider)(nil)
