package mocks

import (
	"context"

	"content-pipeline/internal/llm"

	"github.com/stretchr/testify/mock"
)

// MockCompleter is a mock type for the llm.Completer type
type MockCompleter struct {
	mock.Mock
}

// CompleteJSON provides a mock function with given fields: ctx, req
func (_m *MockCompleter) CompleteJSON(ctx context.Context, req llm.CompletionRequest) (string, llm.Usage, error) {
	ret := _m.Called(ctx, req)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, llm.CompletionRequest) string); ok {
		r0 = rf(ctx, req)
	} else {
		r0 = ret.String(0)
	}

	var r1 llm.Usage
	if rf, ok := ret.Get(1).(func(context.Context, llm.CompletionRequest) llm.Usage); ok {
		r1 = rf(ctx, req)
	} else if ret.Get(1) != nil {
		r1 = ret.Get(1).(llm.Usage)
	}

	var r2 error
	if rf, ok := ret.Get(2).(func(context.Context, llm.CompletionRequest) error); ok {
		r2 = rf(ctx, req)
	} else {
		r2 = ret.Error(2)
	}

	return r0, r1, r2
}

// NewMockCompleter creates a new instance of MockCompleter. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockCompleter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCompleter {
	m := &MockCompleter{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ llm.Completer = (*MockCompleter)(nil)
