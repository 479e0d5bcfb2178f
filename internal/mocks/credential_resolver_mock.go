package mocks

import (
	"context"

	"content-pipeline/internal/llm"

	"github.com/stretchr/testify/mock"
)

// MockCredentialResolver is a mock type for the llm.CredentialResolver type
type MockCredentialResolver struct {
	mock.Mock
}

// Resolve provides a mock function with given fields: ctx, provider
func (_m *MockCredentialResolver) Resolve(ctx context.Context, provider string) (string, bool, error) {
	ret := _m.Called(ctx, provider)
	return ret.String(0), ret.Bool(1), ret.Error(2)
}

// NewMockCredentialResolver creates a new instance of MockCredentialResolver.
func NewMockCredentialResolver(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCredentialResolver {
	m := &MockCredentialResolver{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ llm.CredentialResolver = (*MockCredentialResolver)(nil)
