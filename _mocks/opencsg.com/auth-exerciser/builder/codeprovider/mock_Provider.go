// Code generated manually to mirror mockery patterns. DO NOT EDIT.

package codeprovider

import (
	context "context"

	mock "github.com/stretchr/testify/mock"
)

// MockProvider is a mock for Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) ObtainCode(ctx context.Context, email string) (string, error) {
	ret := m.Called(ctx, email)
	return ret.String(0), ret.Error(1)
}

// NewMockProvider creates a new instance of MockProvider.
func NewMockProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockProvider {
	mockObj := &MockProvider{}
	mockObj.Mock.Test(t)

	t.Cleanup(func() { mockObj.AssertExpectations(t) })

	return mockObj
}
