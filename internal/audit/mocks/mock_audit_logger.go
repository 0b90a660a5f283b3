package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockAuditLogger struct {
	mock.Mock
}

func (m *MockAuditLogger) Append(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}
