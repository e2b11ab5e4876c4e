// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Acclerate/BiliNote/internal/types"
)

// MockChatCompleter is a mock implementation of types.ChatCompleter
type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) ChatCompletion(ctx context.Context, req types.ChatRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockTaskSubmitter is a mock implementation of types.TaskSubmitter
type MockTaskSubmitter struct {
	mock.Mock
}

func (m *MockTaskSubmitter) SubmitNoteTask(payload types.NoteTaskPayload) error {
	args := m.Called(payload)
	return args.Error(0)
}
