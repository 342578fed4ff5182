package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bnema/wgate/internal/boundaries/out"
	"github.com/bnema/wgate/internal/domain"
)

// MockContainerManager is a mock implementation of out.ContainerManager
type MockContainerManager struct {
	mock.Mock
}

// Lifecycle
func (m *MockContainerManager) Status(ctx context.Context, id int) (domain.ContainerStatus, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.ContainerStatus), args.Error(1)
}

func (m *MockContainerManager) Create(ctx context.Context, spec domain.ContainerSpec, template domain.TemplateRef) error {
	args := m.Called(ctx, spec, template)
	return args.Error(0)
}

func (m *MockContainerManager) Start(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContainerManager) Stop(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContainerManager) Destroy(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContainerManager) List(ctx context.Context) ([]domain.ContainerInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ContainerInfo), args.Error(1)
}

// In-container operations
func (m *MockContainerManager) Exec(ctx context.Context, id int, cmd []string) (*out.ExecResult, error) {
	args := m.Called(ctx, id, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*out.ExecResult), args.Error(1)
}

func (m *MockContainerManager) Push(ctx context.Context, id int, hostPath, containerPath string, mode uint32) error {
	args := m.Called(ctx, id, hostPath, containerPath, mode)
	return args.Error(0)
}

func (m *MockContainerManager) WriteFile(ctx context.Context, id int, containerPath string, content []byte, mode uint32) error {
	args := m.Called(ctx, id, containerPath, content, mode)
	return args.Error(0)
}
