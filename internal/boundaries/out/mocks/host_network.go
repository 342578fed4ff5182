package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bnema/wgate/internal/domain"
)

// MockHostNetwork is a mock implementation of out.HostNetwork
type MockHostNetwork struct {
	mock.Mock
}

func (m *MockHostNetwork) BridgeDefined(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockHostNetwork) WriteBridge(ctx context.Context, bridge domain.BridgeConfig) error {
	args := m.Called(ctx, bridge)
	return args.Error(0)
}

func (m *MockHostNetwork) Activate(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockHostNetwork) BridgeActive(ctx context.Context, bridge domain.BridgeConfig) (bool, error) {
	args := m.Called(ctx, bridge)
	return args.Bool(0), args.Error(1)
}

func (m *MockHostNetwork) EnableForwarding(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
