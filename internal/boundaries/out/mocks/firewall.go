package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bnema/wgate/internal/boundaries/out"
	"github.com/bnema/wgate/internal/domain"
)

// MockFirewall is a mock implementation of out.Firewall
type MockFirewall struct {
	mock.Mock
}

func (m *MockFirewall) Exists(ctx context.Context, rule domain.FirewallRule) (bool, error) {
	args := m.Called(ctx, rule)
	return args.Bool(0), args.Error(1)
}

func (m *MockFirewall) Append(ctx context.Context, rule domain.FirewallRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockFirewall) Delete(ctx context.Context, rule domain.FirewallRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockFirewall) List(ctx context.Context, table, chain string) ([]domain.FirewallRule, error) {
	args := m.Called(ctx, table, chain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FirewallRule), args.Error(1)
}

func (m *MockFirewall) Persist(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockFirewallProvider is a mock implementation of out.FirewallProvider
type MockFirewallProvider struct {
	mock.Mock
}

func (m *MockFirewallProvider) Host() out.Firewall {
	args := m.Called()
	return args.Get(0).(out.Firewall)
}

func (m *MockFirewallProvider) Container(id int) out.Firewall {
	args := m.Called(id)
	return args.Get(0).(out.Firewall)
}
