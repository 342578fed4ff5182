package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bnema/wgate/internal/domain"
)

// MockTemplateCatalog is a mock implementation of out.TemplateCatalog
type MockTemplateCatalog struct {
	mock.Mock
}

func (m *MockTemplateCatalog) Cached(ctx context.Context, storage string) ([]string, error) {
	args := m.Called(ctx, storage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTemplateCatalog) Update(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTemplateCatalog) Available(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTemplateCatalog) Download(ctx context.Context, ref domain.TemplateRef) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}
