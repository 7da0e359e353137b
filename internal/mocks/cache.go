package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockViewCache is a mock implementation of the rendered listing cache
type MockViewCache struct {
	mock.Mock
}

func (m *MockViewCache) Key(ctx context.Context, userID, query string) string {
	args := m.Called(ctx, userID, query)
	return args.String(0)
}

func (m *MockViewCache) Get(ctx context.Context, key string) ([]byte, bool) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]byte), args.Bool(1)
}

func (m *MockViewCache) Set(ctx context.Context, key string, page []byte) {
	m.Called(ctx, key, page)
}

func (m *MockViewCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
