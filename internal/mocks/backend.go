package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/cookbooks/dashboard/internal/types"
)

// MockBackend is a mock implementation of the cookbooks backend client
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) FetchCookbooks(ctx context.Context) ([]types.Cookbook, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Cookbook), args.Error(1)
}

func (m *MockBackend) FetchCookbooksAsMap(ctx context.Context) (types.CookbookMap, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(types.CookbookMap), args.Error(1)
}

func (m *MockBackend) FetchRecipesForCookbook(ctx context.Context, key string) ([]types.Recipe, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Recipe), args.Error(1)
}

func (m *MockBackend) FetchFilteredRecipes(ctx context.Context, query string, status types.Status, page int) ([]types.Recipe, error) {
	args := m.Called(ctx, query, status, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Recipe), args.Error(1)
}

func (m *MockBackend) FetchRecipesPages(ctx context.Context, query string) (int, error) {
	args := m.Called(ctx, query)
	return args.Int(0), args.Error(1)
}

func (m *MockBackend) FetchRecipeByID(ctx context.Context, id string) (*types.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Recipe), args.Error(1)
}

func (m *MockBackend) FetchUserRecipeByID(ctx context.Context, id string) (*types.UserRecipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserRecipe), args.Error(1)
}

func (m *MockBackend) FetchNRecipes(ctx context.Context, n int) ([]types.Recipe, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Recipe), args.Error(1)
}

func (m *MockBackend) FetchCardData(ctx context.Context) (*types.CardData, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.CardData), args.Error(1)
}

func (m *MockBackend) UpdateUserRecipe(ctx context.Context, id string, update types.UserRecipeUpdate) (*types.UserRecipe, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserRecipe), args.Error(1)
}

func (m *MockBackend) Login(ctx context.Context, email, password string) (*types.LoginResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.LoginResponse), args.Error(1)
}
