package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/cookbooks/dashboard/internal/types"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

// DashboardPage mocks the DashboardPage method
func (m *MockRecipeService) DashboardPage(ctx context.Context) (*types.DashboardPage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.DashboardPage), args.Error(1)
}

// RecipesPage mocks the RecipesPage method
func (m *MockRecipeService) RecipesPage(ctx context.Context, params types.RecipesQuery) (*types.RecipesPage, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipesPage), args.Error(1)
}

// RecipeDetailPage mocks the RecipeDetailPage method
func (m *MockRecipeService) RecipeDetailPage(ctx context.Context, id string) (*types.RecipeDetailPage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeDetailPage), args.Error(1)
}

// EditRecipePage mocks the EditRecipePage method
func (m *MockRecipeService) EditRecipePage(ctx context.Context, id string) (*types.EditRecipePage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.EditRecipePage), args.Error(1)
}

// PickerPage mocks the PickerPage method
func (m *MockRecipeService) PickerPage(ctx context.Context, count int) (*types.PickerPage, error) {
	args := m.Called(ctx, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PickerPage), args.Error(1)
}

// CookbookPage mocks the CookbookPage method
func (m *MockRecipeService) CookbookPage(ctx context.Context, key string) (*types.CookbookPage, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.CookbookPage), args.Error(1)
}

// UpdateUserRecipe mocks the UpdateUserRecipe method
func (m *MockRecipeService) UpdateUserRecipe(ctx context.Context, id string, form types.UserRecipeForm) (*types.FormState, error) {
	args := m.Called(ctx, id, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FormState), args.Error(1)
}
