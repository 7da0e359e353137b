package service

import (
	"context"

	"github.com/pageza/cookbooks/dashboard/internal/types"
)

// Backend is the data-access surface of the cookbooks API used by the services
type Backend interface {
	FetchCookbooks(ctx context.Context) ([]types.Cookbook, error)
	FetchCookbooksAsMap(ctx context.Context) (types.CookbookMap, error)
	FetchRecipesForCookbook(ctx context.Context, key string) ([]types.Recipe, error)
	FetchFilteredRecipes(ctx context.Context, query string, status types.Status, page int) ([]types.Recipe, error)
	FetchRecipesPages(ctx context.Context, query string) (int, error)
	FetchRecipeByID(ctx context.Context, id string) (*types.Recipe, error)
	FetchUserRecipeByID(ctx context.Context, id string) (*types.UserRecipe, error)
	FetchNRecipes(ctx context.Context, n int) ([]types.Recipe, error)
	FetchCardData(ctx context.Context) (*types.CardData, error)
	UpdateUserRecipe(ctx context.Context, id string, update types.UserRecipeUpdate) (*types.UserRecipe, error)
	Login(ctx context.Context, email, password string) (*types.LoginResponse, error)
}

// ListingInvalidator drops cached recipe listings after a mutation
type ListingInvalidator interface {
	Invalidate(ctx context.Context) error
}

// IRecipeService defines the page data and mutation operations of the dashboard
type IRecipeService interface {
	DashboardPage(ctx context.Context) (*types.DashboardPage, error)
	RecipesPage(ctx context.Context, params types.RecipesQuery) (*types.RecipesPage, error)
	RecipeDetailPage(ctx context.Context, id string) (*types.RecipeDetailPage, error)
	EditRecipePage(ctx context.Context, id string) (*types.EditRecipePage, error)
	PickerPage(ctx context.Context, count int) (*types.PickerPage, error)
	CookbookPage(ctx context.Context, key string) (*types.CookbookPage, error)
	UpdateUserRecipe(ctx context.Context, id string, form types.UserRecipeForm) (*types.FormState, error)
}

// IAuthService defines the interface for session operations
type IAuthService interface {
	Login(ctx context.Context, email, password string) (*types.SessionClaims, error)
	GenerateToken(claims *types.SessionClaims) (string, error)
	ValidateToken(token string) (*types.SessionClaims, error)
}
