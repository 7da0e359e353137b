package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/cookbooks/dashboard/internal/client"
	"github.com/pageza/cookbooks/dashboard/internal/types"
	"github.com/pageza/cookbooks/dashboard/internal/validation"
)

const (
	// UpdateFailedMessage accompanies a rejected status/rating form
	UpdateFailedMessage = "Missing Fields. Failed to Update Recipe."

	maxRating = 10
)

// RecipeService composes the data each dashboard page needs
type RecipeService struct {
	backend   Backend
	listings  ListingInvalidator
	validator *validation.Validator
	logger    *zap.Logger
}

// NewRecipeService creates a new RecipeService instance. listings may be nil.
func NewRecipeService(backend Backend, listings ListingInvalidator, logger *zap.Logger) *RecipeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipeService{
		backend:  backend,
		listings: listings,
		validator: validation.New(map[string]string{
			"status.required": "Please select a recipe status.",
			"status.oneof":    "Please select a recipe status.",
			"rating.required": "Please enter a rating.",
			"rating.numeric":  "Rating must be a number.",
		}),
		logger: logger,
	}
}

// DashboardPage loads the overview counts and the cookbook list
func (s *RecipeService) DashboardPage(ctx context.Context) (*types.DashboardPage, error) {
	var (
		cards     *types.CardData
		cookbooks []types.Cookbook
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cards, err = s.backend.FetchCardData(gctx)
		return err
	})
	g.Go(func() (err error) {
		cookbooks, err = s.backend.FetchCookbooks(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &types.DashboardPage{Cards: *cards, Cookbooks: cookbooks}, nil
}

// RecipesPage loads one page of the filtered listing. Failures other than a
// rejected session leave the listing empty, are logged and mark the page
// as degraded.
func (s *RecipeService) RecipesPage(ctx context.Context, params types.RecipesQuery) (*types.RecipesPage, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if !params.Status.Valid() {
		params.Status = ""
	}

	page := &types.RecipesPage{RecipesQuery: params, Cookbooks: types.CookbookMap{}}

	var (
		totalPages             int
		cookbooks              types.CookbookMap
		countFailed, mapFailed bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.backend.FetchRecipesPages(gctx, params.Query)
		if err != nil {
			countFailed = true
			return s.suppress(err, "recipe count")
		}
		totalPages = n
		return nil
	})
	g.Go(func() error {
		m, err := s.backend.FetchCookbooksAsMap(gctx)
		if err != nil {
			mapFailed = true
			return s.suppress(err, "cookbooks")
		}
		cookbooks = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	page.TotalPages = totalPages
	page.Degraded = countFailed || mapFailed
	if cookbooks != nil {
		page.Cookbooks = cookbooks
	}

	recipes, err := s.backend.FetchFilteredRecipes(ctx, params.Query, params.Status, params.Page)
	if err != nil {
		if err := s.suppress(err, "filtered recipes"); err != nil {
			return nil, err
		}
		page.Degraded = true
		return page, nil
	}
	page.Recipes = recipes
	return page, nil
}

// suppress drops a listing failure unless it is a rejected session
func (s *RecipeService) suppress(err error, what string) error {
	if client.IsUnauthorized(err) {
		return err
	}
	s.logger.Error("recipe listing degraded", zap.String("source", what), zap.Error(err))
	return nil
}

// RecipeDetailPage loads a recipe, its cookbook and the user's record for it
func (s *RecipeService) RecipeDetailPage(ctx context.Context, id string) (*types.RecipeDetailPage, error) {
	var (
		recipe     *types.Recipe
		cookbooks  types.CookbookMap
		userRecipe *types.UserRecipe
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		recipe, err = s.backend.FetchRecipeByID(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		cookbooks, err = s.backend.FetchCookbooksAsMap(gctx)
		return err
	})
	g.Go(func() (err error) {
		userRecipe, err = s.fetchUserRecipe(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &types.RecipeDetailPage{
		Recipe:     *recipe,
		Cookbook:   cookbooks.Lookup(recipe.CookbookKey),
		UserRecipe: userRecipe,
	}, nil
}

// EditRecipePage loads what the status/rating form needs, prefilled from the
// user's current record
func (s *RecipeService) EditRecipePage(ctx context.Context, id string) (*types.EditRecipePage, error) {
	var (
		recipe     *types.Recipe
		cookbooks  []types.Cookbook
		userRecipe *types.UserRecipe
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		recipe, err = s.backend.FetchRecipeByID(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		cookbooks, err = s.backend.FetchCookbooks(gctx)
		return err
	})
	g.Go(func() (err error) {
		userRecipe, err = s.fetchUserRecipe(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	form := types.UserRecipeForm{Status: string(types.StatusUncooked), Rating: "0"}
	if userRecipe != nil {
		if userRecipe.Status.Valid() {
			form.Status = string(userRecipe.Status)
		}
		form.Rating = strconv.FormatFloat(userRecipe.Rating, 'f', -1, 64)
	}

	return &types.EditRecipePage{
		RecipeDetailPage: types.RecipeDetailPage{
			Recipe:     *recipe,
			Cookbook:   types.NewCookbookMap(cookbooks).Lookup(recipe.CookbookKey),
			UserRecipe: userRecipe,
		},
		Cookbooks: cookbooks,
		Form:      form,
	}, nil
}

// fetchUserRecipe treats a missing record as "not cooked yet"
func (s *RecipeService) fetchUserRecipe(ctx context.Context, id string) (*types.UserRecipe, error) {
	userRecipe, err := s.backend.FetchUserRecipeByID(ctx, id)
	if client.IsNotFound(err) {
		return nil, nil
	}
	return userRecipe, err
}

// PickerPage loads the cookbooks and, when count is positive, count random recipes
func (s *RecipeService) PickerPage(ctx context.Context, count int) (*types.PickerPage, error) {
	cookbooks, err := s.backend.FetchCookbooksAsMap(ctx)
	if err != nil {
		return nil, err
	}

	page := &types.PickerPage{Count: count, Cookbooks: cookbooks}
	if count <= 0 {
		return page, nil
	}

	recipes, err := s.backend.FetchNRecipes(ctx, count)
	if err != nil {
		return nil, err
	}
	page.Recipes = recipes
	return page, nil
}

// CookbookPage loads one cookbook and its recipes
func (s *RecipeService) CookbookPage(ctx context.Context, key string) (*types.CookbookPage, error) {
	var (
		cookbooks types.CookbookMap
		recipes   []types.Recipe
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cookbooks, err = s.backend.FetchCookbooksAsMap(gctx)
		return err
	})
	g.Go(func() (err error) {
		recipes, err = s.backend.FetchRecipesForCookbook(gctx, key)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cookbook, ok := cookbooks[key]
	if !ok {
		return nil, fmt.Errorf("cookbook %q: %w", key, client.ErrNotFound)
	}
	return &types.CookbookPage{Cookbook: cookbook, Recipes: recipes}, nil
}

// UpdateUserRecipe validates the submitted form and stores it. A rejected
// form is returned as a FormState and nothing is sent to the backend. On
// success both return values are nil.
func (s *RecipeService) UpdateUserRecipe(ctx context.Context, id string, form types.UserRecipeForm) (*types.FormState, error) {
	update, state, err := s.validateUpdate(form)
	if err != nil {
		return nil, err
	}
	if state != nil {
		return state, nil
	}

	if _, err := s.backend.UpdateUserRecipe(ctx, id, *update); err != nil {
		return nil, err
	}
	s.logger.Info("user recipe updated",
		zap.String("recipe_id", id),
		zap.String("status", string(update.Status)),
		zap.Float64("rating", update.Rating),
	)

	if s.listings != nil {
		if err := s.listings.Invalidate(ctx); err != nil {
			s.logger.Warn("failed to invalidate recipe listings", zap.Error(err))
		}
	}
	return nil, nil
}

func (s *RecipeService) validateUpdate(form types.UserRecipeForm) (*types.UserRecipeUpdate, *types.FormState, error) {
	fields, err := s.validator.Validate(form)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to validate form: %w", err)
	}
	if fields == nil {
		fields = validation.FieldErrors{}
	}

	var rating float64
	if _, bad := fields["rating"]; !bad {
		rating, err = strconv.ParseFloat(form.Rating, 64)
		switch {
		case err != nil:
			fields.Add("rating", "Rating must be a number.")
		case rating < 0 || rating > maxRating:
			fields.Add("rating", fmt.Sprintf("Rating must be between 0 and %d.", maxRating))
		}
	}

	if len(fields) > 0 {
		return nil, &types.FormState{Errors: fields, Message: UpdateFailedMessage}, nil
	}
	return &types.UserRecipeUpdate{Status: types.Status(form.Status), Rating: rating}, nil, nil
}

// IsUnauthorized reports whether err means the backend rejected the session
func IsUnauthorized(err error) bool {
	return client.IsUnauthorized(err)
}

// IsNotFound reports whether err means the requested record does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, client.ErrNotFound)
}
