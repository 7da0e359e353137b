package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/pageza/cookbooks/dashboard/internal/types"
)

type cookbooksResponse struct {
	Cookbooks []types.Cookbook `json:"cookbooks"`
}

type recipesResponse struct {
	Recipes []types.Recipe `json:"recipes"`
}

type countResponse struct {
	Count json.Number `json:"count"`
}

// value reads the count, treating a missing or negative count as zero
func (r countResponse) value() (int, error) {
	if r.Count == "" {
		return 0, nil
	}
	n, err := r.Count.Int64()
	if err != nil {
		f, ferr := r.Count.Float64()
		if ferr != nil {
			return 0, fmt.Errorf("invalid count %q: %w", r.Count, err)
		}
		n = int64(f)
	}
	if n < 0 {
		return 0, nil
	}
	return int(n), nil
}

// PageCount returns how many pages of ItemsPerPage hold count items
func PageCount(count int) int {
	if count <= 0 {
		return 0
	}
	return (count + ItemsPerPage - 1) / ItemsPerPage
}

// FetchCookbooks lists every cookbook
func (c *Client) FetchCookbooks(ctx context.Context) ([]types.Cookbook, error) {
	var resp cookbooksResponse
	err := c.do(ctx, call{
		op:      "FetchCookbooks",
		message: "failed to fetch cookbooks",
		method:  http.MethodGet,
		path:    "api/cookbooks",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Cookbooks, nil
}

// FetchCookbooksAsMap lists every cookbook indexed by key
func (c *Client) FetchCookbooksAsMap(ctx context.Context) (types.CookbookMap, error) {
	cookbooks, err := c.FetchCookbooks(ctx)
	if err != nil {
		return nil, err
	}
	return types.NewCookbookMap(cookbooks), nil
}

// FetchRecipesForCookbook lists the recipes of one cookbook
func (c *Client) FetchRecipesForCookbook(ctx context.Context, key string) ([]types.Recipe, error) {
	var resp recipesResponse
	err := c.do(ctx, call{
		op:      "FetchRecipesForCookbook",
		message: "failed to fetch recipes for cookbook: " + key,
		method:  http.MethodGet,
		path:    "api/recipes/" + url.PathEscape(key),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Recipes, nil
}

// FetchFilteredRecipes searches recipes by free text and status. The page is
// only used by the dashboard's own navigation and is not forwarded.
func (c *Client) FetchFilteredRecipes(ctx context.Context, query string, status types.Status, page int) ([]types.Recipe, error) {
	params := url.Values{}
	if query != "" {
		params.Set("query", query)
	}
	if status != "" {
		params.Set("status", string(status))
	}

	var resp recipesResponse
	err := c.do(ctx, call{
		op:      "FetchFilteredRecipes",
		message: "failed to fetch filtered recipes",
		method:  http.MethodGet,
		path:    "api/recipes",
		params:  params,
		auth:    true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Recipes, nil
}

// FetchRecipesPages returns the number of listing pages matching query
func (c *Client) FetchRecipesPages(ctx context.Context, query string) (int, error) {
	const message = "failed to fetch total number of recipes"

	params := url.Values{}
	if query != "" {
		params.Set("query", query)
	}

	var resp countResponse
	err := c.do(ctx, call{
		op:      "FetchRecipesPages",
		message: message,
		method:  http.MethodGet,
		path:    "api/recipes/count",
		params:  params,
	}, &resp)
	if err != nil {
		return 0, err
	}
	count, err := resp.value()
	if err != nil {
		return 0, &Error{Kind: KindFetch, Op: "FetchRecipesPages", Message: message, Err: err}
	}
	return PageCount(count), nil
}

// FetchRecipeByID loads a single recipe
func (c *Client) FetchRecipeByID(ctx context.Context, id string) (*types.Recipe, error) {
	var recipe types.Recipe
	err := c.do(ctx, call{
		op:      "FetchRecipeByID",
		message: "failed to fetch recipe",
		method:  http.MethodGet,
		path:    "api/recipes/recipe/" + url.PathEscape(id),
	}, &recipe)
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// FetchUserRecipeByID loads the signed-in user's record for a recipe
func (c *Client) FetchUserRecipeByID(ctx context.Context, id string) (*types.UserRecipe, error) {
	var userRecipe types.UserRecipe
	err := c.do(ctx, call{
		op:      "FetchUserRecipeByID",
		message: "failed to fetch user recipe",
		method:  http.MethodGet,
		path:    "api/recipes/user/" + url.PathEscape(id),
		auth:    true,
	}, &userRecipe)
	if err != nil {
		return nil, err
	}
	return &userRecipe, nil
}

// FetchNRecipes picks n random recipes
func (c *Client) FetchNRecipes(ctx context.Context, n int) ([]types.Recipe, error) {
	var resp recipesResponse
	err := c.do(ctx, call{
		op:      "FetchNRecipes",
		message: "failed to fetch n random recipes",
		method:  http.MethodGet,
		path:    "api/recipes/random/" + strconv.Itoa(n),
		auth:    true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Recipes, nil
}

// FetchCardData loads the cookbook and recipe totals in parallel
func (c *Client) FetchCardData(ctx context.Context) (*types.CardData, error) {
	const message = "failed to fetch card data"

	var cookbooks, recipes countResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.do(gctx, call{
			op:      "FetchCardData",
			message: message,
			method:  http.MethodGet,
			path:    "api/cookbooks/count",
		}, &cookbooks)
	})
	g.Go(func() error {
		return c.do(gctx, call{
			op:      "FetchCardData",
			message: message,
			method:  http.MethodGet,
			path:    "api/recipes/count",
		}, &recipes)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	numberOfCookbooks, err := cookbooks.value()
	if err != nil {
		return nil, &Error{Kind: KindFetch, Op: "FetchCardData", Message: message, Err: err}
	}
	numberOfRecipes, err := recipes.value()
	if err != nil {
		return nil, &Error{Kind: KindFetch, Op: "FetchCardData", Message: message, Err: err}
	}
	return &types.CardData{
		NumberOfCookbooks: numberOfCookbooks,
		NumberOfRecipes:   numberOfRecipes,
	}, nil
}

// UpdateUserRecipe stores a new status and rating for a user recipe
func (c *Client) UpdateUserRecipe(ctx context.Context, id string, update types.UserRecipeUpdate) (*types.UserRecipe, error) {
	var updated types.UserRecipe
	err := c.do(ctx, call{
		op:      "UpdateUserRecipe",
		message: "failed to update recipe: " + id,
		method:  http.MethodPut,
		path:    "api/recipes/user/" + url.PathEscape(id),
		body:    update,
		auth:    true,
	}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Login exchanges credentials for a backend access token
func (c *Client) Login(ctx context.Context, email, password string) (*types.LoginResponse, error) {
	var resp types.LoginResponse
	err := c.do(ctx, call{
		op:      "Login",
		message: "authentication failed",
		method:  http.MethodPost,
		path:    "api/login",
		body:    types.LoginRequest{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
