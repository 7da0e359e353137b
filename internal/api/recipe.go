package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/cookbooks/dashboard/internal/cache"
	"github.com/pageza/cookbooks/dashboard/internal/logging"
	"github.com/pageza/cookbooks/dashboard/internal/middleware"
	"github.com/pageza/cookbooks/dashboard/internal/service"
	"github.com/pageza/cookbooks/dashboard/internal/session"
	"github.com/pageza/cookbooks/dashboard/internal/types"
)

// RecipesPath is the recipe listing, where a successful edit returns to
const RecipesPath = "/dashboard/recipes"

// UpdateErrorMessage is shown when the backend could not store an edit
const UpdateErrorMessage = "Failed to update recipe."

const viewCacheHeader = "X-View-Cache"

// RecipeHandler serves the recipe listing and the per-recipe pages
type RecipeHandler struct {
	pageHandler
	recipes service.IRecipeService
	cache   cache.ViewCache
}

// NewRecipeHandler creates a new RecipeHandler instance. A nil viewCache
// disables listing caching.
func NewRecipeHandler(recipes service.IRecipeService, viewCache cache.ViewCache, views *Renderer, cookie middleware.SessionCookie, logger *zap.Logger) *RecipeHandler {
	if viewCache == nil {
		viewCache = cache.Nop{}
	}
	return &RecipeHandler{
		pageHandler: newPageHandler(views, cookie, logger),
		recipes:     recipes,
		cache:       viewCache,
	}
}

// RegisterRoutes registers the recipe routes on a signed-in group
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id/view", h.GetRecipe)
		recipes.GET("/:id/edit", h.EditRecipe)
		recipes.POST("/:id/edit", h.UpdateRecipe)
	}
}

// parseRecipesQuery reads the listing state from the URL. A missing or
// malformed page means page 1.
func parseRecipesQuery(c *gin.Context) types.RecipesQuery {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return types.RecipesQuery{
		Query:  c.Query("query"),
		Status: types.Status(c.Query("status")),
		Page:   page,
	}
}

// ListRecipes renders one page of the filtered listing, served from the view
// cache when an entry for this user and query exists.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	ctx := c.Request.Context()
	params := parseRecipesQuery(c)

	userID := ""
	if claims := session.FromContext(ctx); claims != nil {
		userID = claims.UserID
	}
	key := h.cache.Key(ctx, userID, pageURL(params, params.Page))
	if key != "" {
		if body, ok := h.cache.Get(ctx, key); ok {
			c.Header(viewCacheHeader, "hit")
			c.Data(http.StatusOK, "text/html; charset=utf-8", body)
			return
		}
	}

	page, err := h.recipes.RecipesPage(ctx, params)
	if err != nil {
		h.fail(c, err)
		return
	}

	body, err := h.views.Execute("recipes", h.views.view(c, "Recipes", page))
	if err != nil {
		logging.FromContext(c, h.logger).Error("template rendering failed", zap.String("page", "recipes"), zap.Error(err))
		h.views.Error(c, http.StatusInternalServerError)
		return
	}
	if key != "" && !page.Degraded {
		h.cache.Set(ctx, key, body)
		c.Header(viewCacheHeader, "miss")
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

// GetRecipe renders a single recipe
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	page, err := h.recipes.RecipeDetailPage(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.views.HTML(c, http.StatusOK, "recipe_view", page.Recipe.NameOfDish, page)
}

// EditRecipe renders the status/rating form
func (h *RecipeHandler) EditRecipe(c *gin.Context) {
	page, err := h.recipes.EditRecipePage(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.views.HTML(c, http.StatusOK, "recipe_edit", "Edit Recipe", page)
}

// UpdateRecipe stores the submitted status and rating. A valid submission
// returns to the listing, a rejected one re-renders the form with its errors.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var form types.UserRecipeForm
	if err := c.ShouldBind(&form); err != nil {
		h.views.Error(c, http.StatusBadRequest)
		return
	}

	state, err := h.recipes.UpdateUserRecipe(ctx, id, form)
	status := http.StatusUnprocessableEntity
	switch {
	case service.IsUnauthorized(err):
		h.signOut(c)
		return
	case err != nil:
		logging.FromContext(c, h.logger).Error("failed to update recipe", zap.String("recipe_id", id), zap.Error(err))
		state = &types.FormState{Message: UpdateErrorMessage}
		status = http.StatusBadGateway
	case state == nil:
		c.Redirect(http.StatusSeeOther, RecipesPath)
		return
	}

	page, err := h.recipes.EditRecipePage(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	page.Form = form
	page.State = state
	h.views.HTML(c, status, "recipe_edit", "Edit Recipe", page)
}
