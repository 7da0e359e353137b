// Package testhelpers provides an in-memory cookbooks API for end-to-end tests.
package testhelpers

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/cookbooks/dashboard/internal/types"
)

// Password is the password of every seeded user
const Password = "secret1"

// Seeded fixtures
var (
	TestUser = types.User{ID: "u1", Email: "cook@example.com", FirstName: "Kevin"}

	Cookbooks = []types.Cookbook{
		{Key: "ck", Name: "Cook Book", Author: "Ann Author"},
		{Key: "bb", Name: "Bake Book", Author: "Ben Baker"},
	}

	Recipes = []types.Recipe{
		{
			ID:          "r1",
			NameOfDish:  "Egg Salad",
			ServingSize: "4",
			PageNumber:  12,
			CookbookKey: "ck",
			Ingredients: types.IngredientList{Dairy: []string{"6 eggs"}, Pantry: []string{"mayonnaise"}},
			Instructions: []types.InstructionStep{
				{Step: "Boil", Details: []string{"Boil the eggs for 10 minutes."}},
				{Step: "Mix", Details: []string{"Chop the eggs.", "Fold in the mayonnaise."}},
			},
		},
		{ID: "r2", NameOfDish: "Banana Bread", ServingSize: "8", PageNumber: 40, CookbookKey: "bb"},
		{ID: "r3", NameOfDish: "Egg Fried Rice", ServingSize: "2", PageNumber: 58, CookbookKey: "ck"},
	}
)

// FakeBackend serves the cookbooks API from memory. TestUser has cooked
// Banana Bread and rated it 9.
type FakeBackend struct {
	Server *httptest.Server

	mu          sync.Mutex
	tokens      map[string]string
	userRecipes map[string]map[string]types.UserRecipe
	requests    map[string]int
}

// NewFakeBackend starts the fake API; it is closed when the test ends
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := types.Timestamp{Time: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	fb := &FakeBackend{
		tokens: make(map[string]string),
		userRecipes: map[string]map[string]types.UserRecipe{
			TestUser.ID: {
				"r2": {
					ID:          uuid.NewString(),
					CookbookKey: "bb",
					RecipeID:    "r2",
					UserID:      TestUser.ID,
					Status:      types.StatusCooked,
					Rating:      9,
					CreatedAt:   now,
					UpdatedAt:   now,
				},
			},
		},
		requests: make(map[string]int),
	}

	router := gin.New()
	router.Use(fb.record)
	api := router.Group("/api")
	{
		api.POST("/login", fb.login)
		api.GET("/cookbooks", fb.listCookbooks)
		api.GET("/cookbooks/count", fb.countCookbooks)
		api.GET("/recipes", fb.requireToken, fb.filterRecipes)
		api.GET("/recipes/count", fb.countRecipes)
		api.GET("/recipes/recipe/:id", fb.getRecipe)
		api.GET("/recipes/random/:n", fb.requireToken, fb.randomRecipes)
		api.GET("/recipes/user/:id", fb.requireToken, fb.getUserRecipe)
		api.PUT("/recipes/user/:id", fb.requireToken, fb.putUserRecipe)
		api.GET("/recipes/:key", fb.cookbookRecipes)
	}

	fb.Server = httptest.NewServer(router)
	t.Cleanup(fb.Server.Close)
	return fb
}

// URL is the base URL of the fake API
func (fb *FakeBackend) URL() string {
	return fb.Server.URL
}

// RevokeTokens invalidates every issued access token
func (fb *FakeBackend) RevokeTokens() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.tokens = make(map[string]string)
}

// UserRecipe returns the stored record of userID for recipeID
func (fb *FakeBackend) UserRecipe(userID, recipeID string) (types.UserRecipe, bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	ur, ok := fb.userRecipes[userID][recipeID]
	return ur, ok
}

// Requests counts the calls made to route, e.g. "PUT /api/recipes/user/:id"
func (fb *FakeBackend) Requests(route string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.requests[route]
}

func (fb *FakeBackend) record(c *gin.Context) {
	c.Next()
	fb.mu.Lock()
	fb.requests[c.Request.Method+" "+c.FullPath()]++
	fb.mu.Unlock()
}

func (fb *FakeBackend) login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid request body"})
		return
	}
	if req.Email != TestUser.Email || req.Password != Password {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Invalid credentials"})
		return
	}

	token := uuid.NewString()
	fb.mu.Lock()
	fb.tokens[token] = TestUser.ID
	fb.mu.Unlock()
	c.JSON(http.StatusOK, types.LoginResponse{AccessToken: token, User: TestUser})
}

// requireToken resolves the bearer token to a user id
func (fb *FakeBackend) requireToken(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	fb.mu.Lock()
	userID, ok := fb.tokens[token]
	fb.mu.Unlock()
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
		return
	}
	c.Set("user_id", userID)
	c.Next()
}

func (fb *FakeBackend) listCookbooks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cookbooks": Cookbooks})
}

func (fb *FakeBackend) countCookbooks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": len(Cookbooks)})
}

func matches(recipe types.Recipe, query string) bool {
	return query == "" || strings.Contains(strings.ToLower(recipe.NameOfDish), strings.ToLower(query))
}

// withUserRecipe embeds the user's record the way the listing endpoints do
func (fb *FakeBackend) withUserRecipe(userID string, recipe types.Recipe) types.Recipe {
	if ur, ok := fb.userRecipes[userID][recipe.ID]; ok {
		recipe.UserRecipe = &ur
	}
	return recipe
}

func (fb *FakeBackend) filterRecipes(c *gin.Context) {
	userID := c.GetString("user_id")
	query := c.Query("query")
	status := types.Status(c.Query("status"))

	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := []types.Recipe{}
	for _, recipe := range Recipes {
		recipe = fb.withUserRecipe(userID, recipe)
		if !matches(recipe, query) || (status != "" && recipe.Status() != status) {
			continue
		}
		out = append(out, recipe)
	}
	c.JSON(http.StatusOK, gin.H{"recipes": out})
}

func (fb *FakeBackend) countRecipes(c *gin.Context) {
	count := 0
	for _, recipe := range Recipes {
		if matches(recipe, c.Query("query")) {
			count++
		}
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func findRecipe(id string) (types.Recipe, bool) {
	for _, recipe := range Recipes {
		if recipe.ID == id {
			return recipe, true
		}
	}
	return types.Recipe{}, false
}

func (fb *FakeBackend) getRecipe(c *gin.Context) {
	recipe, ok := findRecipe(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"msg": "Recipe not found"})
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (fb *FakeBackend) randomRecipes(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": fmt.Sprintf("invalid count %q", c.Param("n"))})
		return
	}
	userID := c.GetString("user_id")

	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]types.Recipe, 0, n)
	for _, i := range rand.Perm(len(Recipes))[:min(n, len(Recipes))] {
		out = append(out, fb.withUserRecipe(userID, Recipes[i]))
	}
	c.JSON(http.StatusOK, gin.H{"recipes": out})
}

func (fb *FakeBackend) getUserRecipe(c *gin.Context) {
	ur, ok := fb.UserRecipe(c.GetString("user_id"), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"msg": "User recipe not found"})
		return
	}
	c.JSON(http.StatusOK, ur)
}

func (fb *FakeBackend) putUserRecipe(c *gin.Context) {
	recipe, ok := findRecipe(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"msg": "Recipe not found"})
		return
	}
	var update types.UserRecipeUpdate
	if err := c.ShouldBindJSON(&update); err != nil || !update.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid user recipe"})
		return
	}

	userID := c.GetString("user_id")
	now := types.Timestamp{Time: time.Now().UTC()}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.userRecipes[userID] == nil {
		fb.userRecipes[userID] = make(map[string]types.UserRecipe)
	}
	ur, ok := fb.userRecipes[userID][recipe.ID]
	if !ok {
		ur = types.UserRecipe{
			ID:          uuid.NewString(),
			CookbookKey: recipe.CookbookKey,
			RecipeID:    recipe.ID,
			UserID:      userID,
			CreatedAt:   now,
		}
	}
	ur.Status = update.Status
	ur.Rating = update.Rating
	ur.UpdatedAt = now
	fb.userRecipes[userID][recipe.ID] = ur
	c.JSON(http.StatusOK, ur)
}

func (fb *FakeBackend) cookbookRecipes(c *gin.Context) {
	key := c.Param("key")
	out := []types.Recipe{}
	for _, recipe := range Recipes {
		if recipe.CookbookKey == key {
			out = append(out, recipe)
		}
	}
	c.JSON(http.StatusOK, gin.H{"recipes": out})
}
