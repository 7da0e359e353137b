package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/cookbooks/dashboard/internal/middleware"
	"github.com/pageza/cookbooks/dashboard/internal/service"
	"github.com/pageza/cookbooks/dashboard/internal/types"
)

const (
	// MaxPickerCount is the most recipes the randomizer draws at once
	MaxPickerCount = 21

	pickerCountMessage = "Choose a number between 1 and 21."
)

// pickerView is the randomizer page with the raw count input echoed back
type pickerView struct {
	CountInput string
	Error      string
	Recipes    []types.Recipe
	Cookbooks  types.CookbookMap
}

// DashboardHandler serves the overview, randomizer and cookbook pages
type DashboardHandler struct {
	pageHandler
	recipes service.IRecipeService
}

// NewDashboardHandler creates a new DashboardHandler instance
func NewDashboardHandler(recipes service.IRecipeService, views *Renderer, cookie middleware.SessionCookie, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		pageHandler: newPageHandler(views, cookie, logger),
		recipes:     recipes,
	}
}

// RegisterRoutes registers the dashboard routes on a signed-in group
func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.Home)
	router.GET("/picker", h.Picker)
	router.GET("/cookbooks/:key", h.Cookbook)
}

// Home renders the summary cards and the cookbook list
func (h *DashboardHandler) Home(c *gin.Context) {
	page, err := h.recipes.DashboardPage(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.views.HTML(c, http.StatusOK, "dashboard", "Dashboard", page)
}

// Picker draws count random recipes. Without a count only the form is shown.
func (h *DashboardHandler) Picker(c *gin.Context) {
	view := pickerView{CountInput: "1"}
	count := 0
	status := http.StatusOK

	if raw, ok := c.GetQuery("count"); ok {
		view.CountInput = raw
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxPickerCount {
			view.Error = pickerCountMessage
			status = http.StatusBadRequest
		} else {
			count = n
		}
	}

	page, err := h.recipes.PickerPage(c.Request.Context(), count)
	if err != nil {
		h.fail(c, err)
		return
	}
	view.Recipes = page.Recipes
	view.Cookbooks = page.Cookbooks
	h.views.HTML(c, status, "picker", "Randomizer", view)
}

// Cookbook lists the recipes of a single cookbook
func (h *DashboardHandler) Cookbook(c *gin.Context) {
	page, err := h.recipes.CookbookPage(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.views.HTML(c, http.StatusOK, "cookbook", page.Cookbook.Name, page)
}
