package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/cookbooks/dashboard/internal/api"
	"github.com/pageza/cookbooks/dashboard/internal/logging"
	"github.com/pageza/cookbooks/dashboard/internal/middleware"
)

// Handlers are the page handlers mounted by SetupRouter
type Handlers struct {
	Auth      *api.AuthHandler
	Dashboard *api.DashboardHandler
	Recipes   *api.RecipeHandler
}

// Options configures the middleware stack
type Options struct {
	Sessions    middleware.SessionValidator
	Cookie      middleware.SessionCookie
	Views       *api.Renderer
	CORSOrigins []string
	Logger      *zap.Logger
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	router.Use(logging.RequestID())
	router.Use(logging.Middleware(logger))
	router.Use(middleware.Recovery(logger, opts.Views.Error))
	router.Use(middleware.CORS(opts.CORSOrigins))
	router.Use(middleware.Session(opts.Sessions, opts.Cookie, logger))

	// Health check endpoints (no session required)
	api.RegisterHealthRoutes(router)

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, middleware.HomePath)
	})

	h.Auth.RegisterRoutes(router.Group(""))

	// Signed-in routes
	dashboard := router.Group(middleware.HomePath)
	dashboard.Use(middleware.RequireSession())
	{
		h.Dashboard.RegisterRoutes(dashboard)
		h.Recipes.RegisterRoutes(dashboard)
	}

	router.NoRoute(func(c *gin.Context) {
		opts.Views.Error(c, http.StatusNotFound)
	})

	return router
}
