package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/cookbooks/dashboard/internal/logging"
	"github.com/pageza/cookbooks/dashboard/internal/middleware"
	"github.com/pageza/cookbooks/dashboard/internal/service"
)

// pageHandler holds what every dashboard page handler needs
type pageHandler struct {
	views  *Renderer
	cookie middleware.SessionCookie
	logger *zap.Logger
}

func newPageHandler(views *Renderer, cookie middleware.SessionCookie, logger *zap.Logger) pageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return pageHandler{views: views, cookie: cookie, logger: logger}
}

// fail turns a service error into a response: an expired backend session
// signs the user out, a missing record is a 404 and anything else a 500.
func (h pageHandler) fail(c *gin.Context, err error) {
	switch {
	case service.IsUnauthorized(err):
		h.signOut(c)
	case service.IsNotFound(err):
		h.views.Error(c, http.StatusNotFound)
	default:
		logging.FromContext(c, h.logger).Error("failed to load page",
			zap.String("path", c.Request.URL.Path), zap.Error(err))
		h.views.Error(c, http.StatusInternalServerError)
	}
}

// signOut drops the session cookie and sends the user to the login page
func (h pageHandler) signOut(c *gin.Context) {
	logging.FromContext(c, h.logger).Info("backend rejected session, signing out")
	h.cookie.Clear(c)
	c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

// Version is reported by the health endpoint
var Version = "v1.0.0"

// HealthCheck returns the health status of the dashboard
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Cookbooks dashboard is running",
		"version": Version,
	})
}

// RegisterHealthRoutes registers the unauthenticated health endpoints
func RegisterHealthRoutes(router gin.IRoutes) {
	router.GET("/health", HealthCheck)
	router.GET("/api/health", HealthCheck)
}
