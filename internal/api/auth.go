package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/cookbooks/dashboard/internal/logging"
	"github.com/pageza/cookbooks/dashboard/internal/middleware"
	"github.com/pageza/cookbooks/dashboard/internal/service"
)

const (
	invalidCredentialsMessage = "Invalid credentials."
	loginFailedMessage        = "Something went wrong."
	tooManyAttemptsMessage    = "Too many sign-in attempts. Please wait a minute and try again."
)

// LoginRequest is the sign-in form
type LoginRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// loginView is what the login template renders
type loginView struct {
	Email string
	Error string
}

// AuthHandler signs users in and out
type AuthHandler struct {
	auth    service.IAuthService
	views   *Renderer
	cookie  middleware.SessionCookie
	limiter middleware.Limiter
	logger  *zap.Logger
}

// NewAuthHandler creates a new AuthHandler instance. A nil limiter leaves
// sign-in attempts unlimited.
func NewAuthHandler(auth service.IAuthService, views *Renderer, cookie middleware.SessionCookie, limiter middleware.Limiter, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		auth:    auth,
		views:   views,
		cookie:  cookie,
		limiter: limiter,
		logger:  logger,
	}
}

// RegisterRoutes registers the login and logout routes
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/login", middleware.RedirectSignedIn(), h.LoginForm)

	submit := []gin.HandlerFunc{middleware.RedirectSignedIn()}
	if h.limiter != nil {
		submit = append(submit, middleware.RateLimitMiddleware(h.limiter, h.logger, h.tooManyAttempts))
	}
	submit = append(submit, h.Login)
	router.POST("/login", submit...)
	router.POST("/logout", h.Logout)
}

// LoginForm renders the empty sign-in form
func (h *AuthHandler) LoginForm(c *gin.Context) {
	h.views.HTML(c, http.StatusOK, "login", "Login", loginView{})
}

// Login checks the credentials with the backend and starts a session
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.views.HTML(c, http.StatusBadRequest, "login", "Login", loginView{Error: invalidCredentialsMessage})
		return
	}

	log := logging.FromContext(c, h.logger)
	claims, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		view := loginView{Email: req.Email, Error: loginFailedMessage}
		status := http.StatusBadGateway
		if errors.Is(err, service.ErrInvalidCredentials) {
			view.Error = invalidCredentialsMessage
			status = http.StatusUnauthorized
		} else {
			log.Error("sign in failed", zap.Error(err))
		}
		h.views.HTML(c, status, "login", "Login", view)
		return
	}

	token, err := h.auth.GenerateToken(claims)
	if err != nil {
		log.Error("failed to issue session", zap.Error(err))
		h.views.HTML(c, http.StatusInternalServerError, "login", "Login", loginView{Email: req.Email, Error: loginFailedMessage})
		return
	}

	h.cookie.Set(c, token)
	log.Info("user signed in", zap.String("user_id", claims.UserID))
	c.Redirect(http.StatusSeeOther, middleware.HomePath)
}

// Logout ends the session
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookie.Clear(c)
	c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

func (h *AuthHandler) tooManyAttempts(c *gin.Context, _ time.Duration) {
	h.views.HTML(c, http.StatusTooManyRequests, "login", "Login", loginView{
		Email: c.PostForm("email"),
		Error: tooManyAttemptsMessage,
	})
}
