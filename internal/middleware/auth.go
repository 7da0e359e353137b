package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/cookbooks/dashboard/internal/session"
	"github.com/pageza/cookbooks/dashboard/internal/types"
)

const (
	// SessionCookieName is the cookie holding the signed session
	SessionCookieName = "cookbooks_session"

	// LoginPath is where unauthenticated users are sent
	LoginPath = "/login"
	// HomePath is where signed-in users land
	HomePath = "/dashboard"
)

// SessionValidator is an interface for validating session tokens
type SessionValidator interface {
	ValidateToken(token string) (*types.SessionClaims, error)
}

// SessionCookie writes and clears the session cookie
type SessionCookie struct {
	Secure bool
	MaxAge time.Duration
}

// Set stores token in the session cookie
func (sc SessionCookie) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(sc.MaxAge.Seconds()), "/", "", sc.Secure, true)
}

// Clear expires the session cookie
func (sc SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", sc.Secure, true)
}

// Session rehydrates the signed-in user's session from the cookie into the
// request context. An invalid cookie is cleared and the request continues
// without a session.
func Session(validator SessionValidator, cookie SessionCookie, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			logger.Debug("discarding session cookie", zap.Error(err))
			cookie.Clear(c)
			c.Next()
			return
		}

		// Store user info in context
		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), claims))
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// SignedIn reports whether the request carries a valid session
func SignedIn(c *gin.Context) bool {
	return session.FromContext(c.Request.Context()) != nil
}

// RequireSession redirects requests without a session to the login page
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !SignedIn(c) {
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RedirectSignedIn sends users that already have a session to the dashboard
func RedirectSignedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		if SignedIn(c) {
			c.Redirect(http.StatusSeeOther, HomePath)
			c.Abort()
			return
		}
		c.Next()
	}
}
