package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// User is the identity returned by the backend login endpoint
type User struct {
	ID        string `json:"_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// LoginRequest is the body sent to the backend login endpoint
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the backend's answer to a successful login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// SessionClaims is the session record stored in the session cookie. It
// carries the backend bearer token so it can be attached to later requests.
type SessionClaims struct {
	jwt.RegisteredClaims
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
}
