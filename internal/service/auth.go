package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/pageza/cookbooks/dashboard/internal/client"
	"github.com/pageza/cookbooks/dashboard/internal/types"
	"github.com/pageza/cookbooks/dashboard/internal/validation"
)

// SessionTTL is how long a signed-in session stays valid
const SessionTTL = 30 * 24 * time.Hour

const sessionIssuer = "cookbooks-dashboard"

var (
	// ErrInvalidCredentials means the email/password pair was rejected
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAuthFailed means signing in failed for any other reason
	ErrAuthFailed = errors.New("authentication failed")
	// ErrInvalidSession means a session token could not be trusted
	ErrInvalidSession = errors.New("invalid session")
)

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthService signs users in against the backend and encodes their session
type AuthService struct {
	backend   Backend
	secret    []byte
	validator *validation.Validator
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new AuthService instance
func NewAuthService(backend Backend, sessionSecret string, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		backend:   backend,
		secret:    []byte(sessionSecret),
		validator: validation.New(nil),
		logger:    logger,
		now:       time.Now,
	}
}

// Login checks the credentials with the backend and returns the new session
func (s *AuthService) Login(ctx context.Context, email, password string) (*types.SessionClaims, error) {
	fields, err := s.validator.Validate(credentials{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	if fields != nil {
		return nil, ErrInvalidCredentials
	}

	resp, err := s.backend.Login(ctx, email, password)
	if err != nil {
		var clientErr *client.Error
		if errors.As(err, &clientErr) &&
			(clientErr.Kind == client.KindUnauthorized || clientErr.Status == http.StatusBadRequest) {
			s.logger.Info("login rejected", zap.String("email", email))
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("login failed", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: backend returned no access token", ErrAuthFailed)
	}

	userEmail := resp.User.Email
	if userEmail == "" {
		userEmail = email
	}

	now := s.now()
	return &types.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   resp.User.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
		AccessToken: resp.AccessToken,
		UserID:      resp.User.ID,
		Email:       userEmail,
	}, nil
}

// GenerateToken signs claims into a session token
func (s *AuthService) GenerateToken(claims *types.SessionClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

// ValidateToken parses a session token and checks its signature and expiry
func (s *AuthService) ValidateToken(tokenString string) (*types.SessionClaims, error) {
	claims := &types.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !token.Valid || claims.AccessToken == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
