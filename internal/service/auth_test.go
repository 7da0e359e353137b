package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/cookbooks/dashboard/internal/client"
	"github.com/pageza/cookbooks/dashboard/internal/mocks"
	"github.com/pageza/cookbooks/dashboard/internal/service"
	"github.com/pageza/cookbooks/dashboard/internal/types"
)

const testSecret = "test-secret-test-secret-test-secret"

func setupAuthService(t *testing.T) (*service.AuthService, *mocks.MockBackend) {
	backend := new(mocks.MockBackend)
	t.Cleanup(func() { backend.AssertExpectations(t) })
	return service.NewAuthService(backend, testSecret, nil), backend
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, backend := setupAuthService(t)
		backend.On("Login", anyCtx, "cook@example.com", "secret1").Return(&types.LoginResponse{
			AccessToken: "backend-token",
			User:        types.User{ID: "u1", Email: "cook@example.com"},
		}, nil)

		claims, err := svc.Login(context.Background(), "cook@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "backend-token", claims.AccessToken)
		assert.Equal(t, "u1", claims.UserID)
		assert.Equal(t, "cook@example.com", claims.Email)
		assert.WithinDuration(t, time.Now().Add(service.SessionTTL), claims.ExpiresAt.Time, time.Minute)
	})

	t.Run("malformed credentials never reach the backend", func(t *testing.T) {
		svc, backend := setupAuthService(t)

		_, err := svc.Login(context.Background(), "not-an-email", "secret1")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)

		_, err = svc.Login(context.Background(), "cook@example.com", "short")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)

		backend.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		svc, backend := setupAuthService(t)
		backend.On("Login", anyCtx, "cook@example.com", "wrongpw").
			Return(nil, &client.Error{Kind: client.KindUnauthorized, Status: 401, Message: "authorization error"})

		_, err := svc.Login(context.Background(), "cook@example.com", "wrongpw")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
		assert.NotErrorIs(t, err, service.ErrAuthFailed)
	})

	t.Run("bad request counts as rejected", func(t *testing.T) {
		svc, backend := setupAuthService(t)
		backend.On("Login", anyCtx, "cook@example.com", "secret1").
			Return(nil, &client.Error{Kind: client.KindFetch, Status: 400, Message: "authentication failed"})

		_, err := svc.Login(context.Background(), "cook@example.com", "secret1")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("other failures", func(t *testing.T) {
		svc, backend := setupAuthService(t)
		backend.On("Login", anyCtx, "cook@example.com", "secret1").
			Return(nil, &client.Error{Kind: client.KindFetch, Status: 502, Message: "authentication failed"})

		_, err := svc.Login(context.Background(), "cook@example.com", "secret1")
		assert.ErrorIs(t, err, service.ErrAuthFailed)
		assert.NotErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("missing access token", func(t *testing.T) {
		svc, backend := setupAuthService(t)
		backend.On("Login", anyCtx, "cook@example.com", "secret1").
			Return(&types.LoginResponse{User: types.User{ID: "u1"}}, nil)

		_, err := svc.Login(context.Background(), "cook@example.com", "secret1")
		assert.ErrorIs(t, err, service.ErrAuthFailed)
	})
}

func TestSessionTokenRoundTrip(t *testing.T) {
	svc, backend := setupAuthService(t)
	backend.On("Login", anyCtx, "cook@example.com", "secret1").Return(&types.LoginResponse{
		AccessToken: "backend-token",
		User:        types.User{ID: "u1", Email: "cook@example.com"},
	}, nil)

	claims, err := svc.Login(context.Background(), "cook@example.com", "secret1")
	require.NoError(t, err)

	token, err := svc.GenerateToken(claims)
	require.NoError(t, err)

	parsed, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "backend-token", parsed.AccessToken)
	assert.Equal(t, "u1", parsed.UserID)
	assert.Equal(t, "cook@example.com", parsed.Email)
}

func TestValidateToken(t *testing.T) {
	svc, _ := setupAuthService(t)

	sessionClaims := func(expires time.Time) *types.SessionClaims {
		return &types.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "cookbooks-dashboard",
				ExpiresAt: jwt.NewNumericDate(expires),
			},
			AccessToken: "backend-token",
			UserID:      "u1",
		}
	}

	t.Run("expired", func(t *testing.T) {
		token, err := svc.GenerateToken(sessionClaims(time.Now().Add(-time.Hour)))
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, service.ErrInvalidSession)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := service.NewAuthService(nil, "another-secret-another-secret-xx", nil)
		token, err := other.GenerateToken(sessionClaims(time.Now().Add(time.Hour)))
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, service.ErrInvalidSession)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := sessionClaims(time.Now())
		claims.ExpiresAt = nil
		token, err := svc.GenerateToken(claims)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, service.ErrInvalidSession)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, service.ErrInvalidSession)
	})
}
