// Package session carries the signed-in user's session through a request context.
package session

import (
	"context"

	"github.com/pageza/cookbooks/dashboard/internal/types"
)

type contextKey struct{}

// WithSession returns a copy of ctx holding claims
func WithSession(ctx context.Context, claims *types.SessionClaims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// FromContext returns the session stored in ctx, or nil
func FromContext(ctx context.Context) *types.SessionClaims {
	claims, _ := ctx.Value(contextKey{}).(*types.SessionClaims)
	return claims
}

// AccessToken returns the backend bearer token of the session in ctx, or ""
func AccessToken(ctx context.Context) string {
	if claims := FromContext(ctx); claims != nil {
		return claims.AccessToken
	}
	return ""
}
