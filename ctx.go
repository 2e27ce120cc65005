package jwtauth

import (
	"context"
)

type resultCtxKey struct{}
type claimsCtxKey struct{}

// WithResult stores the authentication result in the context.
func WithResult(ctx context.Context, result AuthResult) context.Context {
	return context.WithValue(ctx, resultCtxKey{}, result)
}

// ResultFromContext retrieves the authentication result from the context.
func ResultFromContext(ctx context.Context) (AuthResult, bool) {
	result, ok := ctx.Value(resultCtxKey{}).(AuthResult)
	return result, ok
}

// WithClaims stores verified token claims in the context.
func WithClaims(ctx context.Context, claims *TokenClaims) context.Context {
	if claims == nil {
		return ctx
	}
	return context.WithValue(ctx, claimsCtxKey{}, claims)
}

// ClaimsFromContext retrieves verified token claims from the context.
func ClaimsFromContext(ctx context.Context) (*TokenClaims, bool) {
	claims, ok := ctx.Value(claimsCtxKey{}).(*TokenClaims)
	return claims, ok
}

// IdentityFromContext retrieves the resolved principal from the context,
// when the request was authenticated in principal-backed mode.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	result, ok := ResultFromContext(ctx)
	if !ok || result.Kind != ResultAuthenticated || result.Identity == nil {
		return nil, false
	}
	return result.Identity, true
}

// HasScope reports whether the context's verified claims grant a scope.
func HasScope(ctx context.Context, scope string) bool {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return false
	}
	return claims.HasScope(scope)
}
