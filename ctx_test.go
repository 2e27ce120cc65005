package jwtauth_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-jwtauth"
)

func TestContextRoundTrip(t *testing.T) {
	claims := &jwtauth.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "subject"},
		Scope:            "read",
	}
	result := jwtauth.Authenticated(stubIdentity{id: "1", username: "temporary"}, claims)

	ctx := jwtauth.WithResult(context.Background(), result)
	ctx = jwtauth.WithClaims(ctx, claims)

	stored, ok := jwtauth.ResultFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, jwtauth.ResultAuthenticated, stored.Kind)

	storedClaims, ok := jwtauth.ClaimsFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "subject", storedClaims.RegisteredClaims.Subject)

	identity, ok := jwtauth.IdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "temporary", identity.Username())

	assert.True(t, jwtauth.HasScope(ctx, "read"))
	assert.False(t, jwtauth.HasScope(ctx, "write"))
}

func TestContextEmpty(t *testing.T) {
	ctx := context.Background()

	_, ok := jwtauth.ResultFromContext(ctx)
	assert.False(t, ok)

	_, ok = jwtauth.ClaimsFromContext(ctx)
	assert.False(t, ok)

	_, ok = jwtauth.IdentityFromContext(ctx)
	assert.False(t, ok)

	assert.False(t, jwtauth.HasScope(ctx, "read"))
}

func TestIdentityFromContextRequiresPrincipal(t *testing.T) {
	claims := &jwtauth.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "subject"},
	}
	ctx := jwtauth.WithResult(context.Background(), jwtauth.AttributesOnly(claims, "jwt_"))

	_, ok := jwtauth.IdentityFromContext(ctx)
	assert.False(t, ok)
}
