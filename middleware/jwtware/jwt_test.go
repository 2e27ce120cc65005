package jwtware_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-jwtauth"
	"github.com/goliatone/go-jwtauth/middleware/jwtware"
)

func newAuthenticator(t *testing.T, mutate ...func(*jwtauth.Config)) *jwtauth.RequestAuthenticator {
	t.Helper()

	cfg := jwtauth.Config{
		SigningMethod: "HS256",
		SigningSecret: []byte("test-secret"),
	}
	for _, m := range mutate {
		m(&cfg)
	}

	a, err := jwtauth.NewRequestAuthenticator(cfg)
	require.NoError(t, err)
	return a
}

func bearer(t *testing.T, a *jwtauth.RequestAuthenticator, opts jwtauth.IssueOptions) string {
	t.Helper()

	issuer := jwtauth.NewTokenIssuer(a.Codec(), "issuer", time.Hour)
	token, _, err := issuer.Issue(opts)
	require.NoError(t, err)
	return "JWT " + token
}

func passthrough(ctx router.Context) error {
	return ctx.Next()
}

func TestMiddlewareDeferredPassesThrough(t *testing.T) {
	handler := jwtware.New(jwtware.Config{
		Authenticator: newAuthenticator(t),
	})(passthrough)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("")
	ctx.On("Context").Return(context.Background())

	err := handler(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled, "request without credentials should fall through")
}

func TestMiddlewareFilterSkips(t *testing.T) {
	handler := jwtware.New(jwtware.Config{
		Authenticator: newAuthenticator(t),
		Filter: func(router.Context) bool {
			return true
		},
	})(passthrough)

	// no header expectations: filtered requests never touch the header
	ctx := router.NewMockContext()

	err := handler(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
}

func TestMiddlewareRejections(t *testing.T) {
	a := newAuthenticator(t)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantDetail string
	}{
		{
			name:       "scheme without credentials",
			header:     "JWT",
			wantStatus: router.StatusUnauthorized,
			wantDetail: jwtauth.ReasonNoCredentials,
		},
		{
			name:       "credentials with spaces",
			header:     "JWT bla bla",
			wantStatus: router.StatusUnauthorized,
			wantDetail: jwtauth.ReasonCredentialsWithSpace,
		},
		{
			name:       "undecodable token",
			header:     "JWT bla.bla.bla",
			wantStatus: router.StatusUnauthorized,
			wantDetail: jwtauth.ReasonIncorrectCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := jwtware.New(jwtware.Config{
				Authenticator: a,
			})(passthrough)

			var body map[string]string
			ctx := router.NewMockContext()
			ctx.On("GetString", "Authorization", "").Return(tt.header)
			ctx.On("Context").Return(context.Background())
			ctx.On("JSON", tt.wantStatus, mock.Anything).Run(func(args mock.Arguments) {
				body = args.Get(1).(map[string]string)
			}).Return(nil)

			err := handler(ctx)
			require.NoError(t, err)
			assert.False(t, ctx.NextCalled)
			assert.Equal(t, tt.wantDetail, body["detail"])
		})
	}
}

func TestMiddlewareScopeRejection(t *testing.T) {
	a := newAuthenticator(t)
	handler := jwtware.New(jwtware.Config{
		Authenticator:  a,
		RequiredScopes: []string{"write"},
	})(passthrough)

	var body map[string]string
	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").
		Return(bearer(t, a, jwtauth.IssueOptions{Subject: "reader", Scopes: []string{"read"}}))
	ctx.On("Context").Return(context.Background())
	ctx.On("JSON", router.StatusForbidden, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(map[string]string)
	}).Return(nil)

	err := handler(ctx)
	require.NoError(t, err)
	assert.False(t, ctx.NextCalled)
	assert.Equal(t, jwtauth.ReasonInsufficientScope, body["detail"])
}

func TestMiddlewareRequirePrincipal(t *testing.T) {
	a := newAuthenticator(t)
	handler := jwtware.New(jwtware.Config{
		Authenticator:    a,
		RequirePrincipal: true,
	})(passthrough)

	var body map[string]string
	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").
		Return(bearer(t, a, jwtauth.IssueOptions{Subject: "reader"}))
	ctx.On("Context").Return(context.Background())
	ctx.On("JSON", router.StatusForbidden, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(map[string]string)
	}).Return(nil)

	err := handler(ctx)
	require.NoError(t, err)
	assert.False(t, ctx.NextCalled)
	assert.Equal(t, jwtauth.ReasonPrincipalRequired, body["detail"])
}

func TestMiddlewareSuccessStoresResult(t *testing.T) {
	a := newAuthenticator(t)
	handler := jwtware.New(jwtware.Config{
		Authenticator: a,
	})(passthrough)

	var stored context.Context
	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").
		Return(bearer(t, a, jwtauth.IssueOptions{Subject: "reader", Scopes: []string{"read"}}))
	ctx.On("Context").Return(context.Background())
	ctx.On("Locals", "auth", mock.AnythingOfType("jwtauth.AuthResult")).Return(nil)
	ctx.On("SetContext", mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(0).(context.Context)
	})

	err := handler(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)

	require.NotNil(t, stored)
	result, ok := jwtauth.ResultFromContext(stored)
	require.True(t, ok)
	assert.Equal(t, jwtauth.ResultAttributes, result.Kind)
	assert.True(t, jwtauth.HasScope(stored, "read"))

	claims, ok := jwtauth.ClaimsFromContext(stored)
	require.True(t, ok)
	assert.Equal(t, "reader", claims.Subject)

	ctx.AssertCalled(t, "Locals", "auth", mock.AnythingOfType("jwtauth.AuthResult"))
}

func TestMiddlewareCustomHandlers(t *testing.T) {
	a := newAuthenticator(t)

	var handled error
	handler := jwtware.New(jwtware.Config{
		Authenticator: a,
		ErrorHandler: func(ctx router.Context, err error) error {
			handled = err
			return nil
		},
	})(passthrough)

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("JWT bla.bla.bla")
	ctx.On("Context").Return(context.Background())

	err := handler(ctx)
	require.NoError(t, err)
	require.Error(t, handled)
	assert.True(t, jwtauth.IsAuthenticationError(handled))
}

func TestMiddlewareRequiresAuthenticator(t *testing.T) {
	assert.Panics(t, func() {
		jwtware.New(jwtware.Config{})
	})
}

func TestResultFromLocals(t *testing.T) {
	want := jwtauth.AuthResult{Kind: jwtauth.ResultAttributes}

	ctx := router.NewMockContext()
	ctx.LocalsMock["auth"] = want

	got, ok := jwtware.ResultFromLocals(ctx, "")
	require.True(t, ok)
	assert.Equal(t, jwtauth.ResultAttributes, got.Kind)

	empty := router.NewMockContext()
	empty.On("Locals", "auth").Return(nil)

	_, ok = jwtware.ResultFromLocals(empty, "auth")
	assert.False(t, ok)
}
