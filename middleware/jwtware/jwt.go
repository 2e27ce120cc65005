// Package jwtware adapts a jwtauth.RequestAuthenticator into go-router
// middleware. It owns the HTTP mapping of authentication outcomes:
// deferred requests pass through untouched, rejections become 401 or 403
// JSON responses with stable reason strings, and successful outcomes are
// stored on the request for downstream handlers.
package jwtware

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"

	"github.com/goliatone/go-jwtauth"
)

// Authenticator is the decision pipeline the middleware drives. It mirrors
// jwtauth.RequestAuthenticator.Authenticate.
type Authenticator interface {
	Authenticate(ctx context.Context, rawHeader string, requirements ...jwtauth.ScopeRequirement) jwtauth.AuthResult
}

// Config configures one middleware instance.
type Config struct {
	// Authenticator is required.
	Authenticator Authenticator

	// Filter skips the middleware for matching requests.
	Filter func(router.Context) bool

	// RequiredScopes declares scopes the token must satisfy for the
	// protected routes. Matching uses the authenticator's policy unless
	// ScopePolicy overrides it.
	RequiredScopes []string
	ScopePolicy    jwtauth.ScopePolicy

	// RequirePrincipal rejects requests whose outcome carries no resolved
	// principal, even when the token itself verified. Use it on routes
	// that need an account, to refuse tokens accepted in attributes-only
	// mode.
	RequirePrincipal bool

	// ContextKey is the locals key the result is stored under.
	// Defaults to "auth".
	ContextKey string

	// ContextEnricher propagates the result into the standard context.
	// The default installs the result and its claims via jwtauth.WithResult
	// and jwtauth.WithClaims.
	ContextEnricher func(ctx context.Context, result jwtauth.AuthResult) context.Context

	// SuccessHandler runs after a non-rejected outcome. Defaults to
	// ctx.Next().
	SuccessHandler router.HandlerFunc

	// ErrorHandler renders rejections. The default writes the result's
	// status with a JSON body {"detail": reason}.
	ErrorHandler router.ErrorHandler
}

// New returns the middleware.
func New(config ...Config) router.MiddlewareFunc {
	cfg := getDefaultConfig(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			rawHeader := ctx.GetString(router.HeaderAuthorization, "")

			result := cfg.Authenticator.Authenticate(ctx.Context(), rawHeader, cfg.requirements()...)

			switch result.Kind {
			case jwtauth.ResultDeferred:
				// no applicable credentials; downstream policy decides
				return ctx.Next()
			case jwtauth.ResultRejected:
				return cfg.ErrorHandler(ctx, result.Err())
			}

			if cfg.RequirePrincipal && result.Kind != jwtauth.ResultAuthenticated {
				return cfg.ErrorHandler(ctx, jwtauth.ErrPrincipalRequired)
			}

			ctx.Locals(cfg.ContextKey, result)

			stdCtx := cfg.ContextEnricher(ctx.Context(), result)
			ctx.SetContext(stdCtx)

			return cfg.SuccessHandler(ctx)
		}
	}
}

func getDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Authenticator == nil {
		panic("JWTAUTH: middleware configuration: Authenticator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "auth"
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler
	}

	if cfg.ContextEnricher == nil {
		cfg.ContextEnricher = func(ctx context.Context, result jwtauth.AuthResult) context.Context {
			ctx = jwtauth.WithResult(ctx, result)
			return jwtauth.WithClaims(ctx, result.Claims)
		}
	}

	return cfg
}

func (cfg *Config) requirements() []jwtauth.ScopeRequirement {
	if len(cfg.RequiredScopes) == 0 {
		return nil
	}
	return []jwtauth.ScopeRequirement{{
		Scopes: cfg.RequiredScopes,
		Policy: cfg.ScopePolicy,
	}}
}

// DefaultErrorHandler renders a rejection as JSON with the status carried
// by the structured error: 401 for authentication failures, 403 for
// valid-but-unprivileged credentials.
func DefaultErrorHandler(ctx router.Context, err error) error {
	status := router.StatusUnauthorized
	detail := jwtauth.ReasonIncorrectCredentials

	var rich *errors.Error
	if errors.As(err, &rich) {
		if rich.Code != 0 {
			status = rich.Code
		}
		if rich.Message != "" {
			detail = rich.Message
		}
	}

	return ctx.JSON(status, map[string]string{"detail": detail})
}

// ResultFromLocals retrieves the stored result from the router context.
func ResultFromLocals(ctx router.Context, key string) (jwtauth.AuthResult, bool) {
	if key == "" {
		key = "auth"
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return jwtauth.AuthResult{}, false
	}
	result, ok := raw.(jwtauth.AuthResult)
	return result, ok
}
