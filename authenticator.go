package jwtauth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// RequestAuthenticator composes header parsing, token verification, claim
// validation, and the authorization decision into the end-to-end pipeline
// for one request. It holds only immutable configuration and stateless
// collaborators, so a single instance serves concurrent requests without
// locking.
type RequestAuthenticator struct {
	cfg       Config
	codec     *Codec
	resolver  KeyResolver
	validator *ClaimValidator
	decision  DecisionStrategy
	provider  IdentityProvider
	logger    Logger
	now       func() time.Time
}

// NewRequestAuthenticator builds the pipeline from an explicit config.
// Defaults are applied and the config is validated before any key material
// is parsed.
func NewRequestAuthenticator(cfg Config, opts ...Option) (*RequestAuthenticator, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid authenticator config")
	}

	a := &RequestAuthenticator{
		cfg:    cfg,
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.resolver == nil {
		store, err := NewKeyStore(cfg, a.logger)
		if err != nil {
			return nil, err
		}
		a.resolver = store
	}

	if a.codec == nil {
		a.codec = NewCodec(jwt.GetSigningMethod(cfg.SigningMethod), a.resolver, a.logger)
	}

	if a.validator == nil {
		a.validator = NewClaimValidator(cfg)
	}

	if a.decision == nil {
		switch cfg.Mode {
		case ModePrincipal:
			if a.provider == nil {
				return nil, errors.New(
					"principal-backed mode requires an IdentityProvider",
					errors.CategoryBadInput,
				)
			}
			a.decision = principalDecision{provider: a.provider, logger: a.logger}
		default:
			a.decision = attributesDecision{prefix: cfg.AttributePrefix}
		}
	}

	return a, nil
}

// Option configures a RequestAuthenticator at construction.
type Option func(*RequestAuthenticator)

// WithLogger sets the logger used across the pipeline.
func WithLogger(logger Logger) Option {
	return func(a *RequestAuthenticator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithIdentityProvider sets the principal-lookup collaborator for
// principal-backed mode.
func WithIdentityProvider(provider IdentityProvider) Option {
	return func(a *RequestAuthenticator) {
		a.provider = provider
	}
}

// WithKeyResolver replaces the config-backed key store with a custom
// resolver.
func WithKeyResolver(resolver KeyResolver) Option {
	return func(a *RequestAuthenticator) {
		a.resolver = resolver
	}
}

// WithDecisionStrategy replaces the mode-derived decision strategy.
func WithDecisionStrategy(strategy DecisionStrategy) Option {
	return func(a *RequestAuthenticator) {
		a.decision = strategy
	}
}

// WithClock overrides the time source for claim validation.
func WithClock(now func() time.Time) Option {
	return func(a *RequestAuthenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// Config returns the immutable configuration backing this authenticator.
func (a *RequestAuthenticator) Config() Config {
	return a.cfg
}

// Codec returns the codec used for encode and verify operations.
func (a *RequestAuthenticator) Codec() *Codec {
	return a.codec
}

// Authenticate runs the full decision for one request given the raw
// Authorization header value. Scope requirements, when supplied, must all
// be satisfied by the token's scope claim.
//
// The outcome is always terminal for the request: deferred (no applicable
// credentials), authenticated, attributes-only, or rejected with an
// HTTP-mappable status. Verification failures past the header syntax are
// collapsed into one generic reason so responses do not reveal which
// check rejected the token.
func (a *RequestAuthenticator) Authenticate(ctx context.Context, rawHeader string, requirements ...ScopeRequirement) AuthResult {
	credential, ok, err := ParseAuthorizationHeader(rawHeader, a.cfg.Scheme)
	if err != nil {
		a.logger.Debug("authorization header rejected", "error", err)
		return Rejected(err)
	}
	if !ok {
		return Deferred()
	}

	claims, err := a.codec.DecodeAndVerify(credential)
	if err != nil {
		a.logger.Info("token verification failed", "error", err)
		return Rejected(a.collapse(err))
	}

	if err := a.validator.Validate(claims, a.now()); err != nil {
		a.logger.Info("claim validation failed", "error", err)
		return Rejected(a.collapse(err))
	}

	for _, requirement := range requirements {
		if !requirement.SatisfiedBy(claims.Scopes(), a.cfg.ScopePolicy) {
			a.logger.Debug("scope requirement unsatisfied",
				"required", requirement.Scopes, "granted", claims.Scope)
			return Rejected(ErrInsufficientScope)
		}
	}

	result, err := a.decision.Decide(ctx, claims)
	if err != nil {
		if IsAuthorizationError(err) {
			return Rejected(err)
		}
		a.logger.Info("authorization decision failed", "error", err)
		return Rejected(a.collapse(err))
	}

	return result
}

// collapse hides the specific verification failure behind the generic
// credentials message while keeping the original error as the source for
// internal diagnostics.
func (a *RequestAuthenticator) collapse(err error) error {
	rich := errors.New(ReasonIncorrectCredentials, errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode("INCORRECT_CREDENTIALS")
	rich.Source = err
	return rich
}
