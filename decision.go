package jwtauth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// ResultKind tags the outcome of one authentication decision.
type ResultKind string

const (
	// ResultDeferred means no applicable credentials were presented; the
	// caller's own policy decides what happens next.
	ResultDeferred ResultKind = "deferred"
	// ResultAuthenticated means the token resolved to a principal.
	ResultAuthenticated ResultKind = "authenticated"
	// ResultAttributes means the token's claims were projected into
	// request attributes without resolving a principal.
	ResultAttributes ResultKind = "attributes"
	// ResultRejected means the request carried credentials that did not
	// grant access.
	ResultRejected ResultKind = "rejected"
)

// AuthResult is the outcome of authenticating one request. It is built
// fresh per request and never persisted.
type AuthResult struct {
	Kind ResultKind

	// Identity is set for ResultAuthenticated.
	Identity Identity
	// Scopes are the scope strings granted by the token.
	Scopes []string
	// Attributes is set for ResultAttributes: claims projected under the
	// configured prefix, excluding the temporal claims.
	Attributes map[string]any
	// Claims are the verified token claims, set for any outcome in which
	// a token verified successfully.
	Claims *TokenClaims

	// Status is the HTTP-mappable status for ResultRejected.
	Status int
	// Reason is the stable, client-safe reason string for ResultRejected.
	Reason string

	cause error
}

// Err returns the structured error behind a rejection, nil otherwise. The
// error's message is the client-safe reason; the underlying diagnostic
// cause is attached as its source.
func (r AuthResult) Err() error {
	if r.Kind != ResultRejected {
		return nil
	}
	return r.cause
}

// Deferred builds the no-credentials outcome.
func Deferred() AuthResult {
	return AuthResult{Kind: ResultDeferred}
}

// Authenticated builds the principal-backed success outcome.
func Authenticated(identity Identity, claims *TokenClaims) AuthResult {
	return AuthResult{
		Kind:     ResultAuthenticated,
		Identity: identity,
		Claims:   claims,
		Scopes:   claims.Scopes(),
	}
}

// AttributesOnly builds the stateless success outcome.
func AttributesOnly(claims *TokenClaims, prefix string) AuthResult {
	return AuthResult{
		Kind:       ResultAttributes,
		Claims:     claims,
		Scopes:     claims.Scopes(),
		Attributes: claims.Attributes(prefix),
	}
}

// Rejected builds a rejection from a structured error, deriving the HTTP
// status from the error's code and keeping the error as the diagnostic
// cause.
func Rejected(err error) AuthResult {
	rich := asRichError(err)
	return AuthResult{
		Kind:   ResultRejected,
		Status: rich.Code,
		Reason: rich.Message,
		cause:  rich,
	}
}

func asRichError(err error) *errors.Error {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		rich = errors.Wrap(err, errors.CategoryAuth, ReasonIncorrectCredentials).
			WithCode(errors.CodeUnauthorized)
	}
	if rich.Code == 0 {
		rich = rich.Clone().WithCode(errors.CodeUnauthorized)
	}
	return rich
}

// ScopeRequirement is an operation-declared set of scopes the token must
// satisfy. The zero value requires nothing.
type ScopeRequirement struct {
	Scopes []string
	// Policy overrides the authenticator's default matching policy when
	// non-empty.
	Policy ScopePolicy
}

// RequireScopes builds a requirement matched with the default policy.
func RequireScopes(scopes ...string) ScopeRequirement {
	return ScopeRequirement{Scopes: scopes}
}

// SatisfiedBy reports whether the granted scopes meet the requirement
// under the given fallback policy.
func (r ScopeRequirement) SatisfiedBy(granted []string, fallback ScopePolicy) bool {
	if len(r.Scopes) == 0 {
		return true
	}

	policy := r.Policy
	if policy == "" {
		policy = fallback
	}

	have := make(map[string]struct{}, len(granted))
	for _, s := range granted {
		have[s] = struct{}{}
	}

	switch policy {
	case ScopeRequireAny:
		for _, s := range r.Scopes {
			if _, ok := have[s]; ok {
				return true
			}
		}
		return false
	default:
		for _, s := range r.Scopes {
			if _, ok := have[s]; !ok {
				return false
			}
		}
		return true
	}
}

// DecisionStrategy converts validated claims into the final request state.
// One strategy is selected from configuration and reused across requests;
// implementations must be safe for concurrent use.
type DecisionStrategy interface {
	Decide(ctx context.Context, claims *TokenClaims) (AuthResult, error)
}

// attributesDecision implements the stateless mode: no principal lookup,
// claims become prefixed request attributes.
type attributesDecision struct {
	prefix string
}

func (d attributesDecision) Decide(_ context.Context, claims *TokenClaims) (AuthResult, error) {
	return AttributesOnly(claims, d.prefix), nil
}

// principalDecision implements the principal-backed mode: the username (or
// subject) claim must resolve to an existing account.
type principalDecision struct {
	provider IdentityProvider
	logger   Logger
}

func (d principalDecision) Decide(ctx context.Context, claims *TokenClaims) (AuthResult, error) {
	identifier := claims.PrincipalIdentifier()
	if identifier == "" {
		return AuthResult{}, ErrMissingClaim.Clone().WithMetadata(map[string]any{
			"claim": "username",
		})
	}

	identity, err := d.provider.FindIdentityByIdentifier(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return AuthResult{}, ErrUnknownPrincipal
		}
		d.logger.Error("principal lookup failed", "identifier", identifier, "error", err)
		return AuthResult{}, ErrUnknownPrincipal.Clone().WithMetadata(map[string]any{
			"cause": err.Error(),
		})
	}

	if identity == nil {
		return AuthResult{}, ErrUnknownPrincipal
	}

	return Authenticated(identity, claims), nil
}
