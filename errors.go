package jwtauth

import (
	"github.com/goliatone/go-errors"
)

// Public reason strings surfaced to HTTP clients. Header-level failures keep
// a specific message; everything past the header collapses into
// ReasonIncorrectCredentials so the response never reveals which
// verification step rejected the token.
const (
	ReasonNoCredentials        = "Invalid Authorization header. No credentials provided."
	ReasonCredentialsWithSpace = "Invalid Authorization header. Credentials string should not contain spaces."
	ReasonIncorrectCredentials = "Incorrect authentication credentials."
	ReasonUnknownPrincipal     = "Token does not map to a known principal."
	ReasonPrincipalRequired    = "Authentication mode does not grant a principal."
	ReasonInsufficientScope    = "Token is missing a required scope."
)

// Header syntax failures. These are the only authentication errors whose
// messages are surfaced verbatim.
var (
	ErrNoCredentials = errors.New(ReasonNoCredentials, errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("NO_CREDENTIALS")

	ErrCredentialsWithSpace = errors.New(ReasonCredentialsWithSpace, errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("CREDENTIALS_WITH_SPACES")
)

// Verification failures. Distinguished internally for diagnostics, collapsed
// to ReasonIncorrectCredentials at the boundary.
var (
	ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("TOKEN_MALFORMED")

	ErrUnsupportedAlgorithm = errors.New("token signing algorithm is not supported", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("UNSUPPORTED_ALGORITHM")

	ErrKeyNotFound = errors.New("no verification key for token issuer", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("KEY_NOT_FOUND")

	ErrInvalidSignature = errors.New("token signature is invalid", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("INVALID_SIGNATURE")

	ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("TOKEN_EXPIRED")

	ErrTokenNotYetValid = errors.New("token is not yet valid", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("TOKEN_NOT_YET_VALID")

	ErrMissingClaim = errors.New("token is missing a required claim", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("MISSING_CLAIM")
)

// Authorization failures. The credential verified correctly but does not
// grant access, which is safe to disclose as a 403.
var (
	ErrUnknownPrincipal = errors.New(ReasonUnknownPrincipal, errors.CategoryAuthz).
				WithCode(errors.CodeForbidden).
				WithTextCode("UNKNOWN_PRINCIPAL")

	ErrPrincipalRequired = errors.New(ReasonPrincipalRequired, errors.CategoryAuthz).
				WithCode(errors.CodeForbidden).
				WithTextCode("PRINCIPAL_REQUIRED")

	ErrInsufficientScope = errors.New(ReasonInsufficientScope, errors.CategoryAuthz).
				WithCode(errors.CodeForbidden).
				WithTextCode("INSUFFICIENT_SCOPE")
)

// ErrIdentityNotFound is returned by principal stores when no record matches
// the lookup identifier.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode("IDENTITY_NOT_FOUND")

// IsAuthenticationError reports whether err is a 401-class failure.
func IsAuthenticationError(err error) bool {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return false
	}
	return rich.Category == errors.CategoryAuth
}

// IsAuthorizationError reports whether err is a 403-class failure: the
// credential was valid but does not grant the requested access.
func IsAuthorizationError(err error) bool {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return false
	}
	return rich.Category == errors.CategoryAuthz
}
