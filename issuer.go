package jwtauth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// IssueOptions controls how TokenIssuer mints a token.
type IssueOptions struct {
	// Subject sets the sub claim.
	Subject string
	// Username sets the username claim for principal-backed verifiers.
	Username string
	// Scopes sets the scope claim, joined with spaces.
	Scopes []string
	// TTL is the lifetime from issuance. Zero uses the issuer default.
	TTL time.Duration
	// IssuedAt overrides the issuance time. Zero uses time.Now().
	IssuedAt time.Time
	// Extra claims are carried verbatim.
	Extra map[string]any
}

// TokenIssuer mints tokens from the same key configuration the verifier
// trusts, so issued tokens round-trip through DecodeAndVerify.
type TokenIssuer struct {
	codec      *Codec
	issuer     string
	defaultTTL time.Duration
}

// NewTokenIssuer returns an issuer bound to the codec's pinned method and
// key material. The issuer string becomes the iss claim and selects the
// signing key for asymmetric methods.
func NewTokenIssuer(codec *Codec, issuer string, defaultTTL time.Duration) *TokenIssuer {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &TokenIssuer{
		codec:      codec,
		issuer:     issuer,
		defaultTTL: defaultTTL,
	}
}

// Issue signs a fresh token and returns it with its expiry time.
func (ti *TokenIssuer) Issue(opts IssueOptions) (string, time.Time, error) {
	if ti.codec == nil {
		return "", time.Time{}, errors.New("token issuer requires a codec", errors.CategoryBadInput)
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = ti.defaultTTL
	}
	if ttl < 0 {
		return "", time.Time{}, errors.New("token TTL must be non-negative", errors.CategoryBadInput)
	}

	issuedAt := opts.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	expiresAt := issuedAt.Add(ttl)

	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ti.issuer,
			Subject:   opts.Subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: opts.Username,
	}

	if len(opts.Scopes) > 0 {
		claims.Scope = strings.Join(opts.Scopes, " ")
	}

	if len(opts.Extra) > 0 {
		claims.Extra = make(map[string]any, len(opts.Extra))
		for k, v := range opts.Extra {
			claims.Extra[k] = v
		}
	}

	token, err := ti.codec.Encode(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}
