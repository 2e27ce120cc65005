package jwtauth

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/golang-jwt/jwt/v5"
)

// Mode selects how validated claims are turned into request state.
type Mode string

const (
	// ModeAttributes projects claims into request attributes without
	// resolving an identity. Authorization is left to the caller.
	ModeAttributes Mode = "attributes"
	// ModePrincipal resolves the token's username (or subject) to a
	// persisted account through the configured IdentityProvider.
	ModePrincipal Mode = "principal"
)

// ScopePolicy controls how a ScopeRequirement is matched against the
// token's scope claim.
type ScopePolicy string

const (
	// ScopeRequireAll grants access only when every required scope is
	// present in the token.
	ScopeRequireAll ScopePolicy = "all"
	// ScopeRequireAny grants access when at least one required scope is
	// present in the token.
	ScopeRequireAny ScopePolicy = "any"
)

// KeyPair holds PEM-encoded key material for one issuer. PublicKey is used
// for verification; PrivateKey only if this process also issues tokens.
type KeyPair struct {
	PublicKey  string
	PrivateKey string
}

// DefaultScheme is the Authorization header scheme this library answers to.
const DefaultScheme = "JWT"

// DefaultAttributePrefix prefixes claim names projected as request
// attributes in ModeAttributes.
const DefaultAttributePrefix = "jwt_"

// DefaultClockSkew is the tolerance applied to the issued-at check.
const DefaultClockSkew = 30 * time.Second

// Config is the immutable configuration for a RequestAuthenticator. It is
// read once at construction; the verification path never mutates it, so a
// single value can back any number of concurrent requests.
type Config struct {
	// SigningMethod is the only algorithm tokens may declare, e.g. "HS256",
	// "RS256", "ES256". Tokens declaring anything else are rejected before
	// key lookup; the algorithm is never inferred from the token.
	SigningMethod string

	// SigningSecret is the shared secret for HMAC methods.
	SigningSecret []byte

	// IssuerKeys maps an issuer claim to its PEM key pair for asymmetric
	// methods. Lookup is by exact issuer; there is no fallback key.
	IssuerKeys map[string]KeyPair

	// JWKSetURLs optionally supplies verification keys from remote JWK
	// sets, selected by the token's kid header.
	JWKSetURLs []string

	// Scheme is the Authorization header scheme literal. Comparison is
	// case sensitive. Defaults to DefaultScheme.
	Scheme string

	// Mode selects attributes-only or principal-backed behavior.
	// Defaults to ModeAttributes.
	Mode Mode

	// ScopePolicy is the default matching policy for scope requirements.
	// Defaults to ScopeRequireAll.
	ScopePolicy ScopePolicy

	// ClockSkew is the tolerance for the issued-at check. Defaults to
	// DefaultClockSkew.
	ClockSkew time.Duration

	// OptionalExpiry permits tokens without an exp claim. The default
	// (false) makes exp mandatory.
	OptionalExpiry bool

	// RequiredClaims are application claim names that must be present
	// after verification, e.g. "username" for principal-backed setups.
	RequiredClaims []string

	// AttributePrefix prefixes projected claim names in ModeAttributes.
	// Defaults to DefaultAttributePrefix.
	AttributePrefix string
}

// WithDefaults returns a copy of the config with zero values replaced by
// package defaults.
func (c Config) WithDefaults() Config {
	if c.SigningMethod == "" {
		c.SigningMethod = jwt.SigningMethodHS256.Alg()
	}
	if c.Scheme == "" {
		c.Scheme = DefaultScheme
	}
	if c.Mode == "" {
		c.Mode = ModeAttributes
	}
	if c.ScopePolicy == "" {
		c.ScopePolicy = ScopeRequireAll
	}
	if c.ClockSkew == 0 {
		c.ClockSkew = DefaultClockSkew
	}
	if c.AttributePrefix == "" {
		c.AttributePrefix = DefaultAttributePrefix
	}
	return c
}

// Validate checks the config for internal consistency. It assumes defaults
// have already been applied.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SigningMethod, validation.Required, validation.By(knownSigningMethod)),
		validation.Field(&c.Mode, validation.In(ModeAttributes, ModePrincipal)),
		validation.Field(&c.ScopePolicy, validation.In(ScopeRequireAll, ScopeRequireAny)),
		validation.Field(&c.ClockSkew, validation.Min(time.Duration(0))),
		validation.Field(&c.SigningSecret, validation.By(c.checkKeyMaterial)),
	)
}

func knownSigningMethod(value any) error {
	name, _ := value.(string)
	if jwt.GetSigningMethod(name) == nil {
		return fmt.Errorf("unknown signing method %q", name)
	}
	return nil
}

func (c Config) checkKeyMaterial(any) error {
	method := jwt.GetSigningMethod(c.SigningMethod)
	if method == nil {
		// reported by the SigningMethod rule
		return nil
	}

	if isSymmetric(method) {
		if len(c.SigningSecret) == 0 {
			return fmt.Errorf("signing method %s requires a symmetric secret", c.SigningMethod)
		}
		return nil
	}

	if len(c.IssuerKeys) == 0 && len(c.JWKSetURLs) == 0 {
		return fmt.Errorf("signing method %s requires issuer keys or JWK set URLs", c.SigningMethod)
	}
	return nil
}

func isSymmetric(method jwt.SigningMethod) bool {
	_, ok := method.(*jwt.SigningMethodHMAC)
	return ok
}
