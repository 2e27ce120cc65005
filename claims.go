package jwtauth

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims carries the verified contents of a token: the registered JWT
// fields, the application fields this package inspects (username, scope),
// and an open extension map for everything else. Once DecodeAndVerify
// returns a TokenClaims value, callers must treat it as read only.
type TokenClaims struct {
	jwt.RegisteredClaims

	// Username identifies the principal in principal-backed mode. When
	// empty, the registered subject is used instead.
	Username string `json:"username,omitempty"`

	// Scope is the whitespace-delimited set of granted scope strings.
	Scope string `json:"scope,omitempty"`

	// Extra holds application claims not otherwise recognized. They are
	// passed through verbatim.
	Extra map[string]any `json:"-"`
}

var registeredClaimNames = map[string]struct{}{
	"iss": {}, "sub": {}, "aud": {}, "exp": {}, "nbf": {}, "iat": {}, "jti": {},
}

// PrincipalIdentifier returns the claim used for principal lookup:
// username when present, the subject otherwise.
func (c *TokenClaims) PrincipalIdentifier() string {
	if c.Username != "" {
		return c.Username
	}
	return c.RegisteredClaims.Subject
}

// Scopes splits the scope claim into individual scope strings.
func (c *TokenClaims) Scopes() []string {
	return strings.Fields(c.Scope)
}

// HasScope reports whether the token grants the given scope.
func (c *TokenClaims) HasScope(scope string) bool {
	for _, s := range c.Scopes() {
		if s == scope {
			return true
		}
	}
	return false
}

// Expires returns the expiry time, or the zero time when exp is absent.
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// Issued returns the issued-at time, or the zero time when iat is absent.
func (c *TokenClaims) Issued() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// Get looks up a claim by wire name across the recognized fields and the
// extension map.
func (c *TokenClaims) Get(name string) (any, bool) {
	switch name {
	case "iss":
		if c.Issuer != "" {
			return c.Issuer, true
		}
	case "sub":
		if c.RegisteredClaims.Subject != "" {
			return c.RegisteredClaims.Subject, true
		}
	case "aud":
		if len(c.Audience) > 0 {
			return []string(c.Audience), true
		}
	case "jti":
		if c.ID != "" {
			return c.ID, true
		}
	case "exp":
		if c.ExpiresAt != nil {
			return c.ExpiresAt.Time, true
		}
	case "nbf":
		if c.NotBefore != nil {
			return c.NotBefore.Time, true
		}
	case "iat":
		if c.IssuedAt != nil {
			return c.IssuedAt.Time, true
		}
	case "username":
		if c.Username != "" {
			return c.Username, true
		}
	case "scope":
		if c.Scope != "" {
			return c.Scope, true
		}
	default:
		if v, ok := c.Extra[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Attributes projects every claim except the temporal ones (exp, iat, nbf)
// into a flat map keyed by prefix + claim name. This is the attributes-only
// representation handed to callers that manage authorization themselves.
func (c *TokenClaims) Attributes(prefix string) map[string]any {
	attrs := make(map[string]any, len(c.Extra)+4)

	if c.Issuer != "" {
		attrs[prefix+"iss"] = c.Issuer
	}
	if c.RegisteredClaims.Subject != "" {
		attrs[prefix+"sub"] = c.RegisteredClaims.Subject
	}
	if len(c.Audience) > 0 {
		attrs[prefix+"aud"] = []string(c.Audience)
	}
	if c.ID != "" {
		attrs[prefix+"jti"] = c.ID
	}
	if c.Username != "" {
		attrs[prefix+"username"] = c.Username
	}
	if c.Scope != "" {
		attrs[prefix+"scope"] = c.Scope
	}
	for name, value := range c.Extra {
		attrs[prefix+name] = value
	}

	return attrs
}

// MarshalJSON flattens the registered fields, recognized application fields,
// and the extension map into one JSON object.
func (c TokenClaims) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+8)

	for name, value := range c.Extra {
		out[name] = value
	}

	if c.Issuer != "" {
		out["iss"] = c.Issuer
	}
	if c.RegisteredClaims.Subject != "" {
		out["sub"] = c.RegisteredClaims.Subject
	}
	if len(c.Audience) > 0 {
		out["aud"] = c.Audience
	}
	if c.ExpiresAt != nil {
		out["exp"] = c.ExpiresAt
	}
	if c.NotBefore != nil {
		out["nbf"] = c.NotBefore
	}
	if c.IssuedAt != nil {
		out["iat"] = c.IssuedAt
	}
	if c.ID != "" {
		out["jti"] = c.ID
	}
	if c.Username != "" {
		out["username"] = c.Username
	}
	if c.Scope != "" {
		out["scope"] = c.Scope
	}

	return json.Marshal(out)
}

// UnmarshalJSON decodes the registered fields, then captures every
// unrecognized claim into Extra. A scope claim encoded as a JSON array is
// normalized to the whitespace-delimited form.
func (c *TokenClaims) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &c.RegisteredClaims); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["username"]; ok {
		if err := json.Unmarshal(v, &c.Username); err != nil {
			return err
		}
	}

	if v, ok := raw["scope"]; ok {
		if err := unmarshalScope(v, &c.Scope); err != nil {
			return err
		}
	}

	for name, value := range raw {
		if _, reserved := registeredClaimNames[name]; reserved {
			continue
		}
		if name == "username" || name == "scope" {
			continue
		}
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return err
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[name] = v
	}

	return nil
}

func unmarshalScope(data json.RawMessage, dst *string) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*dst = s
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*dst = strings.Join(list, " ")
	return nil
}
