package jwtauth

import (
	"time"
)

// ClaimValidator checks structural and temporal validity of decoded claims.
// Every check is a pure function of the claims and the supplied time; the
// validator holds no mutable state and performs no I/O.
type ClaimValidator struct {
	// RequireExpiry makes the exp claim mandatory.
	RequireExpiry bool
	// ClockSkew is the forward tolerance applied to the issued-at check.
	ClockSkew time.Duration
	// RequiredClaims are claim wire names that must be present.
	RequiredClaims []string
}

// NewClaimValidator builds a validator from the config.
func NewClaimValidator(cfg Config) *ClaimValidator {
	return &ClaimValidator{
		RequireExpiry:  !cfg.OptionalExpiry,
		ClockSkew:      cfg.ClockSkew,
		RequiredClaims: append([]string(nil), cfg.RequiredClaims...),
	}
}

// Validate applies the expiry, issued-at, and required-claim checks against
// the given time. The first failing check wins; callers treat any failure
// as fatal to the request.
func (v *ClaimValidator) Validate(claims *TokenClaims, now time.Time) error {
	if claims == nil {
		return ErrTokenMalformed
	}

	if claims.ExpiresAt == nil {
		if v.RequireExpiry {
			return ErrTokenExpired
		}
	} else if !now.Before(claims.ExpiresAt.Time) {
		return ErrTokenExpired
	}

	if claims.IssuedAt != nil && claims.IssuedAt.Time.After(now.Add(v.ClockSkew)) {
		return ErrTokenNotYetValid
	}

	for _, name := range v.RequiredClaims {
		if _, ok := claims.Get(name); !ok {
			return ErrMissingClaim.Clone().WithMetadata(map[string]any{
				"claim": name,
			})
		}
	}

	return nil
}
