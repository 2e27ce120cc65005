package jwtauth

import (
	"strings"
)

// ParseAuthorizationHeader extracts the credential string from a raw
// Authorization header value.
//
// An absent header, or one carrying a different scheme, is not a failure:
// it returns ok=false with a nil error and the decision defers to the
// caller's own policy (anonymous access, another authenticator). The
// scheme comparison is case sensitive.
//
// A header that names our scheme but carries no credential, or a
// credential containing spaces, is a hard syntactic failure.
func ParseAuthorizationHeader(raw, scheme string) (credential string, ok bool, err error) {
	// Fields collapses runs of whitespace, so extra spacing between the
	// scheme and the credential is tolerated.
	parts := strings.Fields(raw)
	if len(parts) == 0 || parts[0] != scheme {
		return "", false, nil
	}

	if len(parts) == 1 {
		return "", false, ErrNoCredentials
	}

	if len(parts) > 2 {
		return "", false, ErrCredentialsWithSpace
	}

	return parts[1], true, nil
}
