package jwtauth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-jwtauth"
)

func TestTokenIssuerDefaults(t *testing.T) {
	secret := []byte("test-secret")
	codec := jwtauth.NewCodec(jwt.SigningMethodHS256, staticKeys{verify: secret, sign: secret}, nil)
	issuer := jwtauth.NewTokenIssuer(codec, "issuer", 2*time.Hour)

	before := time.Now()
	token, expiresAt, err := issuer.Issue(jwtauth.IssueOptions{
		Subject:  "subject",
		Username: "temporary",
		Scopes:   []string{"read", "write"},
	})
	require.NoError(t, err)

	assert.WithinDuration(t, before.Add(2*time.Hour), expiresAt, 5*time.Second)

	claims, err := codec.DecodeAndVerify(token)
	require.NoError(t, err)
	assert.Equal(t, "issuer", claims.Issuer)
	assert.Equal(t, "subject", claims.RegisteredClaims.Subject)
	assert.Equal(t, "temporary", claims.Username)
	assert.Equal(t, "read write", claims.Scope)
	assert.False(t, claims.Issued().IsZero())
}

func TestTokenIssuerRejectsNegativeTTL(t *testing.T) {
	secret := []byte("test-secret")
	codec := jwtauth.NewCodec(jwt.SigningMethodHS256, staticKeys{verify: secret, sign: secret}, nil)
	issuer := jwtauth.NewTokenIssuer(codec, "issuer", time.Hour)

	_, _, err := issuer.Issue(jwtauth.IssueOptions{Subject: "subject", TTL: -time.Minute})
	assert.Error(t, err)
}

func TestTokenIssuerExtraClaimsAreCopied(t *testing.T) {
	secret := []byte("test-secret")
	codec := jwtauth.NewCodec(jwt.SigningMethodHS256, staticKeys{verify: secret, sign: secret}, nil)
	issuer := jwtauth.NewTokenIssuer(codec, "issuer", time.Hour)

	extra := map[string]any{"org": "some_org"}
	token, _, err := issuer.Issue(jwtauth.IssueOptions{Subject: "subject", Extra: extra})
	require.NoError(t, err)

	// mutating the caller's map after issuance must not matter
	extra["org"] = "changed"

	claims, err := codec.DecodeAndVerify(token)
	require.NoError(t, err)
	assert.Equal(t, "some_org", claims.Extra["org"])
}
