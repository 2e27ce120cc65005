package jwtauth

import (
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// KeyResolver returns the key material for a verification or signing
// operation. Resolution is by the token's issuer claim and its declared
// algorithm; kid is the optional JWK key ID from the token header. A
// resolver must fail hard when no key matches, never fall back to a
// default key.
type KeyResolver interface {
	ResolveVerificationKey(issuer, alg, kid string) (any, error)
	ResolveSigningKey(issuer, alg string) (any, error)
}

// KeyStore is the configuration-backed KeyResolver. For HMAC methods it
// holds one process-wide secret; for asymmetric methods it holds per-issuer
// key pairs parsed from PEM at construction, optionally augmented by remote
// JWK sets. All fields are immutable after NewKeyStore returns.
type KeyStore struct {
	method      jwt.SigningMethod
	secret      []byte
	issuers     map[string]issuerKeys
	jwksKeyfunc jwt.Keyfunc
	logger      Logger
}

type issuerKeys struct {
	public  any
	private any
}

var _ KeyResolver = (*KeyStore)(nil)

// NewKeyStore builds a KeyStore from the config. PEM material is parsed
// eagerly so a bad key fails at startup, not on the first request.
func NewKeyStore(cfg Config, logger Logger) (*KeyStore, error) {
	if logger == nil {
		logger = defLogger{}
	}

	method := jwt.GetSigningMethod(cfg.SigningMethod)
	if method == nil {
		return nil, errors.New(
			fmt.Sprintf("unknown signing method %q", cfg.SigningMethod),
			errors.CategoryBadInput,
		)
	}

	ks := &KeyStore{
		method: method,
		logger: logger,
	}

	if isSymmetric(method) {
		ks.secret = append([]byte(nil), cfg.SigningSecret...)
		return ks, nil
	}

	ks.issuers = make(map[string]issuerKeys, len(cfg.IssuerKeys))
	for issuer, pair := range cfg.IssuerKeys {
		keys, err := parseKeyPair(method, pair)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput,
				fmt.Sprintf("invalid key material for issuer %q", issuer))
		}
		ks.issuers[issuer] = keys
	}

	if len(cfg.JWKSetURLs) > 0 {
		kf, err := jwksKeyfunc(cfg.JWKSetURLs, logger)
		if err != nil {
			return nil, err
		}
		ks.jwksKeyfunc = kf
	}

	return ks, nil
}

// ResolveVerificationKey satisfies the KeyResolver interface. The declared
// algorithm must exactly match the configured one; a mismatch is rejected
// before any key is considered.
func (ks *KeyStore) ResolveVerificationKey(issuer, alg, kid string) (any, error) {
	if alg != ks.method.Alg() {
		return nil, ErrUnsupportedAlgorithm
	}

	if isSymmetric(ks.method) {
		return ks.secret, nil
	}

	if keys, ok := ks.issuers[issuer]; ok && keys.public != nil {
		return keys.public, nil
	}

	if ks.jwksKeyfunc != nil && kid != "" {
		key, err := ks.jwksKeyfunc(&jwt.Token{
			Header: map[string]any{"kid": kid, "alg": alg},
			Method: ks.method,
			Claims: jwt.MapClaims{},
		})
		if err == nil {
			return key, nil
		}
		ks.logger.Debug("JWK set lookup failed", "kid", kid, "error", err)
	}

	return nil, ErrKeyNotFound
}

// ResolveSigningKey satisfies the KeyResolver interface.
func (ks *KeyStore) ResolveSigningKey(issuer, alg string) (any, error) {
	if alg != ks.method.Alg() {
		return nil, ErrUnsupportedAlgorithm
	}

	if isSymmetric(ks.method) {
		return ks.secret, nil
	}

	if keys, ok := ks.issuers[issuer]; ok && keys.private != nil {
		return keys.private, nil
	}

	return nil, ErrKeyNotFound
}

// Method returns the single signing method this store is pinned to.
func (ks *KeyStore) Method() jwt.SigningMethod {
	return ks.method
}

func parseKeyPair(method jwt.SigningMethod, pair KeyPair) (issuerKeys, error) {
	var keys issuerKeys

	if pair.PublicKey != "" {
		pub, err := parsePublicKey(method, []byte(pair.PublicKey))
		if err != nil {
			return keys, err
		}
		keys.public = pub
	}

	if pair.PrivateKey != "" {
		priv, err := parsePrivateKey(method, []byte(pair.PrivateKey))
		if err != nil {
			return keys, err
		}
		keys.private = priv
	}

	return keys, nil
}

func parsePublicKey(method jwt.SigningMethod, pem []byte) (any, error) {
	switch method.(type) {
	case *jwt.SigningMethodRSA, *jwt.SigningMethodRSAPSS:
		return jwt.ParseRSAPublicKeyFromPEM(pem)
	case *jwt.SigningMethodECDSA:
		return jwt.ParseECPublicKeyFromPEM(pem)
	case *jwt.SigningMethodEd25519:
		return jwt.ParseEdPublicKeyFromPEM(pem)
	}
	return nil, fmt.Errorf("no public key parser for method %s", method.Alg())
}

func parsePrivateKey(method jwt.SigningMethod, pem []byte) (any, error) {
	switch method.(type) {
	case *jwt.SigningMethodRSA, *jwt.SigningMethodRSAPSS:
		return jwt.ParseRSAPrivateKeyFromPEM(pem)
	case *jwt.SigningMethodECDSA:
		return jwt.ParseECPrivateKeyFromPEM(pem)
	case *jwt.SigningMethodEd25519:
		return jwt.ParseEdPrivateKeyFromPEM(pem)
	}
	return nil, fmt.Errorf("no private key parser for method %s", method.Alg())
}

func jwksKeyfunc(urls []string, logger Logger) (jwt.Keyfunc, error) {
	opts := keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			logger.Warn("background JWK set refresh failed", "error", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}

	if len(urls) == 1 {
		jwks, err := keyfunc.Get(urls[0], opts)
		if err != nil {
			return nil, fmt.Errorf("failed to get JWK set from %s: %w", urls[0], err)
		}
		return jwks.Keyfunc, nil
	}

	m := make(map[string]keyfunc.Options, len(urls))
	for _, url := range urls {
		m[url] = opts
	}
	multi, err := keyfunc.GetMultiple(m, keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get JWK set URLs: %w", err)
	}
	return multi.Keyfunc, nil
}
