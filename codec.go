package jwtauth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// Codec encodes and decodes the three-segment wire form of a token. It is
// pinned to a single signing method at construction: a token declaring any
// other algorithm is rejected before signature verification, which
// forecloses algorithm-confusion attacks.
type Codec struct {
	method   jwt.SigningMethod
	resolver KeyResolver
	parser   *jwt.Parser
	logger   Logger
}

// NewCodec returns a Codec pinned to the given method, resolving keys
// through the given resolver.
func NewCodec(method jwt.SigningMethod, resolver KeyResolver, logger Logger) *Codec {
	if logger == nil {
		logger = defLogger{}
	}
	// The algorithm check lives in verificationKey rather than in a parser
	// option so a mismatch reports as an unsupported algorithm, not as a
	// bad signature.
	return &Codec{
		method:   method,
		resolver: resolver,
		logger:   logger,
		parser:   jwt.NewParser(),
	}
}

// Encode serializes and signs claims with an explicit key and method,
// returning the dot-joined three-segment string.
func Encode(claims *TokenClaims, key any, method jwt.SigningMethod) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryBadInput)
	}

	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

// Encode signs claims using the codec's pinned method, resolving the
// signing key from the claims' issuer.
func (c *Codec) Encode(claims *TokenClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryBadInput)
	}

	key, err := c.resolver.ResolveSigningKey(claims.Issuer, c.method.Alg())
	if err != nil {
		return "", err
	}

	return Encode(claims, key, c.method)
}

// DecodeAndVerify splits, decodes, and verifies a raw token string. The
// verification key is resolved per token from (issuer, declared algorithm,
// kid); the signature is checked with the pinned method only. On success
// the parsed claims are returned; on failure one of the package's typed
// errors. Callers must treat every failure as equally fatal.
func (c *Codec) DecodeAndVerify(raw string) (*TokenClaims, error) {
	if !wellFormed(raw) {
		return nil, ErrTokenMalformed
	}

	token, err := c.parser.ParseWithClaims(raw, &TokenClaims{}, c.verificationKey)
	if err != nil {
		return nil, c.mapParseError(err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		c.logger.Error("codec could not decode verified claims")
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// verificationKey is the jwt.Keyfunc bridging the parser to the
// KeyResolver. The parser invokes it after decoding the claims but before
// verifying the signature, so the issuer claim is available for key lookup
// while nothing from the payload is trusted yet.
func (c *Codec) verificationKey(token *jwt.Token) (any, error) {
	if token.Method.Alg() != c.method.Alg() {
		c.logger.Error("codec rejected unexpected signing method", "alg", token.Header["alg"])
		return nil, ErrUnsupportedAlgorithm
	}

	issuer, _ := token.Claims.GetIssuer()
	kid, _ := token.Header["kid"].(string)

	return c.resolver.ResolveVerificationKey(issuer, token.Method.Alg(), kid)
}

// wellFormed checks the three-non-empty-segment structure up front so the
// failure mode for a structurally bogus credential does not depend on
// parser internals.
func wellFormed(raw string) bool {
	segments := strings.Split(raw, ".")
	if len(segments) != 3 {
		return false
	}
	for _, segment := range segments {
		if segment == "" {
			return false
		}
	}
	return true
}

// mapParseError normalizes golang-jwt parse failures into the package
// taxonomy. Errors produced by our own keyfunc surface through the parser
// wrapped, so they are matched first.
func (c *Codec) mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return ErrUnsupportedAlgorithm
	case errors.Is(err, ErrKeyNotFound):
		return ErrKeyNotFound
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ErrTokenNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		// the parser could not find a registered method for the declared alg
		return ErrUnsupportedAlgorithm
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	default:
		c.logger.Debug("codec parse failure", "error", err)
		return errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}
}
