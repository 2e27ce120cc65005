// Package jwtauth decides whether an inbound HTTP request carries a valid
// JWT bearer credential, and what that credential grants.
//
// The pipeline is small and explicit: the Authorization header is parsed
// for the configured scheme, the credential is decoded and its signature
// verified against pinned key material, the claims are validated for
// structural and temporal sanity, and the result is mapped into either a
// resolved principal (principal-backed mode) or a flat bag of request
// attributes (attributes-only mode). Each stage fails closed with a typed
// error; deep verification failures are collapsed into a single generic
// reason at the HTTP boundary so callers never learn which check tripped.
//
// Key material and the operating mode are captured once in an immutable
// Config and injected into the RequestAuthenticator. Nothing in the
// verification path mutates shared state, so one authenticator is safe for
// concurrent use across requests.
//
// The middleware/jwtware subpackage adapts the authenticator to
// go-router handlers and owns the HTTP status mapping: 401 for
// authentication failures, 403 for valid-but-unprivileged credentials.
package jwtauth
