package jwtauth

import (
	"context"
	"fmt"
)

// Logger is the minimal logging surface used across the package.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of a resolved principal.
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
}

// IdentityProvider is the principal-lookup collaborator consumed in
// principal-backed mode. Implementations resolve the token's username or
// subject claim to a persisted account. Return ErrIdentityNotFound when no
// record matches; any other error is treated as a lookup failure.
type IdentityProvider interface {
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// IdentityProviderFunc adapts a function into an IdentityProvider.
type IdentityProviderFunc func(ctx context.Context, identifier string) (Identity, error)

// FindIdentityByIdentifier satisfies the IdentityProvider interface.
func (f IdentityProviderFunc) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	if f == nil {
		return nil, ErrIdentityNotFound
	}
	return f(ctx, identifier)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] JWTAUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] JWTAUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] JWTAUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] JWTAUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
