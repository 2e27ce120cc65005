package jwtauth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Principal is the persisted account a token can resolve to in
// principal-backed mode.
type Principal struct {
	bun.BaseModel `bun:"table:principals,alias:pr"`

	ID        uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username  string         `bun:"username,notnull,unique" json:"username,omitempty"`
	Email     string         `bun:"email,notnull,unique" json:"email,omitempty"`
	Role      string         `bun:"role" json:"role,omitempty"`
	Metadata  map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// PrincipalIdentity adapts a Principal into the Identity interface.
type PrincipalIdentity struct {
	principal *Principal
}

// NewIdentityFromPrincipal returns an Identity adapter for the record.
func NewIdentityFromPrincipal(principal *Principal) Identity {
	if principal == nil {
		return nil
	}
	return PrincipalIdentity{principal: principal}
}

// ID returns the principal's ID as a string.
func (p PrincipalIdentity) ID() string {
	if p.principal == nil {
		return ""
	}
	return p.principal.ID.String()
}

// Username returns the principal's username.
func (p PrincipalIdentity) Username() string {
	if p.principal == nil {
		return ""
	}
	return p.principal.Username
}

// Email returns the principal's email address.
func (p PrincipalIdentity) Email() string {
	if p.principal == nil {
		return ""
	}
	return p.principal.Email
}

// Role returns the principal's role.
func (p PrincipalIdentity) Role() string {
	if p.principal == nil {
		return ""
	}
	return p.principal.Role
}
