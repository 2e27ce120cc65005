package jwtauth

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PrincipalStore is a bun-backed IdentityProvider. Lookup is by username
// first and by ID when the identifier parses as a UUID; soft-deleted rows
// never match.
type PrincipalStore struct {
	db     *bun.DB
	logger Logger
}

var _ IdentityProvider = (*PrincipalStore)(nil)

// NewPrincipalStore returns a store backed by the given database.
func NewPrincipalStore(db *bun.DB) *PrincipalStore {
	return &PrincipalStore{
		db:     db,
		logger: defLogger{},
	}
}

// WithLogger sets the store's logger.
func (s *PrincipalStore) WithLogger(logger Logger) *PrincipalStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// FindIdentityByIdentifier satisfies the IdentityProvider interface.
func (s *PrincipalStore) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	record := new(Principal)

	query := s.db.NewSelect().Model(record)
	if id, err := uuid.Parse(identifier); err == nil {
		query = query.Where("pr.username = ? OR pr.id = ?", identifier, id)
	} else {
		query = query.Where("pr.username = ?", identifier)
	}

	if err := query.Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		s.logger.Error("principal lookup query failed", "identifier", identifier, "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up principal")
	}

	return NewIdentityFromPrincipal(record), nil
}

// Register inserts a new principal record.
func (s *PrincipalStore) Register(ctx context.Context, record *Principal) (*Principal, error) {
	if record == nil {
		return nil, errors.New("principal must not be nil", errors.CategoryBadInput)
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to register principal")
	}

	return record, nil
}
