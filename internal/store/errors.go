package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist. It is an ordinary
// outcome of lookups and deletes, not a store failure.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique constraint (user email, company
// tax id or contact email) is violated.
var ErrConflict = errors.New("conflict")

// ErrReferential is returned when a foreign key constraint is violated,
// e.g. a user referencing a missing company or deleting a company that
// still has users.
var ErrReferential = errors.New("referential integrity violation")

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// mapConstraintError translates driver constraint violations into the
// store's sentinel errors. Anything else passes through unchanged.
func mapConstraintError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return ErrConflict
		case pqForeignKeyViolation:
			return ErrReferential
		}
	}
	return err
}
