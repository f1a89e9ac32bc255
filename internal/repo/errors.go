// Package repo owns all access to the product store. Callers see gorm's
// ErrRecordNotFound for missing rows and ErrConstraint for rows the store
// itself refused; anything else means the store is unavailable.
package repo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConstraint is returned when an insert or update violates a storage-level
// invariant (not-null, check, unique).
var ErrConstraint = errors.New("constraint violated")

// Postgres error classes 23xxx are integrity violations.
const (
	pgNotNullViolation = "23502"
	pgUniqueViolation  = "23505"
	pgCheckViolation   = "23514"
)

func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgNotNullViolation, pgUniqueViolation, pgCheckViolation:
			return fmt.Errorf("%w: %s", ErrConstraint, pgErr.Message)
		}
	}
	return err
}
