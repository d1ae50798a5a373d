package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a lookup or a targeted write matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned on unique constraint violations
	ErrDuplicate = errors.New("duplicate record")

	// ErrForeignKey is returned when a referenced row does not exist
	ErrForeignKey = errors.New("referenced record does not exist")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// classify maps driver errors onto the package sentinels, keeping the
// constraint name for logs.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%w (%s)", ErrDuplicate, pqErr.Constraint)
		case pqForeignKeyViolation:
			return fmt.Errorf("%w (%s)", ErrForeignKey, pqErr.Constraint)
		}
	}

	return err
}
