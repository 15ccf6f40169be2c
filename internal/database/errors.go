package database

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Storage error taxonomy. Repositories translate driver-specific failures
// into these sentinels so callers can branch with errors.Is.
var (
	// ErrNotFound indicates an operation targeted a record that does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey indicates a uniqueness constraint was violated.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrForeignKey indicates a write referenced a missing parent record.
	ErrForeignKey = errors.New("foreign key violation")
)

// MySQL server error numbers for constraint violations.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrRowIsReferenced = 1451
	mysqlErrNoReferencedRow = 1452
)

// MapError translates a driver constraint error into the package taxonomy.
// Errors that are not recognized constraint failures are returned unchanged,
// so it is safe to pass every database error through it.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %v", ErrForeignKey, err)
		}
		return err
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlErrDuplicateEntry:
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		case mysqlErrRowIsReferenced, mysqlErrNoReferencedRow:
			return fmt.Errorf("%w: %v", ErrForeignKey, err)
		}
	}

	return err
}
