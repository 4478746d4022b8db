// Package repository holds the MySQL implementations of the stores used
// by the use cases, plus the SessionStore that layers the Redis cache
// over whichever refresh token store is configured.  The sentinel values
// below are shared with the in-memory implementations so callers can use
// errors.Is regardless of the driver.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when creating or renaming a user would
// violate the unique email constraint.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateKey reports whether err is MySQL error 1062 (ER_DUP_ENTRY).
func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
