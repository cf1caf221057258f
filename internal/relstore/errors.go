package relstore

import (
	"database/sql"
	"errors"
)

// mapNoRows converts sql.ErrNoRows to the package's own ErrNotFound so
// callers never need to import database/sql just to check a sentinel.
func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
