package relstore

import (
	"context"
	"time"
)

// HealthResult mirrors the per-store shape the original's
// `check_sqlite_health` reports: ok plus an error string when not.
type HealthResult struct {
	OK    bool
	Error string
}

// CheckHealth runs a bounded `PRAGMA quick_check`, catching both a closed
// connection and actual corruption. Matches the teacher's direct use of
// database/sql rather than an ORM health-check helper.
func (s *Store) CheckHealth(ctx context.Context) HealthResult {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var result string
	row := s.db.QueryRowContext(ctx, "PRAGMA quick_check")
	if err := row.Scan(&result); err != nil {
		return HealthResult{OK: false, Error: err.Error()}
	}
	if result != "ok" {
		return HealthResult{OK: false, Error: result}
	}
	return HealthResult{OK: true}
}
