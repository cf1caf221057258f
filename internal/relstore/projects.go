package relstore

import (
	"database/sql"
	"errors"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
)

// ErrNotFound is returned by single-row lookups when no row matches.
var ErrNotFound = errors.New("relstore: not found")

// UpsertProject creates or updates the single project row this store
// holds. default_ref must be non-empty: workspace.Bootstrap is
// responsible for rejecting the empty case before it reaches here
// (see DESIGN.md Open Question decision).
func (s *Store) UpsertProject(p coretypes.Project) error {
	_, err := s.q.Exec(`
		INSERT INTO projects (id, root_path, default_ref, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET root_path=excluded.root_path, default_ref=excluded.default_ref`,
		p.ID, p.RootPath, p.DefaultRef, p.CreatedAt)
	return err
}

// GetProject returns the project row with the given id, or ErrNotFound.
func (s *Store) GetProject(id string) (coretypes.Project, error) {
	var p coretypes.Project
	err := s.q.QueryRow("SELECT id, root_path, default_ref, created_at FROM projects WHERE id=?", id).
		Scan(&p.ID, &p.RootPath, &p.DefaultRef, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return coretypes.Project{}, ErrNotFound
	}
	return p, err
}

// ListProjects returns every project row this store knows about. In
// CodeCompass's per-project-data-dir layout a store normally holds
// exactly one, but the query returns however many rows the table holds.
func (s *Store) ListProjects() ([]coretypes.Project, error) {
	rows, err := s.q.Query("SELECT id, root_path, default_ref, created_at FROM projects ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []coretypes.Project
	for rows.Next() {
		var p coretypes.Project
		if err := rows.Scan(&p.ID, &p.RootPath, &p.DefaultRef, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// DeleteProject removes the project row and all rows referencing it via
// ON DELETE CASCADE (jobs, branch_state, files, symbol_relations, imports,
// manifest).
func (s *Store) DeleteProject(id string) error {
	_, err := s.q.Exec("DELETE FROM projects WHERE id=?", id)
	return err
}
