package relstore

import "github.com/codecompass-mcp/codecompass/internal/coretypes"

// UpsertImport records a file→module import edge; find_related_symbols
// reads these edges through ImportersOfModule.
func (s *Store) UpsertImport(e coretypes.ImportEdge) error {
	_, err := s.q.Exec(`
		INSERT INTO imports (project_id, from_file, to_module, imported_as) VALUES (?, ?, ?, ?)
		ON CONFLICT(project_id, from_file, to_module) DO UPDATE SET imported_as=excluded.imported_as`,
		e.ProjectID, e.FromFile, e.ToModule, e.ImportedAs)
	return err
}

// ImportsOfFile returns every module a file imports.
func (s *Store) ImportsOfFile(projectID, fromFile string) ([]coretypes.ImportEdge, error) {
	rows, err := s.q.Query("SELECT project_id, from_file, to_module, imported_as FROM imports WHERE project_id=? AND from_file=?",
		projectID, fromFile)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []coretypes.ImportEdge
	for rows.Next() {
		var e coretypes.ImportEdge
		if err := rows.Scan(&e.ProjectID, &e.FromFile, &e.ToModule, &e.ImportedAs); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// ImportersOfModule returns every file that imports toModule, used by
// the find_related_symbols tool.
func (s *Store) ImportersOfModule(projectID, toModule string) ([]string, error) {
	rows, err := s.q.Query("SELECT from_file FROM imports WHERE project_id=? AND to_module=?", projectID, toModule)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

// DeleteImportsForFile removes every import edge from a file, called
// before re-inserting its imports during incremental sync.
func (s *Store) DeleteImportsForFile(projectID, fromFile string) error {
	_, err := s.q.Exec("DELETE FROM imports WHERE project_id=? AND from_file=?", projectID, fromFile)
	return err
}
