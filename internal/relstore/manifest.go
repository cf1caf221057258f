package relstore

// Manifest is the relational side's schema/parser/generation marker.
// internal/schema cross-checks this against ftsindex's manifest.json
// sidecar before classifying a project's SchemaStatus: the two stores
// must agree, or the index is corrupt.
type Manifest struct {
	ProjectID     string
	SchemaVersion int
	ParserVersion int
	Generation    int64
}

// PutManifest inserts or replaces the manifest row for a project.
func (s *Store) PutManifest(m Manifest) error {
	_, err := s.q.Exec(`
		INSERT INTO manifest (project_id, schema_version, parser_version, generation) VALUES (?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			schema_version=excluded.schema_version, parser_version=excluded.parser_version, generation=excluded.generation`,
		m.ProjectID, m.SchemaVersion, m.ParserVersion, m.Generation)
	return err
}

// GetManifest returns the manifest row for a project, or ErrNotFound if
// the project has never completed an index_repo run.
func (s *Store) GetManifest(projectID string) (Manifest, error) {
	var m Manifest
	err := s.q.QueryRow("SELECT project_id, schema_version, parser_version, generation FROM manifest WHERE project_id=?", projectID).
		Scan(&m.ProjectID, &m.SchemaVersion, &m.ParserVersion, &m.Generation)
	if err != nil {
		return Manifest{}, mapNoRows(err)
	}
	return m, nil
}
