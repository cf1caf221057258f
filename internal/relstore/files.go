package relstore

import "github.com/codecompass-mcp/codecompass/internal/coretypes"

// UpsertFile records or refreshes a file's content hash and metadata,
// used by the indexer's incremental sync to decide which files changed.
func (s *Store) UpsertFile(f coretypes.FileRecord) error {
	_, err := s.q.Exec(`
		INSERT INTO files (project_id, path, content_hash, language, size_bytes, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, path) DO UPDATE SET
			content_hash=excluded.content_hash, language=excluded.language,
			size_bytes=excluded.size_bytes, indexed_at=excluded.indexed_at`,
		f.ProjectID, f.Path, f.ContentHash, f.Language, f.SizeBytes, f.IndexedAt)
	return err
}

// GetFile returns the file row for (projectID, path), or ErrNotFound.
func (s *Store) GetFile(projectID, path string) (coretypes.FileRecord, error) {
	var f coretypes.FileRecord
	err := s.q.QueryRow(`
		SELECT project_id, path, content_hash, language, size_bytes, indexed_at
		FROM files WHERE project_id=? AND path=?`, projectID, path).
		Scan(&f.ProjectID, &f.Path, &f.ContentHash, &f.Language, &f.SizeBytes, &f.IndexedAt)
	if err != nil {
		return coretypes.FileRecord{}, mapNoRows(err)
	}
	return f, nil
}

// AllFileHashes returns a path→content_hash map for a project, used by the
// indexer to diff against the working tree and skip unchanged files.
func (s *Store) AllFileHashes(projectID string) (map[string]string, error) {
	rows, err := s.q.Query("SELECT path, content_hash FROM files WHERE project_id=?", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, err
		}
		result[path] = hash
	}
	return result, rows.Err()
}

// DeleteFile removes a single file row, called when a file is deleted
// from the working tree between syncs.
func (s *Store) DeleteFile(projectID, path string) error {
	_, err := s.q.Exec("DELETE FROM files WHERE project_id=? AND path=?", projectID, path)
	return err
}

// FileCount returns the number of indexed files for a project.
func (s *Store) FileCount(projectID string) (int64, error) {
	var n int64
	err := s.q.QueryRow("SELECT COUNT(*) FROM files WHERE project_id=?", projectID).Scan(&n)
	return n, err
}
