package relstore

import (
	"database/sql"
	"errors"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
)

// UpsertBranchState records or refreshes the last-indexed commit for a
// (project, ref) pair. Ported from the original's
// `INSERT ... ON CONFLICT(repo, ref) DO UPDATE SET ...` upsert.
func (s *Store) UpsertBranchState(b coretypes.BranchState) error {
	_, err := s.q.Exec(`
		INSERT INTO branch_state (project_id, ref, merge_base_commit, last_indexed_commit, overlay_dir, file_count, created_at, last_accessed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, ref) DO UPDATE SET
			merge_base_commit = excluded.merge_base_commit,
			last_indexed_commit = excluded.last_indexed_commit,
			overlay_dir = excluded.overlay_dir,
			file_count = excluded.file_count,
			last_accessed_at = excluded.last_accessed_at`,
		b.ProjectID, b.Ref, b.MergeBaseCommit, b.LastIndexedCommit, b.OverlayDir,
		b.FileCount, b.CreatedAt, b.LastAccessedAt)
	return err
}

// GetBranchState returns the branch_state row for (projectID, ref), or
// ErrNotFound if the ref has never been indexed.
func (s *Store) GetBranchState(projectID, ref string) (coretypes.BranchState, error) {
	var b coretypes.BranchState
	err := s.q.QueryRow(`
		SELECT project_id, ref, merge_base_commit, last_indexed_commit, overlay_dir, file_count, created_at, last_accessed_at
		FROM branch_state WHERE project_id=? AND ref=?`, projectID, ref).
		Scan(&b.ProjectID, &b.Ref, &b.MergeBaseCommit, &b.LastIndexedCommit, &b.OverlayDir,
			&b.FileCount, &b.CreatedAt, &b.LastAccessedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return coretypes.BranchState{}, ErrNotFound
	}
	return b, err
}

// DeleteBranchState removes the branch_state row for (projectID, ref).
// Deleting a row that doesn't exist is not an error (0 rows affected).
func (s *Store) DeleteBranchState(projectID, ref string) error {
	_, err := s.q.Exec("DELETE FROM branch_state WHERE project_id=? AND ref=?", projectID, ref)
	return err
}

// ListBranchStates returns every ref CodeCompass has indexed for a project.
func (s *Store) ListBranchStates(projectID string) ([]coretypes.BranchState, error) {
	rows, err := s.q.Query(`
		SELECT project_id, ref, merge_base_commit, last_indexed_commit, overlay_dir, file_count, created_at, last_accessed_at
		FROM branch_state WHERE project_id=?`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []coretypes.BranchState
	for rows.Next() {
		var b coretypes.BranchState
		if err := rows.Scan(&b.ProjectID, &b.Ref, &b.MergeBaseCommit, &b.LastIndexedCommit, &b.OverlayDir,
			&b.FileCount, &b.CreatedAt, &b.LastAccessedAt); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}
