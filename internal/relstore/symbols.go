package relstore

import (
	"github.com/codecompass-mcp/codecompass/internal/coretypes"
)

// UpsertSymbol inserts or replaces a symbol_relations row, keyed by
// (project_id, stable_id).
func (s *Store) UpsertSymbol(sym coretypes.SymbolRecord) error {
	_, err := s.q.Exec(`
		INSERT INTO symbol_relations
			(stable_id, project_id, kind, name, qualified_name, language, file_path, start_line, end_line, signature, parent_id, doc_comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, stable_id) DO UPDATE SET
			kind=excluded.kind, name=excluded.name, qualified_name=excluded.qualified_name,
			language=excluded.language, file_path=excluded.file_path, start_line=excluded.start_line,
			end_line=excluded.end_line, signature=excluded.signature, parent_id=excluded.parent_id,
			doc_comment=excluded.doc_comment`,
		sym.StableID, sym.ProjectID, int(sym.Kind), sym.Name, sym.QualifiedName, sym.Language,
		sym.FilePath, sym.StartLine, sym.EndLine, sym.Signature, sym.ParentID, sym.DocComment)
	return err
}

// FindSymbolsByLocation returns symbols in projectID/filePath whose line
// range overlaps [startLine, endLine]. Ported from the original's
// `line_start <= ?end AND line_end >= ?start` overlap predicate.
func (s *Store) FindSymbolsByLocation(projectID, filePath string, startLine, endLine int) ([]coretypes.SymbolRecord, error) {
	rows, err := s.q.Query(`
		SELECT stable_id, project_id, kind, name, qualified_name, language, file_path, start_line, end_line, signature, parent_id, doc_comment
		FROM symbol_relations
		WHERE project_id=? AND file_path=? AND start_line<=? AND end_line>=?`,
		projectID, filePath, endLine, startLine)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSymbols(rows)
}

// FindSymbolsInFile returns every symbol defined in filePath, ordered by
// start line, backing get_file_outline.
func (s *Store) FindSymbolsInFile(projectID, filePath string) ([]coretypes.SymbolRecord, error) {
	rows, err := s.q.Query(`
		SELECT stable_id, project_id, kind, name, qualified_name, language, file_path, start_line, end_line, signature, parent_id, doc_comment
		FROM symbol_relations WHERE project_id=? AND file_path=? ORDER BY start_line`, projectID, filePath)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSymbols(rows)
}

// FindSymbolsByName returns every symbol in a project whose name exactly
// matches, used by locate_symbol's relational join against full-text hits.
func (s *Store) FindSymbolsByName(projectID, name string) ([]coretypes.SymbolRecord, error) {
	rows, err := s.q.Query(`
		SELECT stable_id, project_id, kind, name, qualified_name, language, file_path, start_line, end_line, signature, parent_id, doc_comment
		FROM symbol_relations WHERE project_id=? AND name=?`, projectID, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSymbols(rows)
}

// GetSymbol returns a single symbol by stable id, or ErrNotFound.
func (s *Store) GetSymbol(projectID, stableID string) (coretypes.SymbolRecord, error) {
	row := s.q.QueryRow(`
		SELECT stable_id, project_id, kind, name, qualified_name, language, file_path, start_line, end_line, signature, parent_id, doc_comment
		FROM symbol_relations WHERE project_id=? AND stable_id=?`, projectID, stableID)
	var sym coretypes.SymbolRecord
	var kind int
	err := row.Scan(&sym.StableID, &sym.ProjectID, &kind, &sym.Name, &sym.QualifiedName, &sym.Language,
		&sym.FilePath, &sym.StartLine, &sym.EndLine, &sym.Signature, &sym.ParentID, &sym.DocComment)
	if err != nil {
		return coretypes.SymbolRecord{}, mapNoRows(err)
	}
	sym.Kind = coretypes.SymbolKind(kind)
	return sym, nil
}

// FindChildSymbols returns every symbol whose parent_id is parentStableID,
// backing get_symbol_hierarchy's descendant expansion.
func (s *Store) FindChildSymbols(projectID, parentStableID string) ([]coretypes.SymbolRecord, error) {
	rows, err := s.q.Query(`
		SELECT stable_id, project_id, kind, name, qualified_name, language, file_path, start_line, end_line, signature, parent_id, doc_comment
		FROM symbol_relations WHERE project_id=? AND parent_id=?`, projectID, parentStableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSymbols(rows)
}

// DeleteSymbolsForFile removes all symbol rows for a file, called before
// re-inserting a file's symbols during incremental sync.
func (s *Store) DeleteSymbolsForFile(projectID, filePath string) error {
	_, err := s.q.Exec("DELETE FROM symbol_relations WHERE project_id=? AND file_path=?", projectID, filePath)
	return err
}

// SymbolCount returns the total number of symbol rows for a project.
func (s *Store) SymbolCount(projectID string) (int64, error) {
	var n int64
	err := s.q.QueryRow("SELECT COUNT(*) FROM symbol_relations WHERE project_id=?", projectID).Scan(&n)
	return n, err
}

func scanSymbols(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]coretypes.SymbolRecord, error) {
	var result []coretypes.SymbolRecord
	for rows.Next() {
		var sym coretypes.SymbolRecord
		var kind int
		if err := rows.Scan(&sym.StableID, &sym.ProjectID, &kind, &sym.Name, &sym.QualifiedName, &sym.Language,
			&sym.FilePath, &sym.StartLine, &sym.EndLine, &sym.Signature, &sym.ParentID, &sym.DocComment); err != nil {
			return nil, err
		}
		sym.Kind = coretypes.SymbolKind(kind)
		result = append(result, sym)
	}
	return result, rows.Err()
}
