package ftsindex

import (
	"github.com/blevesearch/bleve/v2"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
)

// symbolDoc is the bleve document shape for the symbols shard. Field
// names are deliberately snake_case to match the relational schema so a
// caller can cross-reference a hit by field name without translation.
// An IndexSet is opened per project data directory (see internal/workspace),
// so documents need no project scoping of their own.
type symbolDoc struct {
	StableID      string `json:"stable_id"`
	Name          string `json:"name"`
	QualifiedName string `json:"qualified_name"`
	Signature     string `json:"signature"`
	DocComment    string `json:"doc_comment"`
	Kind          string `json:"kind"`
	Language      string `json:"language"`
	FilePath      string `json:"file_path"`
	StartLine     int    `json:"start_line"`
	EndLine       int    `json:"end_line"`
}

type snippetDoc struct {
	SnippetID string `json:"snippet_id"`
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Text      string `json:"text"`
	SymbolID  string `json:"symbol_id"`
}

type fileDoc struct {
	Path     string `json:"path"`
	Language string `json:"language"`
}

// IndexSymbol inserts or replaces a symbol document.
func (s *IndexSet) IndexSymbol(sym coretypes.SymbolRecord) error {
	doc := symbolDoc{
		StableID:      sym.StableID,
		Name:          sym.Name,
		QualifiedName: sym.QualifiedName,
		Signature:     sym.Signature,
		DocComment:    sym.DocComment,
		Kind:          sym.Kind.String(),
		Language:      sym.Language,
		FilePath:      sym.FilePath,
		StartLine:     sym.StartLine,
		EndLine:       sym.EndLine,
	}
	return s.Symbols.Index(sym.StableID, doc)
}

// DeleteSymbol removes a symbol document by stable id.
func (s *IndexSet) DeleteSymbol(stableID string) error {
	return s.Symbols.Delete(stableID)
}

// IndexSnippet inserts or replaces a snippet document.
func (s *IndexSet) IndexSnippet(snip coretypes.SnippetRecord) error {
	doc := snippetDoc{
		SnippetID: snip.ID,
		FilePath:  snip.FilePath,
		StartLine: snip.StartLine,
		EndLine:   snip.EndLine,
		Text:      snip.Text,
		SymbolID:  snip.SymbolID,
	}
	return s.Snippets.Index(snip.ID, doc)
}

// DeleteSnippet removes a snippet document by its own id.
func (s *IndexSet) DeleteSnippet(snippetID string) error {
	return s.Snippets.Delete(snippetID)
}

// IndexFile inserts or replaces a file document.
func (s *IndexSet) IndexFile(f coretypes.FileRecord) error {
	doc := fileDoc{Path: f.Path, Language: f.Language}
	return s.Files.Index(f.Path, doc)
}

// DeleteFile removes a file document by path.
func (s *IndexSet) DeleteFile(path string) error {
	return s.Files.Delete(path)
}

// SnippetIDsForFile returns every snippet document id for a file, used by
// the indexer to prune a file's prior snippets before re-extracting it —
// snippet ids are content-addressed from (path, line range) rather than
// tracked in relstore, so the shard itself is the only source of truth
// for "which snippet ids currently exist for this file".
func (s *IndexSet) SnippetIDsForFile(filePath string) ([]string, error) {
	q := bleve.NewTermQuery(filePath)
	q.SetField("file_path")
	req := bleve.NewSearchRequestOptions(q, 10000, 0, false)

	result, err := s.Snippets.Search(req)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(result.Hits))
	for _, h := range result.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// DeleteSymbolsAndSnippetsForFile removes every symbol/snippet document
// belonging to a file, used before re-indexing a changed file during
// incremental sync. Bleve exposes no "delete by term" shortcut in the
// version used here, so callers supply the exact IDs to remove (the
// indexer takes symbol ids from the relstore rows for the file and
// snippet ids from SnippetIDsForFile).
func (s *IndexSet) DeleteSymbolsAndSnippetsForFile(symbolIDs, snippetIDs []string) error {
	for _, id := range symbolIDs {
		if err := s.DeleteSymbol(id); err != nil {
			return err
		}
	}
	for _, id := range snippetIDs {
		if err := s.DeleteSnippet(id); err != nil {
			return err
		}
	}
	return nil
}
