// Package ftsindex is the full-text half of CodeCompass's dual-store
// index: three bleve indexes (symbols, snippets, files) per project,
// covered by a manifest.json sidecar recording schema/parser/generation
// versions. Grounded in the retrieval pack's use of
// github.com/blevesearch/bleve/v2 (see go.mod manifests for
// ChamsBouzaiene-dodo, J-1000-mindcli, Aman-CERP-amanmcp) as the Go
// library standing in for the original's tantivy-based full-text engine.
package ftsindex

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

const (
	symbolsShard  = "symbols"
	snippetsShard = "snippets"
	filesShard    = "files"
)

// IndexSet wraps the three bleve indexes backing one project's full-text
// store.
type IndexSet struct {
	dir      string
	Symbols  bleve.Index
	Snippets bleve.Index
	Files    bleve.Index
}

// Open opens (or creates, if absent) all three shards under
// <dataDir>/index/{symbols,snippets,files}.
func Open(dataDir string) (*IndexSet, error) {
	root := filepath.Join(dataDir, "index")
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("mkdir index root: %w", err)
	}

	symbols, err := openOrCreateShard(filepath.Join(root, symbolsShard), symbolDocMapping())
	if err != nil {
		return nil, fmt.Errorf("open symbols shard: %w", err)
	}
	snippets, err := openOrCreateShard(filepath.Join(root, snippetsShard), snippetDocMapping())
	if err != nil {
		symbols.Close()
		return nil, fmt.Errorf("open snippets shard: %w", err)
	}
	files, err := openOrCreateShard(filepath.Join(root, filesShard), fileDocMapping())
	if err != nil {
		symbols.Close()
		snippets.Close()
		return nil, fmt.Errorf("open files shard: %w", err)
	}

	return &IndexSet{dir: root, Symbols: symbols, Snippets: snippets, Files: files}, nil
}

// OpenExisting opens all three shards in strict mode: it never creates a
// missing shard, returning bleve.ErrorIndexPathDoesNotExist instead. Used
// by internal/schema's compatibility check, where "no index yet" and
// "index present but unreadable" must be told apart.
func OpenExisting(dataDir string) (*IndexSet, error) {
	root := filepath.Join(dataDir, "index")

	symbols, err := bleve.Open(filepath.Join(root, symbolsShard))
	if err != nil {
		return nil, err
	}
	snippets, err := bleve.Open(filepath.Join(root, snippetsShard))
	if err != nil {
		symbols.Close()
		return nil, err
	}
	files, err := bleve.Open(filepath.Join(root, filesShard))
	if err != nil {
		symbols.Close()
		snippets.Close()
		return nil, err
	}
	return &IndexSet{dir: root, Symbols: symbols, Snippets: snippets, Files: files}, nil
}

// Close closes all three shards.
func (s *IndexSet) Close() error {
	var firstErr error
	for _, idx := range []bleve.Index{s.Symbols, s.Snippets, s.Files} {
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Dir returns the index root directory (parent of the three shard dirs).
func (s *IndexSet) Dir() string {
	return s.dir
}

func openOrCreateShard(path string, m *mapping.IndexMappingImpl) (bleve.Index, error) {
	idx, err := bleve.Open(path)
	if err == nil {
		return idx, nil
	}
	if err != bleve.ErrorIndexPathDoesNotExist {
		return nil, err
	}
	return bleve.New(path, m)
}

func symbolDocMapping() *mapping.IndexMappingImpl {
	m := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("name", textField(true))
	doc.AddFieldMappingsAt("qualified_name", textField(true))
	doc.AddFieldMappingsAt("signature", textField(false))
	doc.AddFieldMappingsAt("doc_comment", textField(false))
	doc.AddFieldMappingsAt("kind", keywordField())
	doc.AddFieldMappingsAt("language", keywordField())
	doc.AddFieldMappingsAt("file_path", keywordField())
	m.AddDocumentMapping("symbol", doc)
	m.DefaultMapping = doc
	return m
}

func snippetDocMapping() *mapping.IndexMappingImpl {
	m := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("text", textField(false))
	doc.AddFieldMappingsAt("file_path", keywordField())
	m.AddDocumentMapping("snippet", doc)
	m.DefaultMapping = doc
	return m
}

func fileDocMapping() *mapping.IndexMappingImpl {
	m := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("path", keywordField())
	doc.AddFieldMappingsAt("language", keywordField())
	m.AddDocumentMapping("file", doc)
	m.DefaultMapping = doc
	return m
}

func textField(includeTermVectors bool) *mapping.FieldMapping {
	f := bleve.NewTextFieldMapping()
	f.Store = true
	f.IncludeInAll = true
	f.IncludeTermVectors = includeTermVectors
	return f
}

func keywordField() *mapping.FieldMapping {
	f := bleve.NewTextFieldMapping()
	f.Store = true
	f.Analyzer = "keyword"
	return f
}
