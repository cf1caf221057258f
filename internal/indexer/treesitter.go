package indexer

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// languagesOnce/parserPools mirror the teacher's internal/parser: one
// tree_sitter.Language per supported language, and a sync.Pool of parsers
// per language so concurrent file parsing doesn't allocate a fresh parser
// per file.
var (
	languagesOnce sync.Once
	languages     map[Language]*tree_sitter.Language
	parserPools   map[Language]*sync.Pool
)

func initLanguages() {
	languagesOnce.Do(func() {
		languages = map[Language]*tree_sitter.Language{
			LangGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
			LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			LangRust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
			LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		}
		parserPools = make(map[Language]*sync.Pool, len(languages))
		for l, tsLang := range languages {
			tsLang := tsLang
			parserPools[l] = &sync.Pool{
				New: func() any {
					p := tree_sitter.NewParser()
					if err := p.SetLanguage(tsLang); err != nil {
						panic(fmt.Sprintf("indexer: set language: %v", err))
					}
					return p
				},
			}
		}
	})
}

// parseSource parses source into a tree-sitter AST for l. The caller must
// call tree.Close() when done.
func parseSource(l Language, source []byte) (*tree_sitter.Tree, error) {
	initLanguages()
	pool, ok := parserPools[l]
	if !ok {
		return nil, fmt.Errorf("indexer: unsupported language %q", l)
	}
	p, _ := pool.Get().(*tree_sitter.Parser)
	if p == nil {
		return nil, fmt.Errorf("indexer: failed to get parser for %q", l)
	}
	defer pool.Put(p)

	tree := p.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("indexer: parse failed for %q", l)
	}
	return tree, nil
}

// walkFunc is called for each node during a depth-first AST traversal.
// Returning false skips the node's children.
type walkFunc func(node *tree_sitter.Node) bool

func walkTree(node *tree_sitter.Node, fn walkFunc) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), fn)
	}
}

// nodeText returns the source text a node spans.
func nodeText(node *tree_sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// lineRange converts a node's tree-sitter byte-row range (0-based) to
// CodeCompass's 1-based inclusive [start, end] line numbers.
func lineRange(node *tree_sitter.Node) (start, end int) {
	return rowToLine(node.StartPosition().Row), rowToLine(node.EndPosition().Row)
}

// rowToLine converts a tree-sitter row (uint, 0-based) to a 1-based line
// number, guarding against overflow the way the teacher's safeRowToLine
// does.
func rowToLine(row uint) int {
	const maxInt = int(^uint(0) >> 1)
	if row > uint(maxInt-1) {
		return maxInt
	}
	return int(row) + 1
}
