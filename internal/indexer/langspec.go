// Package indexer walks a workspace, parses its source files with
// tree-sitter, and writes the resulting symbols/snippets/files/imports
// into a project's relstore and ftsindex stores. Grounded in the
// teacher's internal/pipeline, internal/lang, internal/parser,
// internal/discover, and internal/fqn packages, trimmed to the four
// languages spec.md §9 names: Go, Python, Rust, TypeScript.
package indexer

// Language identifies one of the four supported source languages.
type Language string

const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangTypeScript Language = "typescript"
)

// LanguageSpec maps a language's tree-sitter node kinds to the
// coretypes.SymbolKind categories the rest of CodeCompass understands.
// Grounded in the teacher's internal/lang.LanguageSpec, trimmed to the
// node-type buckets extract.go actually consumes.
type LanguageSpec struct {
	Language Language

	// FileExtensions maps file extensions (including the leading dot) to
	// this language.
	FileExtensions []string

	// FunctionNodeTypes are tree-sitter node kinds for free functions.
	FunctionNodeTypes []string
	// MethodNodeTypes are tree-sitter node kinds for methods bound to a
	// receiver/class (kept distinct from FunctionNodeTypes so extract.go
	// can tag coretypes.SymbolMethod instead of SymbolFunction).
	MethodNodeTypes []string
	// TypeNodeTypes are tree-sitter node kinds for struct/class/type
	// declarations.
	TypeNodeTypes []string
	// InterfaceNodeTypes are tree-sitter node kinds for interface-like
	// declarations (Go interfaces, TypeScript interfaces).
	InterfaceNodeTypes []string
	// ConstNodeTypes and VarNodeTypes are tree-sitter node kinds for
	// top-level const/var declarations.
	ConstNodeTypes []string
	VarNodeTypes   []string
	// ImportNodeTypes are tree-sitter node kinds for import/use statements.
	ImportNodeTypes []string

	// NameField is the field name tree-sitter exposes on a definition node
	// for its identifier, used with Node.ChildByFieldName.
	NameField string
	// DocCommentNodeTypes are the sibling node kinds immediately preceding
	// a definition that, when present, are treated as its doc comment.
	DocCommentNodeTypes []string
}

var registry = map[string]*LanguageSpec{}
var byLanguage = map[Language]*LanguageSpec{}

func register(spec *LanguageSpec) {
	byLanguage[spec.Language] = spec
	for _, ext := range spec.FileExtensions {
		registry[ext] = spec
	}
}

func init() {
	register(&LanguageSpec{
		Language:            LangGo,
		FileExtensions:      []string{".go"},
		FunctionNodeTypes:   []string{"function_declaration"},
		MethodNodeTypes:     []string{"method_declaration"},
		TypeNodeTypes:       []string{"type_spec"},
		InterfaceNodeTypes:  nil, // type_spec with an interface_type body; handled in extract.go
		ConstNodeTypes:      []string{"const_declaration"},
		VarNodeTypes:        []string{"var_declaration"},
		ImportNodeTypes:     []string{"import_declaration"},
		NameField:           "name",
		DocCommentNodeTypes: []string{"comment"},
	})
	register(&LanguageSpec{
		Language:            LangPython,
		FileExtensions:      []string{".py"},
		FunctionNodeTypes:   []string{"function_definition"},
		TypeNodeTypes:       []string{"class_definition"},
		ImportNodeTypes:     []string{"import_statement", "import_from_statement"},
		NameField:           "name",
		DocCommentNodeTypes: []string{"comment"},
	})
	register(&LanguageSpec{
		Language:           LangRust,
		FileExtensions:     []string{".rs"},
		FunctionNodeTypes:  []string{"function_item"},
		TypeNodeTypes:      []string{"struct_item", "enum_item", "union_item"},
		InterfaceNodeTypes: []string{"trait_item"},
		ConstNodeTypes:     []string{"const_item", "static_item"},
		ImportNodeTypes:    []string{"use_declaration"},
		NameField:          "name",
		DocCommentNodeTypes: []string{
			"line_comment", "block_comment",
		},
	})
	register(&LanguageSpec{
		Language:           LangTypeScript,
		FileExtensions:     []string{".ts", ".tsx"},
		FunctionNodeTypes:  []string{"function_declaration", "function_signature"},
		MethodNodeTypes:    []string{"method_definition", "method_signature"},
		TypeNodeTypes:      []string{"class_declaration", "abstract_class_declaration", "type_alias_declaration"},
		InterfaceNodeTypes: []string{"interface_declaration"},
		ImportNodeTypes:    []string{"import_statement"},
		NameField:          "name",
		DocCommentNodeTypes: []string{
			"comment",
		},
	})
}

// forExtension returns the LanguageSpec registered for a file extension,
// or nil if the extension isn't one CodeCompass indexes.
func forExtension(ext string) *LanguageSpec {
	return registry[ext]
}

// SupportedExtensions returns every file extension indexed by a
// registered language.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	return exts
}
