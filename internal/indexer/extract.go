package indexer

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
)

// ExtractResult is everything a single file's parse pass produces.
type ExtractResult struct {
	Symbols  []coretypes.SymbolRecord
	Snippets []coretypes.SnippetRecord
	Imports  []coretypes.ImportEdge
}

// scope tracks an enclosing type/interface declaration while walking, so
// a method nested under a class/struct/trait body can set its
// symbol_relations.parent_id to the enclosing type's stable id — the
// same ancestor-stack idea as the teacher's registry/FQN pass, collapsed
// into a single traversal since CodeCompass doesn't need the teacher's
// full property graph.
type scope struct {
	stableID      string
	qualifiedName string
}

// ExtractFile parses one file's source and extracts its symbols,
// snippets, and import edges. projectID scopes every record and feeds
// qualifiedName's <project_id>.<path>.<name> composition.
func ExtractFile(projectID string, f FileInfo, source []byte) (ExtractResult, error) {
	source = stripBOM(source)
	spec := forExtension(extOf(f.RelPath))
	if spec == nil {
		return ExtractResult{}, nil
	}

	tree, err := parseSource(f.Language, source)
	if err != nil {
		return ExtractResult{}, err
	}
	defer tree.Close()

	e := &extractor{
		projectID: projectID,
		file:      f,
		source:    source,
		spec:      spec,
	}
	e.walk(tree.RootNode(), nil)
	return ExtractResult{Symbols: e.symbols, Snippets: e.snippets, Imports: e.imports}, nil
}

type extractor struct {
	projectID string
	file      FileInfo
	source    []byte
	spec      *LanguageSpec

	symbols  []coretypes.SymbolRecord
	snippets []coretypes.SnippetRecord
	imports  []coretypes.ImportEdge
}

func (e *extractor) walk(node *tree_sitter.Node, enclosing *scope) {
	if node == nil {
		return
	}

	kind := node.Kind()
	switch {
	case contains(e.spec.ImportNodeTypes, kind):
		if edge, ok := e.extractImport(node); ok {
			e.imports = append(e.imports, edge)
		}
	case contains(e.spec.TypeNodeTypes, kind) || contains(e.spec.InterfaceNodeTypes, kind):
		symKind := coretypes.SymbolType
		if contains(e.spec.InterfaceNodeTypes, kind) {
			symKind = coretypes.SymbolInterface
		}
		if e.file.Language == LangGo {
			if t := node.ChildByFieldName("type"); t != nil && t.Kind() == "interface_type" {
				symKind = coretypes.SymbolInterface
			}
		}
		sym, ok := e.extractSymbol(node, symKind, enclosing)
		if ok {
			e.symbols = append(e.symbols, sym)
			e.addSnippet(node, sym.StableID)
			child := &scope{stableID: sym.StableID, qualifiedName: sym.QualifiedName}
			e.walkChildren(node, child)
			return
		}
	case contains(e.spec.MethodNodeTypes, kind):
		sym, ok := e.extractSymbol(node, coretypes.SymbolMethod, e.methodScope(node, enclosing))
		if ok {
			e.symbols = append(e.symbols, sym)
			e.addSnippet(node, sym.StableID)
		}
	case contains(e.spec.FunctionNodeTypes, kind):
		sym, ok := e.extractSymbol(node, coretypes.SymbolFunction, enclosing)
		if ok {
			e.symbols = append(e.symbols, sym)
			e.addSnippet(node, sym.StableID)
		}
	case contains(e.spec.ConstNodeTypes, kind):
		e.extractDecls(node, coretypes.SymbolConst, enclosing)
	case contains(e.spec.VarNodeTypes, kind):
		e.extractDecls(node, coretypes.SymbolVar, enclosing)
	}

	e.walkChildren(node, enclosing)
}

func (e *extractor) walkChildren(node *tree_sitter.Node, enclosing *scope) {
	for i := uint(0); i < node.ChildCount(); i++ {
		e.walk(node.Child(i), enclosing)
	}
}

// methodScope resolves a Go method's enclosing type from its receiver
// field, since Go methods are declared at file scope rather than nested
// inside a type_spec's body the way TypeScript class methods are.
func (e *extractor) methodScope(node *tree_sitter.Node, enclosing *scope) *scope {
	if e.file.Language != LangGo {
		return enclosing
	}
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return enclosing
	}
	typeName := receiverTypeName(recv, e.source)
	if typeName == "" {
		return enclosing
	}
	qn := qualifiedName(e.projectID, e.file.RelPath, typeName)
	sig := ""
	root := node
	for root.Parent() != nil {
		root = root.Parent()
	}
	walkTree(root, func(n *tree_sitter.Node) bool {
		if n.Kind() != "type_spec" {
			return true
		}
		if name := n.ChildByFieldName("name"); name != nil && nodeText(name, e.source) == typeName {
			sig = signatureOf(n, e.source)
		}
		return false
	})
	return &scope{stableID: stableSymbolID(e.file.Language, qn, sig), qualifiedName: qn}
}

// receiverTypeName extracts the bare type identifier from a Go method's
// receiver parameter list, stripping a leading "*" and any generic
// parameter list.
func receiverTypeName(recv *tree_sitter.Node, source []byte) string {
	for i := uint(0); i < recv.NamedChildCount(); i++ {
		param := recv.NamedChild(i)
		typeNode := param.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		text := nodeText(typeNode, source)
		text = strings.TrimPrefix(text, "*")
		if idx := strings.IndexAny(text, "[ "); idx != -1 {
			text = text[:idx]
		}
		return text
	}
	return ""
}

func (e *extractor) extractSymbol(node *tree_sitter.Node, kind coretypes.SymbolKind, enclosing *scope) (coretypes.SymbolRecord, bool) {
	nameNode := node.ChildByFieldName(e.spec.NameField)
	if nameNode == nil {
		return coretypes.SymbolRecord{}, false
	}
	name := nodeText(nameNode, e.source)
	if name == "" {
		return coretypes.SymbolRecord{}, false
	}

	qn := qualifiedName(e.projectID, e.file.RelPath, name)
	if enclosing != nil {
		qn = enclosing.qualifiedName + "." + name
	}

	startLine, endLine := lineRange(node)
	signature := signatureOf(node, e.source)
	stableID := stableSymbolID(e.file.Language, qn, signature)

	parentID := ""
	if enclosing != nil {
		parentID = enclosing.stableID
	}

	return coretypes.SymbolRecord{
		StableID:      stableID,
		ProjectID:     e.projectID,
		Kind:          kind,
		Name:          name,
		QualifiedName: qn,
		Language:      string(e.file.Language),
		FilePath:      e.file.RelPath,
		StartLine:     startLine,
		EndLine:       endLine,
		Signature:     signature,
		ParentID:      parentID,
		DocComment:    docCommentBefore(node, e.spec, e.source),
	}, true
}

// extractDecls handles const/var declaration nodes, which in Go and Rust
// can bind multiple names in one declaration (e.g. `const a, b = 1, 2`);
// each bound identifier becomes its own SymbolRecord.
func (e *extractor) extractDecls(node *tree_sitter.Node, kind coretypes.SymbolKind, enclosing *scope) {
	walkTree(node, func(n *tree_sitter.Node) bool {
		if n.Kind() != "identifier" {
			return true
		}
		p := n.Parent()
		if p == nil || !contains([]string{"const_spec", "var_spec", "const_item", "static_item"}, p.Kind()) {
			return false
		}
		if v := p.ChildByFieldName("value"); v != nil && v.StartByte() <= n.StartByte() {
			return false
		}
		name := nodeText(n, e.source)
		if name == "" {
			return false
		}
		qn := qualifiedName(e.projectID, e.file.RelPath, name)
		if enclosing != nil {
			qn = enclosing.qualifiedName + "." + name
		}
		startLine, endLine := lineRange(node)
		sig := normalizeSignature(nodeText(node, e.source))
		parentID := ""
		if enclosing != nil {
			parentID = enclosing.stableID
		}
		e.symbols = append(e.symbols, coretypes.SymbolRecord{
			StableID:      stableSymbolID(e.file.Language, qn, sig),
			ProjectID:     e.projectID,
			Kind:          kind,
			Name:          name,
			QualifiedName: qn,
			Language:      string(e.file.Language),
			FilePath:      e.file.RelPath,
			StartLine:     startLine,
			EndLine:       endLine,
			Signature:     sig,
			ParentID:      parentID,
		})
		return false
	})
}

// addSnippet records a full-definition snippet for a symbol, backing
// search_code's line-range full-text matches.
func (e *extractor) addSnippet(node *tree_sitter.Node, symbolID string) {
	startLine, endLine := lineRange(node)
	text := nodeText(node, e.source)
	const maxSnippetBytes = 8192
	if len(text) > maxSnippetBytes {
		text = text[:maxSnippetBytes]
	}
	e.snippets = append(e.snippets, coretypes.SnippetRecord{
		ID:        snippetID(e.file.RelPath, startLine, endLine),
		ProjectID: e.projectID,
		FilePath:  e.file.RelPath,
		StartLine: startLine,
		EndLine:   endLine,
		Text:      text,
		SymbolID:  symbolID,
	})
}

// extractImport resolves an import/use node to the module path it names,
// best-effort per language since CodeCompass only needs the path-affinity
// boost in internal/query, not a fully resolved import graph.
func (e *extractor) extractImport(node *tree_sitter.Node) (coretypes.ImportEdge, bool) {
	var module string
	switch e.file.Language {
	case LangGo:
		walkTree(node, func(n *tree_sitter.Node) bool {
			if n.Kind() == "interpreted_string_literal" && module == "" {
				module = strings.Trim(nodeText(n, e.source), `"`)
				return false
			}
			return true
		})
	case LangPython:
		if nameNode := node.ChildByFieldName("module_name"); nameNode != nil {
			module = nodeText(nameNode, e.source)
		} else if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			module = nodeText(nameNode, e.source)
		}
	case LangRust:
		if argNode := node.ChildByFieldName("argument"); argNode != nil {
			module = nodeText(argNode, e.source)
		}
	case LangTypeScript:
		walkTree(node, func(n *tree_sitter.Node) bool {
			if n.Kind() == "string" && module == "" {
				module = strings.Trim(nodeText(n, e.source), `"'`)
				return false
			}
			return true
		})
	}
	if module == "" {
		return coretypes.ImportEdge{}, false
	}
	return coretypes.ImportEdge{
		ProjectID: e.projectID,
		FromFile:  e.file.RelPath,
		ToModule:  module,
	}, true
}

// signatureOf returns the declaration text up to (but excluding) the
// body, or the full node text if no body field exists — close enough to
// a real signature for stable-id purposes and for display.
func signatureOf(node *tree_sitter.Node, source []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil {
		return normalizeSignature(nodeText(node, source))
	}
	start := node.StartByte()
	end := body.StartByte()
	if end <= start {
		return normalizeSignature(nodeText(node, source))
	}
	return normalizeSignature(string(source[start:end]))
}

// docCommentBefore collects contiguous comment-kind siblings immediately
// preceding node (with no blank line between the last comment and node),
// the convention doc comments follow in all four supported languages.
func docCommentBefore(node *tree_sitter.Node, spec *LanguageSpec, source []byte) string {
	if len(spec.DocCommentNodeTypes) == 0 {
		return ""
	}
	if p := node.Parent(); p != nil && p.Kind() == "type_declaration" && p.NamedChildCount() == 1 {
		node = p
	}
	parent := node.Parent()
	if parent == nil {
		return ""
	}

	var idx = -1
	for i := uint(0); i < parent.ChildCount(); i++ {
		sib := parent.Child(i)
		if sib != nil && sib.StartByte() == node.StartByte() && sib.EndByte() == node.EndByte() {
			idx = int(i)
			break
		}
	}
	if idx <= 0 {
		return ""
	}

	var lines []string
	prevLine := node.StartPosition().Row
	for i := idx - 1; i >= 0; i-- {
		sib := parent.Child(i)
		if sib == nil || !contains(spec.DocCommentNodeTypes, sib.Kind()) {
			break
		}
		if prevLine > 0 && sib.EndPosition().Row < prevLine-1 {
			break // blank line between comment and declaration
		}
		lines = append([]string{strings.TrimSpace(nodeText(sib, source))}, lines...)
		prevLine = sib.StartPosition().Row
	}
	return strings.Join(lines, "\n")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func extOf(relPath string) string {
	idx := strings.LastIndexByte(relPath, '.')
	if idx < 0 {
		return ""
	}
	return relPath[idx:]
}

// stripBOM removes a UTF-8 byte-order mark, the same guard the teacher's
// pipeline applies before handing source to tree-sitter.
func stripBOM(source []byte) []byte {
	if len(source) >= 3 && source[0] == 0xEF && source[1] == 0xBB && source[2] == 0xBF {
		return source[3:]
	}
	return source
}
