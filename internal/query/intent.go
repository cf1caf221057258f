// Package query implements locate_symbol and search_code: intent
// classification, rerank boosting, dedup, detail-level projection,
// payload safety truncation, ranking explanations, and deterministic
// suggested-next-actions. Ported line-for-line in semantics from the
// original's codecompass-query crate and
// codecompass-mcp/src/server/tool_calls/shared.rs, rewritten in Go idiom.
package query

import (
	"strings"
	"unicode"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
)

var pathExtensions = []string{
	".rs", ".ts", ".tsx", ".js", ".jsx", ".py", ".go", ".java", ".c", ".h", ".cpp", ".rb", ".swift",
}

var errorPatterns = []string{
	"error:", "Error:", "panic:", "FATAL", "exception", "Exception", "traceback", "at line", "thread '",
}

var symbolKindWords = map[string]bool{
	"fn": true, "func": true, "function": true, "struct": true, "class": true,
	"enum": true, "trait": true, "interface": true, "type": true, "const": true, "method": true,
}

// ClassifyIntent classifies a raw query string into an intent category.
// The search path does not call it: Rerank applies the same boosts and
// shards are not weighted differently, whatever the query's intent.
func ClassifyIntent(query string) coretypes.QueryIntent {
	trimmed := strings.TrimSpace(query)

	if isPathQuery(trimmed) {
		return coretypes.IntentPath
	}
	if isErrorQuery(trimmed) {
		return coretypes.IntentError
	}
	if isSymbolQuery(trimmed) {
		return coretypes.IntentSymbol
	}
	return coretypes.IntentNaturalLanguage
}

func isPathQuery(query string) bool {
	if strings.ContainsAny(query, "/\\") {
		return true
	}
	for _, ext := range pathExtensions {
		if strings.HasSuffix(query, ext) {
			return true
		}
	}
	return false
}

func isErrorQuery(query string) bool {
	if strings.ContainsAny(query, `"'`) {
		return true
	}
	for _, pattern := range errorPatterns {
		if strings.Contains(query, pattern) {
			return true
		}
	}
	return false
}

func isSymbolQuery(query string) bool {
	words := strings.Fields(query)

	if len(words) == 1 {
		word := words[0]
		if len(word) > 1 && hasUppercaseAfterFirst(word) {
			return true
		}
		if strings.Contains(word, "_") {
			return true
		}
		if strings.Contains(word, "::") || (strings.Contains(word, ".") && !isPathQuery(word)) {
			return true
		}
		if isAlphanumericOrUnderscore(word) && len(word) > 2 {
			return true
		}
	}

	if len(words) == 2 && symbolKindWords[strings.ToLower(words[0])] {
		return true
	}

	return false
}

func hasUppercaseAfterFirst(word string) bool {
	runes := []rune(word)
	for _, r := range runes[1:] {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func isAlphanumericOrUnderscore(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
