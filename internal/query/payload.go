package query

import (
	"encoding/json"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
)

// DefaultMaxResponseBytes is the payload safety ceiling applied when a
// caller doesn't override max_response_bytes, per spec.md §4.E.
const DefaultMaxResponseBytes = 64 * 1024

// ResultItem is the JSON-serializable projection of one Result at a
// given detail level, ready to hand to internal/protocol's MCP envelope.
type ResultItem map[string]any

// ProjectResult builds the caller-facing item for a result at the
// requested detail level. sym is nil for non-symbol (snippet/file)
// results. bodyPreview, when non-empty, is the source excerpt enrichment
// Context detail level adds (the caller reads it from the working tree
// or an already-loaded snippet; this package doesn't touch the
// filesystem itself).
func ProjectResult(r Result, sym *coretypes.SymbolRecord, detail coretypes.DetailLevel, compact bool, bodyPreview string) ResultItem {
	item := ResultItem{
		"result_id":  r.ResultID,
		"type":       string(r.ResultType),
		"path":       r.Path,
		"line_start": r.LineStart,
		"line_end":   r.LineEnd,
		"score":      r.Score,
	}
	if r.Name != "" {
		item["name"] = r.Name
	}
	if r.SymbolStableID != "" {
		item["symbol_stable_id"] = r.SymbolStableID
	}

	if compact {
		return item
	}

	if sym != nil {
		item["kind"] = sym.Kind.String()
		item["language"] = sym.Language
		item["qualified_name"] = sym.QualifiedName
		if detail != coretypes.DetailLocation {
			item["signature"] = sym.Signature
		}
	}

	if detail == coretypes.DetailContext && bodyPreview != "" {
		item["body_preview"] = bodyPreview
	}

	return item
}

// EnforcePayloadSafetyLimit packs items into a byte budget, matching the
// original's enforce_payload_safety_limit: accounts for the enclosing
// '[' ']' (2 bytes) plus one comma-separator byte between items, and
// stops before the first item that would overflow. If maxBytes is 0, the
// default applies. Returns an empty, non-nil slice with truncated=true
// if even the first item doesn't fit.
func EnforcePayloadSafetyLimit(items []ResultItem, maxBytes int) (out []ResultItem, truncated bool) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxResponseBytes
	}

	out = make([]ResultItem, 0, len(items))
	used := 2 // '[' + ']'
	for _, item := range items {
		b, err := json.Marshal(item)
		size := 0
		if err == nil {
			size = len(b)
		}
		separator := 0
		if len(out) > 0 {
			separator = 1
		}
		if used+separator+size > maxBytes {
			truncated = true
			break
		}
		used += separator + size
		out = append(out, item)
	}
	return out, truncated
}
