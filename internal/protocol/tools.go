package protocol

import (
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// toolDescriptors is the static tools/list payload, one mcp.Tool per
// spec.md §6 tool, reusing the teacher's wire type for the descriptor
// shape even though dispatch itself bypasses the SDK's request loop.
func toolDescriptors() []*mcp.Tool {
	return []*mcp.Tool{
		{
			Name:        "locate_symbol",
			Description: "Find symbols by exact name, optionally filtered by kind and language. Returns signature-level results ranked by relevance.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"name": {"type": "string", "description": "Exact symbol name to look up."},
					"kind": {"type": "string", "description": "Optional symbol kind filter: function, method, type, interface, const, var, module."},
					"language": {"type": "string", "description": "Optional source language filter."},
					"ref": {"type": "string", "description": "Optional ref (branch/commit) to query. Defaults via the ref resolution chain."},
					"limit": {"type": "integer", "description": "Max results (default 10)."},
					"workspace": {"type": "string", "description": "Optional workspace path override."}
				},
				"required": ["name"]
			}`),
		},
		{
			Name:        "search_code",
			Description: "Full-text search across indexed symbols, snippets, and files, ranked with exact-match and path-affinity boosts.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"query": {"type": "string", "description": "Free-text search query."},
					"ref": {"type": "string"},
					"language": {"type": "string"},
					"limit": {"type": "integer"},
					"detail_level": {"type": "string", "enum": ["signature", "location", "context"]},
					"compact": {"type": "boolean"},
					"ranking_explain_level": {"type": "string", "enum": ["off", "basic", "full"]},
					"freshness_policy": {"type": "string", "enum": ["permissive", "advisory", "strict"]},
					"workspace": {"type": "string"}
				},
				"required": ["query"]
			}`),
		},
		{
			Name:        "get_symbol_hierarchy",
			Description: "Return a symbol's parent and child symbols from the relational store.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"symbol_stable_id": {"type": "string"},
					"ref": {"type": "string"},
					"workspace": {"type": "string"}
				},
				"required": ["symbol_stable_id"]
			}`),
		},
		{
			Name:        "find_related_symbols",
			Description: "Return symbols related to a given symbol via file-level import edges.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"symbol_stable_id": {"type": "string"},
					"ref": {"type": "string"},
					"workspace": {"type": "string"}
				},
				"required": ["symbol_stable_id"]
			}`),
		},
		{
			Name:        "get_code_context",
			Description: "Return a symbol's signature, doc comment, and surrounding source context.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"symbol_stable_id": {"type": "string"},
					"ref": {"type": "string"},
					"workspace": {"type": "string"}
				},
				"required": ["symbol_stable_id"]
			}`),
		},
		{
			Name:        "get_file_outline",
			Description: "Return every symbol defined in a file, ordered by start line.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"path": {"type": "string"},
					"ref": {"type": "string"},
					"workspace": {"type": "string"}
				},
				"required": ["path"]
			}`),
		},
		{
			Name:        "index_repo",
			Description: "Spawn an index job for the workspace: a full index when force is set or no index exists yet, otherwise an incremental sync. Returns the job id immediately; poll health_check's active_job for its status.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"force": {"type": "boolean"},
					"ref": {"type": "string"},
					"workspace": {"type": "string"}
				}
			}`),
		},
		{
			Name:        "sync_repo",
			Description: "Spawn an incremental re-index of the workspace against its current ref.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"ref": {"type": "string"},
					"workspace": {"type": "string"}
				}
			}`),
		},
		{
			Name:        "health_check",
			Description: "Return the aggregated server health payload: overall status, store probes, active job, and per-project index stats.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"workspace": {"type": "string"}
				}
			}`),
		},
	}
}

// jsonContentResult builds the MCP tool-content envelope
// {"content":[{"type":"text","text":...}]} wrapping data as
// pretty-printed JSON, matching the teacher's jsonResult helper.
func jsonContentResult(data any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errContentResult("internal_error: " + err.Error())
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(b)}}}
}

func errContentResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: msg}}, IsError: true}
}

func parseArgs(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func argStringPtr(args map[string]any, key string) *string {
	v, ok := args[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func argBool(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func argInt(args map[string]any, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	f, ok := v.(float64)
	if !ok {
		return def
	}
	return int(f)
}
