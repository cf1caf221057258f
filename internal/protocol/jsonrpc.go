// Package protocol implements CodeCompass's JSON-RPC 2.0 dispatcher: method
// routing, the MCP tool-content envelope, domain-error-to-wire mapping, and
// health aggregation. Grounded directly in the original's
// codecompass-mcp/src/server.rs and tool_calls/shared.rs, which hand-roll
// the same envelope rather than going through a framework — the line-level
// control internal/transport needs (malformed-line recovery, explicit
// flush-per-reply) isn't available from the teacher's managed
// modelcontextprotocol/go-sdk request loop, so this package reimplements
// the dispatch loop by hand while still using the SDK's mcp.Tool /
// mcp.CallToolResult wire types for the tools/list descriptor shapes and the
// tool-content envelope, keeping that teacher dependency exercised.
package protocol

import (
	"encoding/json"
)

// Request is a JSON-RPC 2.0 request object.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response object. Exactly one of Result/Error
// is populated.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 transport-level error, distinct from a
// DomainError carried inside a successful tool-content result.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Standard JSON-RPC 2.0 error codes.
const (
	ParseError     = -32700
	MethodNotFound = -32601
	InternalError  = -32603
	InvalidParams  = -32602
)

func errorResponse(id json.RawMessage, code int, message string) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message}}
}

func resultResponse(id json.RawMessage, result any) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Result: result}
}

// toolsCallParams is tools/call's params shape.
type toolsCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}
