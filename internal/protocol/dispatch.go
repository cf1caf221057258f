package protocol

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
)

// initializeResult is the payload returned from the initialize method,
// mirroring the subset of the MCP initialize handshake CodeCompass's
// transports need: protocol version and server identity.
type initializeResult struct {
	ProtocolVersion string           `json:"protocolVersion"`
	ServerInfo      mcp.Implementation `json:"serverInfo"`
	Capabilities    map[string]any   `json:"capabilities"`
}

const mcpProtocolVersion = "2024-11-05"

// HandleMessage dispatches a single decoded JSON-RPC request and returns the
// response to write back, or nil for notifications/initialized (no reply).
// internal/transport calls this once per line/request; it never touches I/O
// itself, keeping the line-recovery and flush-per-reply logic in the
// transport layer where spec.md §4.H requires it.
func (s *Server) HandleMessage(ctx context.Context, req Request) *Response {
	if req.Method == "notifications/initialized" {
		return nil
	}

	switch req.Method {
	case "initialize":
		return resultResponse(req.ID, initializeResult{
			ProtocolVersion: mcpProtocolVersion,
			ServerInfo:      mcp.Implementation{Name: "codecompass", Version: s.Version},
			Capabilities:    map[string]any{"tools": map[string]any{}},
		})
	case "tools/list":
		return resultResponse(req.ID, map[string]any{"tools": toolDescriptors()})
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return errorResponse(req.ID, MethodNotFound, "method not found: "+req.Method)
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req Request) *Response {
	var params toolsCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, InvalidParams, "invalid tools/call params: "+err.Error())
	}

	handler, ok := handlers[params.Name]
	if !ok {
		return errorResponse(req.ID, MethodNotFound, "unknown tool: "+params.Name)
	}

	args, err := parseArgs(params.Arguments)
	if err != nil {
		return errorResponse(req.ID, InvalidParams, "invalid tool arguments: "+err.Error())
	}

	result, derr := handler(ctx, s, args)
	if derr != nil {
		return resultResponse(req.ID, domainErrorResult(derr))
	}
	return resultResponse(req.ID, jsonContentResult(result))
}

// domainErrorResult wraps a DomainError in the MCP tool-content envelope
// with IsError set, per spec.md §7: domain errors are reported as tool
// results, not JSON-RPC transport errors, so clients see the error code
// and remediation alongside any partial metadata.
func domainErrorResult(derr *coretypes.DomainError) *mcp.CallToolResult {
	errObj := map[string]any{
		"code":        string(derr.Code),
		"message":     derr.Message,
		"remediation": derr.Remediation,
	}
	if derr.Data != nil {
		errObj["data"] = derr.Data
	}
	result := jsonContentResult(map[string]any{"error": errObj})
	result.IsError = true
	return result
}

// HandleRaw decodes, dispatches, and re-encodes a single request body; a
// body that fails to decode gets a parse-error reply with a null id. The
// stdio transport calls it once per line; the HTTP transport's POST /
// handler decodes the body itself and calls HandleMessage.
func (s *Server) HandleRaw(ctx context.Context, raw []byte) []byte {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		resp := errorResponse(nil, ParseError, fmt.Sprintf("parse error: %v", err))
		b, _ := json.Marshal(resp)
		return b
	}
	resp := s.HandleMessage(ctx, req)
	if resp == nil {
		return nil
	}
	b, _ := json.Marshal(resp)
	return b
}
