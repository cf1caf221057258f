package protocol

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codecompass-mcp/codecompass/internal/orchestrator"
	"github.com/codecompass-mcp/codecompass/internal/schema"
	"github.com/codecompass-mcp/codecompass/internal/workspace"
)

func newTestServer(t *testing.T, dir string) *Server {
	t.Helper()
	w := workspace.NewRouter(t.TempDir(), dir, nil)
	o := orchestrator.New("/bin/true")
	return NewServer(w, o, schema.Versions{SchemaVersion: 1, ParserVersion: 1}, "test")
}

func TestHandleMessageInitialize(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	resp := s.HandleMessage(context.Background(), Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "initialize"})
	if resp == nil || resp.Error != nil {
		t.Fatalf("expected success, got %+v", resp)
	}
}

func TestHandleMessageNotificationReturnsNil(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	resp := s.HandleMessage(context.Background(), Request{JSONRPC: "2.0", Method: "notifications/initialized"})
	if resp != nil {
		t.Fatalf("expected nil response for notification, got %+v", resp)
	}
}

func TestHandleMessageToolsList(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	resp := s.HandleMessage(context.Background(), Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "tools/list"})
	if resp == nil || resp.Error != nil {
		t.Fatalf("expected success, got %+v", resp)
	}
	m, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("expected map result, got %T", resp.Result)
	}
	tools, ok := m["tools"].([]*mcp.Tool)
	if !ok || len(tools) != 9 {
		t.Fatalf("expected 9 tool descriptors, got %v", m["tools"])
	}
}

func TestHandleMessageUnknownMethod(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	resp := s.HandleMessage(context.Background(), Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "bogus"})
	if resp == nil || resp.Error == nil || resp.Error.Code != MethodNotFound {
		t.Fatalf("expected MethodNotFound, got %+v", resp)
	}
}

func TestToolsCallUnknownTool(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	params, _ := json.Marshal(toolsCallParams{Name: "does_not_exist"})
	resp := s.HandleMessage(context.Background(), Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "tools/call", Params: params})
	if resp == nil || resp.Error == nil || resp.Error.Code != MethodNotFound {
		t.Fatalf("expected MethodNotFound, got %+v", resp)
	}
}

func TestToolsCallLocateSymbolOnFreshWorkspaceIsIndexIncompatible(t *testing.T) {
	dir := t.TempDir()
	s := newTestServer(t, dir)

	args, _ := json.Marshal(map[string]any{"name": "Foo"})
	params, _ := json.Marshal(toolsCallParams{Name: "locate_symbol", Arguments: args})
	resp := s.HandleMessage(context.Background(), Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "tools/call", Params: params})
	if resp == nil || resp.Error != nil {
		t.Fatalf("expected a tool-content result, not a transport error: %+v", resp)
	}

	b, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	var content struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	if err := json.Unmarshal(b, &content); err != nil {
		t.Fatalf("unmarshal content envelope: %v", err)
	}
	if len(content.Content) == 0 {
		t.Fatalf("expected non-empty content")
	}

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(content.Content[0].Text), &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Error.Code != "index_incompatible" {
		t.Fatalf("expected index_incompatible, got %q", payload.Error.Code)
	}
}

func TestToolsCallLocateSymbolRejectsEmptyName(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	args, _ := json.Marshal(map[string]any{"name": ""})
	params, _ := json.Marshal(toolsCallParams{Name: "locate_symbol", Arguments: args})
	resp := s.HandleMessage(context.Background(), Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "tools/call", Params: params})
	if resp == nil || resp.Error != nil {
		t.Fatalf("expected a tool-content error result, got transport error %+v", resp)
	}
}

func TestHealthCheckReportsReadyWithNoProject(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	params, _ := json.Marshal(toolsCallParams{Name: "health_check"})
	resp := s.HandleMessage(context.Background(), Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "tools/call", Params: params})
	if resp == nil || resp.Error != nil {
		t.Fatalf("expected success, got %+v", resp)
	}
}
