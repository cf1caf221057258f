package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/codecompass-mcp/codecompass/internal/orchestrator"
	"github.com/codecompass-mcp/codecompass/internal/protocol"
	"github.com/codecompass-mcp/codecompass/internal/schema"
	"github.com/codecompass-mcp/codecompass/internal/workspace"
)

func newTestServer(t *testing.T) *protocol.Server {
	t.Helper()
	w := workspace.NewRouter(t.TempDir(), t.TempDir(), nil)
	o := orchestrator.New("/bin/true")
	return protocol.NewServer(w, o, schema.Versions{SchemaVersion: 1, ParserVersion: 1}, "test")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStdioRoundTripsToolsList(t *testing.T) {
	srv := newTestServer(t)
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n")
	var out bytes.Buffer

	if err := Stdio(context.Background(), srv, in, &out, discardLogger()); err != nil {
		t.Fatalf("Stdio: %v", err)
	}

	var resp protocol.Response
	if err := json.Unmarshal(bytes.TrimSpace(out.Bytes()), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
}

func TestStdioRecoversFromMalformedLine(t *testing.T) {
	srv := newTestServer(t)
	in := strings.NewReader("not json\n" + `{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n")
	var out bytes.Buffer

	if err := Stdio(context.Background(), srv, in, &out, discardLogger()); err != nil {
		t.Fatalf("Stdio: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 reply lines, got %d: %v", len(lines), lines)
	}

	var first protocol.Response
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal first reply: %v", err)
	}
	if first.Error == nil || first.Error.Code != protocol.ParseError {
		t.Fatalf("expected parse error for malformed line, got %+v", first)
	}

	var second protocol.Response
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("unmarshal second reply: %v", err)
	}
	if second.Error != nil {
		t.Fatalf("expected success on the well-formed line, got %+v", second)
	}
}

func TestStdioSkipsBlankLines(t *testing.T) {
	srv := newTestServer(t)
	in := strings.NewReader("\n\n" + `{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n")
	var out bytes.Buffer

	if err := Stdio(context.Background(), srv, in, &out, discardLogger()); err != nil {
		t.Fatalf("Stdio: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output for blank lines + a notification, got %q", out.String())
	}
}
