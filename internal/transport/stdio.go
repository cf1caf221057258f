// Package transport implements CodeCompass's two external surfaces — a
// stdio line transport and an HTTP transport — both dispatching through
// the same internal/protocol.Server. Grounded in the original's
// codecompass-mcp/src/http.rs (route shape: GET /health, POST /) and
// DeusData-codebase-memory-mcp/internal/watcher/watcher.go (goroutine +
// context-cancellation idiom, reused here for Serve's shutdown goroutine).
package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/codecompass-mcp/codecompass/internal/protocol"
)

// maxLineBytes bounds a single stdio request line; anything larger is
// rejected rather than read into memory unbounded.
const maxLineBytes = 10 * 1024 * 1024

// Stdio runs the newline-delimited JSON-RPC loop over r/w: one request per
// line, one reply per line, flushed immediately so a client piping output
// sees each response without buffering delay. A malformed line produces a
// parse-error reply and the loop continues — it never aborts the session
// over one bad line, matching the original stdio transport's recovery
// behavior.
func Stdio(ctx context.Context, srv *protocol.Server, r io.Reader, w io.Writer, logger *slog.Logger) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	bw := bufio.NewWriter(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		reply := srv.HandleRaw(ctx, line)
		if reply == nil {
			continue
		}
		if _, err := bw.Write(reply); err != nil {
			return fmt.Errorf("transport: write reply: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("transport: write newline: %w", err)
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("transport: flush reply: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("stdio scan error", "error", err)
		return fmt.Errorf("transport: scan: %w", err)
	}
	return nil
}

// decodeRequest decodes one line into a protocol.Request without going
// through the full dispatcher.
func decodeRequest(line []byte) (protocol.Request, error) {
	var req protocol.Request
	err := json.Unmarshal(line, &req)
	return req, err
}
