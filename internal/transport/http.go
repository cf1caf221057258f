package transport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/codecompass-mcp/codecompass/internal/protocol"
)

// defaultMaxConcurrentRequests bounds how many POST / tool calls run at
// once; index_repo/sync_repo spawn their own child process regardless, so
// this only throttles query-tool load, mirroring the original http.rs's
// single-process-at-a-time posture without serializing health checks.
const defaultMaxConcurrentRequests = 16

// maxBodyBytes bounds a single HTTP request body.
const maxBodyBytes = 10 * 1024 * 1024

// HTTPServer builds the two-route HTTP surface spec.md §6 describes:
// GET /health and POST / (JSON-RPC). Grounded in the original's
// run_http_server/health_handler/jsonrpc_handler trio — same routes, same
// 400-on-malformed-body behavior, reimplemented over net/http since the
// teacher pack carries no Go HTTP framework dependency worth adopting here.
func HTTPServer(srv *protocol.Server, logger *slog.Logger) *http.Server {
	sem := make(chan struct{}, defaultMaxConcurrentRequests)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		handleHealth(r.Context(), srv, w)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handleJSONRPC(r.Context(), srv, sem, w, r, logger)
	})

	return &http.Server{Handler: mux}
}

func handleHealth(ctx context.Context, srv *protocol.Server, w http.ResponseWriter) {
	resp := srv.HandleMessage(ctx, protocol.Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "tools/call",
		Params: mustMarshal(map[string]any{"name": "health_check"})})

	w.Header().Set("Content-Type", "application/json")
	if resp.Error != nil {
		w.WriteHeader(http.StatusInternalServerError)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func handleJSONRPC(ctx context.Context, srv *protocol.Server, sem chan struct{}, w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeInvalidInput(w, "failed to read request body: "+err.Error())
		return
	}

	var req protocol.Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeInvalidInput(w, "malformed json-rpc request: "+err.Error())
		return
	}

	sem <- struct{}{}
	defer func() { <-sem }()

	resp := srv.HandleMessage(ctx, req)
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("encode jsonrpc response", "error", err)
	}
}

// writeInvalidInput writes the HTTP 400 body spec.md §4.H requires for an
// ill-formed POST / body: a synthetic invalid_input error JSON, same shape
// a tool handler's domain error would carry.
func writeInvalidInput(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    "invalid_input",
			"message": message,
		},
	})
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Serve runs an *http.Server and shuts it down cleanly when ctx is
// canceled, using an errgroup (teacher dependency) to pair the listener
// goroutine with the shutdown goroutine.
func Serve(ctx context.Context, srv *http.Server, addr string) error {
	srv.Addr = addr
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		return srv.Shutdown(context.Background())
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	return g.Wait()
}
