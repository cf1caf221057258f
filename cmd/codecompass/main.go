// Command codecompass is CodeCompass's process entrypoint: it loads
// configuration, builds the workspace router and orchestrator, runs the
// startup sweep and prewarm pass, then serves one of two transports.
// Flag parsing follows the teacher's manual os.Args style
// (cmd/codebase-memory-mcp/main.go) rather than a flag-parsing library
// the teacher's stack doesn't use.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/codecompass-mcp/codecompass/internal/config"
	"github.com/codecompass-mcp/codecompass/internal/orchestrator"
	"github.com/codecompass-mcp/codecompass/internal/protocol"
	"github.com/codecompass-mcp/codecompass/internal/schema"
	"github.com/codecompass-mcp/codecompass/internal/transport"
	"github.com/codecompass-mcp/codecompass/internal/vcsprobe"
	"github.com/codecompass-mcp/codecompass/internal/workspace"
)

var version = "dev"

// exit codes per spec.md §6.
const (
	exitOK           = 0
	exitGenericError = 1
	exitInvalidInput = 2
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	os.Exit(run(os.Args[1:], logger))
}

func run(args []string, logger *slog.Logger) int {
	if len(args) > 0 && args[0] == "--version" {
		fmt.Println("codecompass", version)
		return exitOK
	}

	if len(args) > 0 && args[0] == "init" {
		return runInit(args[1:])
	}

	httpAddr := ""
	workspaceRoot := "."
	rest := args
	if len(rest) > 0 && rest[0] == "serve" {
		rest = rest[1:]
	}
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--http":
			if i+1 >= len(rest) {
				fmt.Fprintln(os.Stderr, "codecompass: --http requires an address, e.g. --http :8080")
				return exitInvalidInput
			}
			httpAddr = rest[i+1]
			i++
		case "--workspace":
			if i+1 >= len(rest) {
				fmt.Fprintln(os.Stderr, "codecompass: --workspace requires a path")
				return exitInvalidInput
			}
			workspaceRoot = rest[i+1]
			i++
		default:
			fmt.Fprintf(os.Stderr, "codecompass: unrecognized argument %q\n", rest[i])
			return exitInvalidInput
		}
	}

	return serve(workspaceRoot, httpAddr, logger)
}

// runInit bootstraps a workspace without starting a transport: it
// resolves and registers the project, then exits. Useful for warming a
// project's data directory ahead of the first real client connection.
func runInit(args []string) int {
	path := ""
	for i := 0; i < len(args); i++ {
		if args[i] == "--path" && i+1 < len(args) {
			path = args[i+1]
			i++
		}
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "codecompass: init requires --path <dir>")
		return exitInvalidInput
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "codecompass:", err)
		return exitGenericError
	}
	cfg := config.Load(abs)
	router := workspace.NewRouter(cfg.EffectiveDataDir(), abs, cfg.AllowedRootsOrDefault())
	defer router.CloseAll()

	resolved, err := router.Resolve("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "codecompass:", err)
		return exitInvalidInput
	}
	if err := router.Bootstrap(context.Background(), resolved, defaultRefFor(abs)); err != nil {
		fmt.Fprintln(os.Stderr, "codecompass:", err)
		return exitGenericError
	}
	fmt.Printf("initialized %s as project %s\n", resolved.RootPath, resolved.ProjectID)
	return exitOK
}

func serve(workspaceRoot, httpAddr string, logger *slog.Logger) int {
	abs, err := filepath.Abs(workspaceRoot)
	if err != nil {
		fmt.Fprintln(os.Stderr, "codecompass:", err)
		return exitInvalidInput
	}
	cfg := config.Load(abs)

	router := workspace.NewRouter(cfg.EffectiveDataDir(), abs, cfg.AllowedRootsOrDefault())
	defer router.CloseAll()

	orch := orchestrator.New(cfg.IndexerPath)
	srv := protocol.NewServer(router, orch, schema.CurrentVersions(), version)

	if err := startupSweepAndPrewarm(router, orch, srv, cfg.NoPrewarm, logger); err != nil {
		logger.Error("codecompass.startup_failed", "err", err)
		return exitGenericError
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if httpAddr != "" {
		httpSrv := transport.HTTPServer(srv, logger)
		logger.Info("codecompass.serving", "transport", "http", "addr", httpAddr)
		if err := transport.Serve(ctx, httpSrv, httpAddr); err != nil {
			logger.Error("codecompass.http_failed", "err", err)
			return exitGenericError
		}
		return exitOK
	}

	logger.Info("codecompass.serving", "transport", "stdio")
	if err := transport.Stdio(ctx, srv, os.Stdin, os.Stdout, logger); err != nil {
		logger.Error("codecompass.stdio_failed", "err", err)
		return exitGenericError
	}
	return exitOK
}

// startupSweepAndPrewarm marks any job left running by a prior crash as
// interrupted and, unless disabled, opens every known project's stores
// once so the first real request doesn't pay that cost. Neither step
// blocks the server if an individual project fails to prewarm — a
// broken project's stores just surface as errors on its own requests.
func startupSweepAndPrewarm(router *workspace.Router, orch *orchestrator.Orchestrator, srv *protocol.Server, noPrewarm bool, logger *slog.Logger) error {
	projectIDs, err := router.KnownProjectIDs()
	if err != nil {
		return fmt.Errorf("list known projects: %w", err)
	}

	for _, id := range projectIDs {
		rel, err := router.RelStore(id)
		if err != nil {
			logger.Warn("codecompass.sweep_open_failed", "project_id", id, "err", err)
			continue
		}
		if err := orchestrator.StartupSweep(rel); err != nil {
			logger.Warn("codecompass.sweep_failed", "project_id", id, "err", err)
		}
	}
	srv.MarkStartupSweepDone()

	if noPrewarm {
		return nil
	}
	srv.BeginPrewarm()
	for _, id := range projectIDs {
		if _, err := router.RelStore(id); err != nil {
			logger.Warn("codecompass.prewarm_failed", "project_id", id, "err", err)
		}
	}
	srv.FinishPrewarm()
	return nil
}

func defaultRefFor(root string) string {
	if branch, err := vcsprobe.DetectHeadBranch(root); err == nil && branch != "" {
		return branch
	}
	return "main"
}
