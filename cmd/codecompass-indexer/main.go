// Command codecompass-indexer is the out-of-process child
// internal/orchestrator.Orchestrator.Spawn launches for one index_repo or
// sync_repo job. It owns no long-lived state: open the two stores, run
// internal/indexer.Run once, close, exit. Grounded in the teacher's
// single-purpose cmd/codebase-memory-mcp/main.go entrypoint shape, split
// into its own binary since CodeCompass runs indexing as a detached
// process rather than a goroutine on the server itself.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
	"github.com/codecompass-mcp/codecompass/internal/ftsindex"
	"github.com/codecompass-mcp/codecompass/internal/indexer"
	"github.com/codecompass-mcp/codecompass/internal/relstore"
)

// jobIDEnvVar must match internal/orchestrator's constant of the same
// name — the orchestrator sets it, this binary reads it.
const jobIDEnvVar = "CODECOMPASS_JOB_ID"

func main() {
	var projectID, root, dataDir, ref, kindFlag string
	flag.StringVar(&projectID, "project-id", "", "project id to index")
	flag.StringVar(&root, "root", "", "workspace root path")
	flag.StringVar(&dataDir, "data-dir", "", "project data directory")
	flag.StringVar(&ref, "ref", "", "branch/ref being indexed")
	flag.StringVar(&kindFlag, "kind", "index", "job kind: index or sync")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if projectID == "" || root == "" || dataDir == "" || ref == "" {
		fmt.Fprintln(os.Stderr, "codecompass-indexer: -project-id, -root, -data-dir and -ref are required")
		os.Exit(2)
	}
	kind, err := coretypes.ParseJobKind(kindFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "codecompass-indexer:", err)
		os.Exit(2)
	}

	if err := run(projectID, root, dataDir, ref, kind); err != nil {
		slog.Error("codecompass-indexer.failed", "project_id", projectID, "err", err)
		os.Exit(1)
	}
}

func run(projectID, root, dataDir, ref string, kind coretypes.JobKind) error {
	if err := relstore.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	rel, err := relstore.Open(relstore.DBPath(dataDir))
	if err != nil {
		return fmt.Errorf("open relstore: %w", err)
	}
	defer rel.Close()

	fts, err := ftsindex.Open(dataDir)
	if err != nil {
		return fmt.Errorf("open ftsindex: %w", err)
	}
	defer fts.Close()

	opts := indexer.Options{
		ProjectID: projectID,
		RootPath:  root,
		DataDir:   dataDir,
		Ref:       ref,
		Kind:      kind,
		JobID:     os.Getenv(jobIDEnvVar),
	}
	return indexer.Run(context.Background(), rel, fts, opts)
}
