package indexer

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
	"github.com/codecompass-mcp/codecompass/internal/ftsindex"
	"github.com/codecompass-mcp/codecompass/internal/relstore"
)

func TestRunFullIndexThenIncrementalSync(t *testing.T) {
	root := t.TempDir()
	initGitRepo(t, root)
	mustWrite(t, filepath.Join(root, "main.go"), `package main

func Add(a, b int) int {
	return a + b
}
`)
	mustWrite(t, filepath.Join(root, "util.go"), `package main

func Sub(a, b int) int {
	return a - b
}
`)

	dataDir := t.TempDir()
	rel, err := relstore.Open(relstore.DBPath(dataDir))
	if err != nil {
		t.Fatalf("relstore.Open: %v", err)
	}
	defer rel.Close()

	fts, err := ftsindex.Open(dataDir)
	if err != nil {
		t.Fatalf("ftsindex.Open: %v", err)
	}
	defer fts.Close()

	opts := Options{ProjectID: "proj", RootPath: root, DataDir: dataDir, Ref: "main", Kind: coretypes.JobKindIndex}
	if err := Run(context.Background(), rel, fts, opts); err != nil {
		t.Fatalf("Run (full): %v", err)
	}

	hashes, err := rel.AllFileHashes("proj")
	if err != nil {
		t.Fatalf("AllFileHashes: %v", err)
	}
	if len(hashes) != 2 {
		t.Fatalf("expected 2 indexed files, got %d", len(hashes))
	}

	hits, err := fts.SearchSymbols("Add", 10)
	if err != nil {
		t.Fatalf("SearchSymbols: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected one hit for Add, got %d", len(hits))
	}

	manifest, err := rel.GetManifest("proj")
	if err != nil {
		t.Fatalf("GetManifest: %v", err)
	}
	if manifest.Generation != 1 {
		t.Errorf("expected generation 1 after first full index, got %d", manifest.Generation)
	}

	branch, err := rel.GetBranchState("proj", "main")
	if err != nil {
		t.Fatalf("GetBranchState: %v", err)
	}
	if branch.FileCount != 2 {
		t.Errorf("expected file_count 2, got %d", branch.FileCount)
	}

	// Incremental sync: delete util.go, change main.go.
	if err := os.Remove(filepath.Join(root, "util.go")); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, filepath.Join(root, "main.go"), `package main

func Add(a, b, c int) int {
	return a + b + c
}
`)

	syncOpts := opts
	syncOpts.Kind = coretypes.JobKindSync
	if err := Run(context.Background(), rel, fts, syncOpts); err != nil {
		t.Fatalf("Run (sync): %v", err)
	}

	hashes, err = rel.AllFileHashes("proj")
	if err != nil {
		t.Fatalf("AllFileHashes after sync: %v", err)
	}
	if len(hashes) != 1 {
		t.Fatalf("expected 1 file remaining after sync, got %d", len(hashes))
	}

	subHits, err := fts.SearchSymbols("Sub", 10)
	if err != nil {
		t.Fatalf("SearchSymbols: %v", err)
	}
	if len(subHits) != 0 {
		t.Fatalf("expected Sub's symbol to be removed after util.go's deletion, got %+v", subHits)
	}

	manifest, err = rel.GetManifest("proj")
	if err != nil {
		t.Fatalf("GetManifest after sync: %v", err)
	}
	if manifest.Generation != 2 {
		t.Errorf("expected generation 2 after incremental sync, got %d", manifest.Generation)
	}
}

// initGitRepo makes root a minimal git repo with one commit, so
// vcsprobe.DetectHeadCommit succeeds during finalize.
func initGitRepo(t *testing.T, root string) {
	t.Helper()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = root
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com")
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Skipf("git unavailable in test environment: %v: %s", err, out)
		}
	}
	run("init", "-q")
	mustWrite(t, filepath.Join(root, ".gitkeep"), "")
	run("add", ".")
	run("commit", "-q", "-m", "initial")
}
