package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
	"github.com/codecompass-mcp/codecompass/internal/relstore"
)

// These tests check the job-row bookkeeping directly against an in-memory
// relstore; the Spawn tests run a small shell script written by
// writeFakeIndexer in place of codecompass-indexer.

func newRelStore(t *testing.T) *relstore.Store {
	t.Helper()
	rel, err := relstore.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { rel.Close() })
	if err := rel.UpsertProject(coretypes.Project{ID: "proj-1", RootPath: "/repo", DefaultRef: "main", CreatedAt: 1}); err != nil {
		t.Fatalf("UpsertProject: %v", err)
	}
	return rel
}

func TestStartupSweepMarksOrphanedJobs(t *testing.T) {
	rel := newRelStore(t)
	if err := rel.InsertJob(coretypes.IndexJob{ID: "job-1", ProjectID: "proj-1", Kind: coretypes.JobKindIndex, State: coretypes.JobRunning, Ref: "main", StartedAt: 1}); err != nil {
		t.Fatalf("InsertJob: %v", err)
	}

	if err := StartupSweep(rel); err != nil {
		t.Fatalf("StartupSweep: %v", err)
	}

	job, err := rel.GetJob("job-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if job.State != coretypes.JobInterrupted {
		t.Errorf("expected job to be marked interrupted, got %s", job.State)
	}
}

func TestStartupSweepIsIdempotent(t *testing.T) {
	rel := newRelStore(t)
	if err := StartupSweep(rel); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if err := StartupSweep(rel); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
}

func TestSpawnRejectsConcurrentJobForSameProject(t *testing.T) {
	rel := newRelStore(t)

	// A fake indexer binary that just sleeps briefly then exits 0, so Spawn
	// has a real child process to track without depending on the real
	// cmd/codecompass-indexer build.
	script := writeFakeIndexer(t)

	o := New(script)
	ctx := context.Background()

	jobID, err := o.Spawn(ctx, rel, "proj-1", "/repo", t.TempDir(), "main", coretypes.JobKindIndex)
	if err != nil {
		t.Fatalf("first Spawn: %v", err)
	}
	if jobID == "" {
		t.Fatal("expected non-empty job id")
	}

	if _, err := o.Spawn(ctx, rel, "proj-1", "/repo", t.TempDir(), "main", coretypes.JobKindIndex); err != ErrJobInProgress {
		t.Errorf("expected ErrJobInProgress, got %v", err)
	}

	waitForJobTerminal(t, rel, jobID)
}

func writeFakeIndexer(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-indexer.sh")
	script := "#!/bin/sh\nsleep 0.2\nexit 0\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake indexer: %v", err)
	}
	return path
}

func waitForJobTerminal(t *testing.T, rel *relstore.Store, jobID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := rel.GetJob(jobID)
		if err != nil {
			t.Fatalf("GetJob: %v", err)
		}
		if job.State == coretypes.JobSucceeded || job.State == coretypes.JobFailed {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", jobID)
}
