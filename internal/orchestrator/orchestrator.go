// Package orchestrator owns index_repo/sync_repo job lifecycle: spawning
// the out-of-process indexer, recording job rows, reaping finished
// children, and the startup sweep that marks jobs orphaned by a prior
// crash as interrupted.
package orchestrator

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
	"github.com/codecompass-mcp/codecompass/internal/relstore"
)

// jobIDEnvVar is the environment variable the spawned indexer reads to
// know which job row to report progress against.
const jobIDEnvVar = "CODECOMPASS_JOB_ID"

// Orchestrator spawns and tracks indexer child processes, one active job
// per project at a time.
type Orchestrator struct {
	indexerPath string
	mu          sync.Mutex
	active      map[string]*exec.Cmd // project_id -> running child
}

// New builds an Orchestrator that spawns indexerPath (the
// codecompass-indexer binary) for index_repo/sync_repo jobs.
func New(indexerPath string) *Orchestrator {
	return &Orchestrator{indexerPath: indexerPath, active: make(map[string]*exec.Cmd)}
}

// StartupSweep marks every job left in a running state by a prior process
// crash as interrupted, mirroring the teacher watcher's "never trust state
// left by an unclean shutdown" posture. Call once at server startup before
// accepting index_repo/sync_repo requests.
func StartupSweep(rel *relstore.Store) error {
	n, err := rel.MarkInterruptedJobs(relstore.Now())
	if err != nil {
		return fmt.Errorf("startup sweep: %w", err)
	}
	if n > 0 {
		slog.Warn("orchestrator.startup_sweep", "interrupted_jobs", n)
	}
	return nil
}

// ErrJobInProgress is returned when a caller asks to start a job for a
// project that already has one running.
var ErrJobInProgress = fmt.Errorf("orchestrator: a job is already running for this project")

// Spawn starts an indexer child process for (projectID, ref) and records
// a jobs row. It returns immediately with the new job's id; the child
// runs detached and is reaped by a background goroutine that updates the
// job row's terminal state when the process exits.
func (o *Orchestrator) Spawn(ctx context.Context, rel *relstore.Store, projectID, rootPath, dataDir, ref string, kind coretypes.JobKind) (string, error) {
	o.mu.Lock()
	if _, running := o.active[projectID]; running {
		o.mu.Unlock()
		return "", ErrJobInProgress
	}

	_, found, err := rel.ActiveJobForProject(projectID)
	if err != nil {
		o.mu.Unlock()
		return "", fmt.Errorf("check active job: %w", err)
	}
	if found {
		o.mu.Unlock()
		return "", ErrJobInProgress
	}

	jobID, err := newJobID()
	if err != nil {
		o.mu.Unlock()
		return "", fmt.Errorf("generate job id: %w", err)
	}

	job := coretypes.IndexJob{
		ID:        jobID,
		ProjectID: projectID,
		Kind:      kind,
		State:     coretypes.JobQueued,
		Ref:       ref,
		StartedAt: relstore.Now(),
	}
	if err := rel.InsertJob(job); err != nil {
		o.mu.Unlock()
		return "", fmt.Errorf("insert job row: %w", err)
	}

	// The child must outlive this call (and the request that triggered it),
	// so it's spawned against a background context; Spawn does not use ctx.
	// Stdin, Stdout and Stderr stay nil, so the child's stdio is connected
	// to the null device rather than to this process's streams.
	cmd := exec.CommandContext(context.Background(), o.indexerPath,
		"-project-id", projectID, "-root", rootPath, "-data-dir", dataDir, "-ref", ref, "-kind", kind.String())
	cmd.Env = append(os.Environ(), jobIDEnvVar+"="+jobID)

	if err := cmd.Start(); err != nil {
		o.mu.Unlock()
		_ = rel.FinishJob(jobID, coretypes.JobFailed, relstore.Now(), err.Error())
		return "", fmt.Errorf("start indexer: %w", err)
	}
	if err := rel.UpdateJobState(jobID, coretypes.JobRunning, cmd.Process.Pid); err != nil {
		slog.Warn("orchestrator.set_running_failed", "job_id", jobID, "err", err)
	}

	o.active[projectID] = cmd
	o.mu.Unlock()

	go o.reap(rel, projectID, jobID, cmd)

	return jobID, nil
}

// reap blocks on the child process exiting, then records the terminal
// job state and clears the project's active-job slot. Adapted from the
// teacher watcher's single long-lived goroutine-per-concern shape, here
// one goroutine per spawned child rather than one polling loop overall.
func (o *Orchestrator) reap(rel *relstore.Store, projectID, jobID string, cmd *exec.Cmd) {
	err := cmd.Wait()

	o.mu.Lock()
	delete(o.active, projectID)
	o.mu.Unlock()

	if err != nil {
		slog.Warn("orchestrator.job_failed", "job_id", jobID, "project_id", projectID, "err", err)
		if finishErr := rel.FinishJob(jobID, coretypes.JobFailed, relstore.Now(), err.Error()); finishErr != nil {
			slog.Error("orchestrator.finish_job_failed", "job_id", jobID, "err", finishErr)
		}
		return
	}

	slog.Info("orchestrator.job_succeeded", "job_id", jobID, "project_id", projectID)
	if finishErr := rel.FinishJob(jobID, coretypes.JobSucceeded, relstore.Now(), ""); finishErr != nil {
		slog.Error("orchestrator.finish_job_failed", "job_id", jobID, "err", finishErr)
	}
}

// IsActive reports whether a job spawned by this Orchestrator is still
// running for projectID; internal/protocol reads it to report indexing
// status in health and tool responses.
func (o *Orchestrator) IsActive(projectID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.active[projectID]
	return ok
}

func newJobID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
