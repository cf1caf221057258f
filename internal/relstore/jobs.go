package relstore

import (
	"database/sql"
	"errors"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
)

// InsertJob creates a new job row, normally in JobQueued state.
func (s *Store) InsertJob(j coretypes.IndexJob) error {
	_, err := s.q.Exec(`
		INSERT INTO jobs (id, project_id, kind, state, ref, started_at, finished_at, error, files_total, files_done, pid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.ProjectID, j.Kind.String(), j.State.String(), j.Ref, j.StartedAt,
		j.FinishedAt, j.Error, j.FilesTotal, j.FilesDone, j.PID)
	return err
}

// UpdateJobState transitions a job's state and records its PID (0 if not
// yet spawned).
func (s *Store) UpdateJobState(id string, state coretypes.JobState, pid int) error {
	_, err := s.q.Exec("UPDATE jobs SET state=?, pid=? WHERE id=?", state.String(), pid, id)
	return err
}

// UpdateJobProgress records incremental file-count progress in the job
// row's files_done/files_total columns while a job is running.
func (s *Store) UpdateJobProgress(id string, filesDone, filesTotal int) error {
	_, err := s.q.Exec("UPDATE jobs SET files_done=?, files_total=? WHERE id=?", filesDone, filesTotal, id)
	return err
}

// FinishJob marks a job terminal (succeeded/failed/interrupted) with an
// optional error message and completion timestamp.
func (s *Store) FinishJob(id string, state coretypes.JobState, finishedAt int64, errMsg string) error {
	_, err := s.q.Exec("UPDATE jobs SET state=?, finished_at=?, error=? WHERE id=?",
		state.String(), finishedAt, errMsg, id)
	return err
}

// GetJob returns a job row by id, or ErrNotFound.
func (s *Store) GetJob(id string) (coretypes.IndexJob, error) {
	row := s.q.QueryRow(`
		SELECT id, project_id, kind, state, ref, started_at, finished_at, error, files_total, files_done, pid
		FROM jobs WHERE id=?`, id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return coretypes.IndexJob{}, ErrNotFound
	}
	return j, err
}

// ActiveJobForProject returns the currently queued or running job for a
// project, if any. The orchestrator relies on this to enforce "one active
// job per project_id" before spawning a new child.
func (s *Store) ActiveJobForProject(projectID string) (coretypes.IndexJob, bool, error) {
	row := s.q.QueryRow(`
		SELECT id, project_id, kind, state, ref, started_at, finished_at, error, files_total, files_done, pid
		FROM jobs WHERE project_id=? AND state IN ('queued','running')
		ORDER BY started_at DESC LIMIT 1`, projectID)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return coretypes.IndexJob{}, false, nil
	}
	if err != nil {
		return coretypes.IndexJob{}, false, err
	}
	return j, true, nil
}

// MarkInterruptedJobs transitions every queued/running job to interrupted.
// Called once at startup: a process restart means any job that was
// mid-flight has lost its child and will never report completion.
// Idempotent — running it again after a clean shutdown (no queued/running
// rows) is a no-op.
func (s *Store) MarkInterruptedJobs(finishedAt int64) (int64, error) {
	res, err := s.q.Exec(`
		UPDATE jobs SET state=?, finished_at=?, error='interrupted by process restart'
		WHERE state IN ('queued','running')`,
		coretypes.JobInterrupted.String(), finishedAt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanJob(row *sql.Row) (coretypes.IndexJob, error) {
	var j coretypes.IndexJob
	var kind, state string
	err := row.Scan(&j.ID, &j.ProjectID, &kind, &state, &j.Ref, &j.StartedAt,
		&j.FinishedAt, &j.Error, &j.FilesTotal, &j.FilesDone, &j.PID)
	if err != nil {
		return coretypes.IndexJob{}, err
	}
	j.Kind = parseJobKind(kind)
	j.State = parseJobState(state)
	return j, nil
}

func parseJobKind(s string) coretypes.JobKind {
	if s == "sync" {
		return coretypes.JobKindSync
	}
	return coretypes.JobKindIndex
}

func parseJobState(s string) coretypes.JobState {
	switch s {
	case "running":
		return coretypes.JobRunning
	case "succeeded":
		return coretypes.JobSucceeded
	case "failed":
		return coretypes.JobFailed
	case "interrupted":
		return coretypes.JobInterrupted
	default:
		return coretypes.JobQueued
	}
}
