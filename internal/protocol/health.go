package protocol

import (
	"context"
	"sync"
	"time"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
	"github.com/codecompass-mcp/codecompass/internal/relstore"
	"github.com/codecompass-mcp/codecompass/internal/schema"
)

// healthCacheTTL is the 1-second health payload cache window spec.md §4.G
// requires, grounded in the original's health_tools.rs cache field.
const healthCacheTTL = 1 * time.Second

// OverallStatus is the health aggregate's top-level status, ordered by
// priority: error > indexing > warming > ready.
type OverallStatus string

const (
	StatusError    OverallStatus = "error"
	StatusIndexing OverallStatus = "indexing"
	StatusWarming  OverallStatus = "warming"
	StatusReady    OverallStatus = "ready"
)

// healthCache guards the 1s-TTL cached health payload.
type healthCache struct {
	mu        sync.Mutex
	computed  time.Time
	payload   map[string]any
}

func (c *healthCache) get(compute func() map[string]any) map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.payload != nil && time.Since(c.computed) < healthCacheTTL {
		return c.payload
	}
	c.payload = compute()
	c.computed = time.Now()
	return c.payload
}

// computeHealth builds the aggregated payload spec.md §4.G describes:
// overall status, version, uptime, store probes, prewarm status, active
// job, startup check, and per-project stats. No interrupted-recovery
// report is included.
func (s *Server) computeHealth(projectID string) map[string]any {
	sqliteOK := true
	sqliteErr := ""
	tantivyOK := true

	var rel *relstore.Store
	var runtime schema.Runtime
	if projectID != "" {
		var err error
		rel, err = s.Workspace.RelStore(projectID)
		if err == nil {
			hr := rel.CheckHealth(context.Background())
			sqliteOK = hr.OK
			sqliteErr = hr.Error

			runtime = schema.Load(s.Workspace.DataDir(projectID), s.Versions, rel, projectID)
			if runtime.Status == coretypes.SchemaCompatible && runtime.IndexSet != nil {
				defer runtime.Close()
				for _, sh := range runtime.IndexSet.CheckHealth() {
					if !sh.OK {
						tantivyOK = false
					}
				}
			}
		} else {
			sqliteOK = false
			sqliteErr = err.Error()
		}
	}

	status := StatusReady
	if !sqliteOK || !tantivyOK {
		status = StatusError
	} else if projectID != "" && s.Orchestrator.IsActive(projectID) {
		status = StatusIndexing
	} else if s.prewarming() {
		status = StatusWarming
	}

	payload := map[string]any{
		"status":         string(status),
		"version":        s.Version,
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"tantivy_ok":     tantivyOK,
		"sqlite_ok":      sqliteOK,
		"prewarm_status": s.prewarmLabel(),
	}
	if sqliteErr != "" {
		payload["sqlite_error"] = sqliteErr
	}

	if projectID != "" && rel != nil {
		if job, found, err := rel.ActiveJobForProject(projectID); err == nil && found {
			payload["active_job"] = map[string]any{
				"job_id": job.ID,
				"status": job.State.String(),
				"ref":    job.Ref,
			}
		}
		if n, err := rel.FileCount(projectID); err == nil {
			var lastIndexed int64
			if states, err := rel.ListBranchStates(projectID); err == nil {
				for _, b := range states {
					if b.LastAccessedAt > lastIndexed {
						lastIndexed = b.LastAccessedAt
					}
				}
			}
			payload["projects"] = []map[string]any{
				{
					"project_id":      projectID,
					"file_count":      n,
					"schema_status":   runtime.Status.String(),
					"last_indexed_at": lastIndexed,
				},
			}
		}
	}

	payload["startup_checks"] = map[string]any{"index": s.startupSweepDone()}

	return payload
}

