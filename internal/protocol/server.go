package protocol

import (
	"sync/atomic"
	"time"

	"github.com/codecompass-mcp/codecompass/internal/orchestrator"
	"github.com/codecompass-mcp/codecompass/internal/schema"
	"github.com/codecompass-mcp/codecompass/internal/workspace"
)

// prewarm states, held in Server.prewarm (sync/atomic.Int32 per spec.md §5).
const (
	prewarmNotStarted int32 = iota
	prewarmInProgress
	prewarmDone
)

// Server dispatches JSON-RPC requests to CodeCompass's tool handlers. One
// Server serves every transport (stdio and HTTP) over the same workspace
// router and orchestrator.
type Server struct {
	Workspace    *workspace.Router
	Orchestrator *orchestrator.Orchestrator
	Versions     schema.Versions
	Version      string

	startedAt time.Time
	prewarm   atomic.Int32
	swept     atomic.Bool
	health    healthCache
}

// NewServer builds a dispatcher over an already-constructed workspace
// router and orchestrator. Call MarkStartupSweepDone once the caller has
// run orchestrator.StartupSweep for every known project.
func NewServer(w *workspace.Router, o *orchestrator.Orchestrator, versions schema.Versions, version string) *Server {
	return &Server{
		Workspace:    w,
		Orchestrator: o,
		Versions:     versions,
		Version:      version,
		startedAt:    time.Now(),
	}
}

// BeginPrewarm and FinishPrewarm bracket the startup prewarm pass (opening
// each known project's stores once so the first real request isn't the
// one paying that cost).
func (s *Server) BeginPrewarm()  { s.prewarm.Store(prewarmInProgress) }
func (s *Server) FinishPrewarm() { s.prewarm.Store(prewarmDone) }

func (s *Server) prewarming() bool {
	return s.prewarm.Load() == prewarmInProgress
}

func (s *Server) prewarmLabel() string {
	switch s.prewarm.Load() {
	case prewarmInProgress:
		return "warming"
	case prewarmDone:
		return "done"
	default:
		return "not_started"
	}
}

// MarkStartupSweepDone records that the interrupted-jobs sweep has run, so
// health's startup_checks.index reports accurately.
func (s *Server) MarkStartupSweepDone() {
	s.swept.Store(true)
}

func (s *Server) startupSweepDone() bool {
	return s.swept.Load()
}
