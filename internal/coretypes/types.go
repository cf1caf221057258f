// Package coretypes holds the closed enumerations and record shapes shared
// across every CodeCompass package: stores, query engine, orchestrator, and
// protocol dispatcher all exchange values of these types rather than raw
// strings or ints.
package coretypes

import "fmt"

// SchemaStatus classifies the on-disk index relative to the running
// binary's expected schema/parser versions.
type SchemaStatus int

const (
	// SchemaNotIndexed means no index artifacts exist yet for the project.
	SchemaNotIndexed SchemaStatus = iota
	// SchemaReindexRequired means artifacts exist but were built with an
	// incompatible parser or schema version; a fresh index_repo is required.
	SchemaReindexRequired
	// SchemaCorruptManifest means the manifest sidecar could not be read
	// or parsed; the index directory is unusable until repaired.
	SchemaCorruptManifest
	// SchemaCompatible means the index can be queried as-is.
	SchemaCompatible
)

func (s SchemaStatus) String() string {
	switch s {
	case SchemaNotIndexed:
		return "not_indexed"
	case SchemaReindexRequired:
		return "reindex_required"
	case SchemaCorruptManifest:
		return "corrupt_manifest"
	case SchemaCompatible:
		return "compatible"
	default:
		return fmt.Sprintf("schema_status(%d)", int(s))
	}
}

// FreshnessStatus describes how a resolved ref compares to the index's last
// indexed commit for the same ref.
type FreshnessStatus int

const (
	// FreshnessFresh means the index was built at the ref's current commit.
	FreshnessFresh FreshnessStatus = iota
	// FreshnessStale means the ref has moved since the index was built.
	FreshnessStale
	// FreshnessUnknown means staleness could not be determined (VCS probe
	// failed, or the ref has no recorded branch_state); treated as not
	// stale by callers per the freshness oracle's conservative default.
	FreshnessUnknown
)

func (f FreshnessStatus) String() string {
	switch f {
	case FreshnessFresh:
		return "fresh"
	case FreshnessStale:
		return "stale"
	case FreshnessUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("freshness_status(%d)", int(f))
	}
}

// FreshnessPolicy selects how a stale index is handled by tool handlers.
type FreshnessPolicy int

const (
	// PolicyPermissive serves stale results without comment.
	PolicyPermissive FreshnessPolicy = iota
	// PolicyAdvisory serves stale results, annotated, and triggers an
	// async background sync.
	PolicyAdvisory
	// PolicyStrict refuses to serve stale results; returns index_stale.
	PolicyStrict
)

func ParseFreshnessPolicy(s string) (FreshnessPolicy, error) {
	switch s {
	case "", "permissive":
		return PolicyPermissive, nil
	case "advisory":
		return PolicyAdvisory, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return 0, fmt.Errorf("unknown freshness_policy %q", s)
	}
}

// QueryIntent is the classifier's best guess at what kind of query string
// the caller supplied, used to weight the rerank boosts.
type QueryIntent int

const (
	IntentNaturalLanguage QueryIntent = iota
	IntentPath
	IntentError
	IntentSymbol
)

func (q QueryIntent) String() string {
	switch q {
	case IntentPath:
		return "path"
	case IntentError:
		return "error"
	case IntentSymbol:
		return "symbol"
	default:
		return "natural_language"
	}
}

// SymbolKind enumerates the language-agnostic symbol categories the indexer
// extracts. Languages that lack a concept map to the closest kind.
type SymbolKind int

const (
	SymbolUnknown SymbolKind = iota
	SymbolFunction
	SymbolMethod
	SymbolType
	SymbolInterface
	SymbolConst
	SymbolVar
	SymbolModule
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolMethod:
		return "method"
	case SymbolType:
		return "type"
	case SymbolInterface:
		return "interface"
	case SymbolConst:
		return "const"
	case SymbolVar:
		return "var"
	case SymbolModule:
		return "module"
	default:
		return "unknown"
	}
}

// RankingExplainLevel controls how much of the rerank math is echoed back
// to the caller in a query response.
type RankingExplainLevel int

const (
	RankingExplainOff RankingExplainLevel = iota
	RankingExplainBasic
	RankingExplainFull
)

func ParseRankingExplainLevel(s string) (RankingExplainLevel, error) {
	switch s {
	case "", "off":
		return RankingExplainOff, nil
	case "basic":
		return RankingExplainBasic, nil
	case "full":
		return RankingExplainFull, nil
	default:
		return 0, fmt.Errorf("unknown ranking_explain level %q", s)
	}
}

// DetailLevel controls how much of a result payload is projected to the
// caller. Signature is the default: just enough to identify and call the
// symbol. Location adds nothing beyond file/line. Context additionally
// enriches with a source body preview and related-symbol lookups.
type DetailLevel int

const (
	DetailSignature DetailLevel = iota
	DetailLocation
	DetailContext
)

func ParseDetailLevel(s string) DetailLevel {
	switch s {
	case "location":
		return DetailLocation
	case "context":
		return DetailContext
	default:
		return DetailSignature
	}
}

// JobState is the lifecycle state of an IndexJob row.
type JobState int

const (
	JobQueued JobState = iota
	JobRunning
	JobSucceeded
	JobFailed
	JobInterrupted
)

func (j JobState) String() string {
	switch j {
	case JobQueued:
		return "queued"
	case JobRunning:
		return "running"
	case JobSucceeded:
		return "succeeded"
	case JobFailed:
		return "failed"
	case JobInterrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("job_state(%d)", int(j))
	}
}

// JobKind distinguishes a full reindex from an incremental sync.
type JobKind int

const (
	JobKindIndex JobKind = iota
	JobKindSync
)

func (j JobKind) String() string {
	if j == JobKindSync {
		return "sync"
	}
	return "index"
}

// ParseJobKind parses the wire/CLI form produced by JobKind.String.
func ParseJobKind(s string) (JobKind, error) {
	switch s {
	case "index":
		return JobKindIndex, nil
	case "sync":
		return JobKindSync, nil
	default:
		return 0, fmt.Errorf("coretypes: unknown job kind %q", s)
	}
}

// Project is the top-level registration row: one per workspace root the
// server has ever bootstrapped.
type Project struct {
	ID         string
	RootPath   string
	DefaultRef string
	CreatedAt  int64
}

// BranchState records the last commit CodeCompass indexed for a given
// (project, ref) pair, used by the freshness oracle.
type BranchState struct {
	ProjectID         string
	Ref               string
	MergeBaseCommit   string // empty if unknown
	LastIndexedCommit string
	OverlayDir        string // empty if this ref indexes directly, no overlay
	FileCount         int64
	CreatedAt         int64
	LastAccessedAt    int64
}

// IndexJob is a row in the jobs table tracking a spawned indexer child.
type IndexJob struct {
	ID          string
	ProjectID   string
	Kind        JobKind
	State       JobState
	Ref         string
	StartedAt   int64
	FinishedAt  int64
	Error       string
	FilesTotal  int
	FilesDone   int
	PID         int
}

// FileRecord is one indexed source file.
type FileRecord struct {
	ProjectID   string
	Path        string
	ContentHash string
	Language    string
	SizeBytes   int64
	IndexedAt   int64
}

// SymbolRecord is the unit of both full-text and relational symbol storage.
type SymbolRecord struct {
	StableID      string
	ProjectID     string
	Kind          SymbolKind
	Name          string
	QualifiedName string
	Language      string
	FilePath      string
	StartLine     int
	EndLine       int
	Signature     string
	ParentID      string
	DocComment    string
}

// SnippetRecord is a full-text-indexed chunk of source around a symbol or
// a plain line range, used by search_code.
type SnippetRecord struct {
	ID        string
	ProjectID string
	FilePath  string
	StartLine int
	EndLine   int
	Text      string
	SymbolID  string
}

// ImportEdge records a file-to-module import relationship, used for
// path-affinity boosting in the rerank pipeline.
type ImportEdge struct {
	ProjectID  string
	FromFile   string
	ToModule   string
	ImportedAs string
}
