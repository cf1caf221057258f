// Package workspace maps an optional workspace hint supplied by a tool
// call to a project_id and an on-disk data directory, bootstrapping a new
// Project row the first time a workspace is seen. Grounded in the
// teacher's StoreRouter (internal/store/router.go) — a lazy, mutex-guarded
// map from a key to opened state — generalized from "one sqlite file per
// project name" to "one project_id-keyed data directory holding both
// stores".
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
	"github.com/codecompass-mcp/codecompass/internal/relstore"
)

// ProjectID returns the deterministic project id for a workspace root: a
// 128-bit xxh3 hash (zeebo/xxh3, the teacher's dependency for fast
// non-cryptographic hashing) of the canonicalized absolute path. The hash
// is unkeyed: no key or seed is mixed in.
func ProjectID(rootPath string) (string, error) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return "", fmt.Errorf("canonicalize workspace path: %w", err)
	}
	abs = filepath.Clean(abs)
	h := xxh3.HashString128(abs)
	return fmt.Sprintf("proj_%016x%016x", h.Hi, h.Lo), nil
}

// Router resolves workspace hints to data directories, enforces the
// allowed-roots allow-list, and lazily bootstraps new projects.
type Router struct {
	baseDataDir  string
	allowedRoots []string // empty means "no restriction"
	defaultRoot  string
	rel          *relstore.Router

	mu       sync.Mutex
	indexing map[string]bool // project_id -> indexing in progress
}

// NewRouter builds a Router. baseDataDir is the parent of every
// project's data directory (<baseDataDir>/<project_id>/). defaultRoot is
// the workspace used when a tool call supplies no explicit hint (the
// single-workspace common case). allowedRoots, if non-empty, restricts
// which absolute paths may be bootstrapped as new projects.
func NewRouter(baseDataDir, defaultRoot string, allowedRoots []string) *Router {
	r := &Router{
		baseDataDir:  baseDataDir,
		allowedRoots: allowedRoots,
		defaultRoot:  defaultRoot,
		indexing:     make(map[string]bool),
	}
	r.rel = relstore.NewRouter(r.DataDir)
	return r
}

// DataDir returns the data directory for a project_id.
func (r *Router) DataDir(projectID string) string {
	return filepath.Join(r.baseDataDir, projectID)
}

// RelStore returns (opening lazily) the relational store for a project.
func (r *Router) RelStore(projectID string) (*relstore.Store, error) {
	return r.rel.ForProject(projectID)
}

// Resolved is what Resolve returns: the root path and project id a
// workspace hint mapped to.
type Resolved struct {
	RootPath  string
	ProjectID string
}

// Resolve maps an optional workspace hint (empty string means "use the
// default workspace") to a project id, validating it against the
// allow-list. Returns coretypes.ErrWorkspaceUnsupported-class errors via
// the returned error's message; callers in internal/protocol translate
// these into the domain error taxonomy.
func (r *Router) Resolve(hint string) (Resolved, error) {
	root := r.defaultRoot
	if hint != "" {
		root = hint
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return Resolved{}, fmt.Errorf("workspace_unsupported: %w", err)
	}
	abs = filepath.Clean(abs)

	if len(r.allowedRoots) > 0 && !r.isAllowed(abs) {
		return Resolved{}, fmt.Errorf("workspace_not_allowed: %s is outside the configured allowed_roots", abs)
	}

	id, err := ProjectID(abs)
	if err != nil {
		return Resolved{}, fmt.Errorf("workspace_unsupported: %w", err)
	}
	return Resolved{RootPath: abs, ProjectID: id}, nil
}

func (r *Router) isAllowed(abs string) bool {
	for _, root := range r.allowedRoots {
		rootAbs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		rootAbs = filepath.Clean(rootAbs)
		if abs == rootAbs || strings.HasPrefix(abs, rootAbs+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Bootstrap registers a new Project row if one doesn't already exist for
// resolved.ProjectID. defaultRef must be non-empty — per DESIGN.md's
// resolution of spec.md §9's Open Question, an empty default_ref is
// rejected here rather than stored and reinterpreted downstream.
func (r *Router) Bootstrap(ctx context.Context, resolved Resolved, defaultRef string) error {
	if strings.TrimSpace(defaultRef) == "" {
		return fmt.Errorf("invalid_input: default_ref must not be empty")
	}
	store, err := r.RelStore(resolved.ProjectID)
	if err != nil {
		return err
	}
	if _, err := store.GetProject(resolved.ProjectID); err == nil {
		return nil // already registered
	} else if err != relstore.ErrNotFound {
		return err
	}
	return store.UpsertProject(coretypes.Project{
		ID:         resolved.ProjectID,
		RootPath:   resolved.RootPath,
		DefaultRef: defaultRef,
		CreatedAt:  relstore.Now(),
	})
}

// IsRegistered reports whether a project has a Project row (vs. merely
// having a resolvable workspace path), used by the
// NotIndexed-vs-project_not_found distinction in error mapping.
func (r *Router) IsRegistered(projectID string) (bool, error) {
	store, err := r.RelStore(projectID)
	if err != nil {
		return false, err
	}
	_, err = store.GetProject(projectID)
	if err == relstore.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkIndexing and ClearIndexing set and clear a per-project "indexing in
// progress" flag. No tool handler reads the flag, and tool calls do not
// short-circuit on it.
func (r *Router) MarkIndexing(projectID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexing[projectID] = true
}

func (r *Router) ClearIndexing(projectID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.indexing, projectID)
}

func (r *Router) IsIndexing(projectID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexing[projectID]
}

// CloseAll closes every open relational store.
func (r *Router) CloseAll() {
	r.rel.CloseAll()
}

// KnownProjectIDs scans baseDataDir for project data directories, used at
// startup to sweep interrupted jobs and prewarm stores for every project
// CodeCompass has ever indexed. Grounded in the teacher's
// StoreRouter.AllStores directory scan, adapted from "one .db file per
// project" to "one project_id-named subdirectory per project".
func (r *Router) KnownProjectIDs() ([]string, error) {
	entries, err := os.ReadDir(r.baseDataDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan data dir: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(relstore.DBPath(filepath.Join(r.baseDataDir, e.Name()))); err != nil {
			continue
		}
		ids = append(ids, e.Name())
	}
	return ids, nil
}
