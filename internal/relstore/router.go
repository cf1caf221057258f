package relstore

import (
	"fmt"
	"log/slog"
	"sync"
)

// Router lazily opens and caches one Store per project_id, mirroring the
// teacher's StoreRouter (internal/store/router.go) but keyed by
// project_id rather than project name, since internal/workspace already
// owns the project_id → data_dir mapping.
type Router struct {
	dataDirFor func(projectID string) string
	mu         sync.Mutex
	stores     map[string]*Store
}

// NewRouter builds a Router. dataDirFor resolves a project_id to the
// directory its relstore.db should live in; the caller (internal/workspace)
// is responsible for that directory existing.
func NewRouter(dataDirFor func(projectID string) string) *Router {
	return &Router{
		dataDirFor: dataDirFor,
		stores:     make(map[string]*Store),
	}
}

// ForProject returns the Store for projectID, opening it lazily on first
// use and caching the connection for subsequent calls.
func (r *Router) ForProject(projectID string) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[projectID]; ok {
		return s, nil
	}

	dir := r.dataDirFor(projectID)
	if err := EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	s, err := Open(DBPath(dir))
	if err != nil {
		return nil, fmt.Errorf("open store for %s: %w", projectID, err)
	}
	r.stores[projectID] = s
	return s, nil
}

// Evict closes and forgets the cached Store for projectID, if any. Used
// when a project is deleted or its data directory is removed out from
// under the router.
func (r *Router) Evict(projectID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[projectID]; ok {
		if err := s.Close(); err != nil {
			slog.Warn("relstore.router.evict.close_err", "project_id", projectID, "err", err)
		}
		delete(r.stores, projectID)
	}
}

// CloseAll closes every open Store. Called at process shutdown.
func (r *Router) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.stores {
		if err := s.Close(); err != nil {
			slog.Warn("relstore.router.close_err", "project_id", id, "err", err)
		}
	}
	r.stores = make(map[string]*Store)
}
