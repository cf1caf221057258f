package workspace

import (
	"context"
	"testing"
)

func TestProjectIDDeterministic(t *testing.T) {
	id1, err := ProjectID("/tmp/some/repo")
	if err != nil {
		t.Fatalf("ProjectID: %v", err)
	}
	id2, err := ProjectID("/tmp/some/repo")
	if err != nil {
		t.Fatalf("ProjectID: %v", err)
	}
	if id1 != id2 {
		t.Errorf("expected deterministic id, got %q vs %q", id1, id2)
	}

	id3, err := ProjectID("/tmp/some/other-repo")
	if err != nil {
		t.Fatalf("ProjectID: %v", err)
	}
	if id1 == id3 {
		t.Error("expected different roots to hash to different ids")
	}
}

func TestResolveDefaultAndAllowList(t *testing.T) {
	defaultRoot := t.TempDir()
	r := NewRouter(t.TempDir(), defaultRoot, nil)
	defer r.CloseAll()

	resolved, err := r.Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.RootPath != defaultRoot {
		t.Errorf("expected default root %q, got %q", defaultRoot, resolved.RootPath)
	}

	otherDir := t.TempDir()
	rAllow := NewRouter(t.TempDir(), defaultRoot, []string{defaultRoot})
	defer rAllow.CloseAll()

	if _, err := rAllow.Resolve(otherDir); err == nil {
		t.Error("expected workspace_not_allowed error for a hint outside allowed_roots")
	}
}

func TestBootstrapRejectsEmptyDefaultRef(t *testing.T) {
	dir := t.TempDir()
	r := NewRouter(t.TempDir(), dir, nil)
	defer r.CloseAll()

	resolved, err := r.Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := r.Bootstrap(context.Background(), resolved, ""); err == nil {
		t.Error("expected error bootstrapping with empty default_ref")
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	r := NewRouter(t.TempDir(), dir, nil)
	defer r.CloseAll()

	resolved, err := r.Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := r.Bootstrap(context.Background(), resolved, "live"); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if err := r.Bootstrap(context.Background(), resolved, "live"); err != nil {
		t.Fatalf("Bootstrap second call should be a no-op, got: %v", err)
	}

	registered, err := r.IsRegistered(resolved.ProjectID)
	if err != nil {
		t.Fatalf("IsRegistered: %v", err)
	}
	if !registered {
		t.Error("expected project to be registered after Bootstrap")
	}
}

func TestKnownProjectIDsFindsBootstrappedProjects(t *testing.T) {
	base := t.TempDir()
	dir := t.TempDir()
	r := NewRouter(base, dir, nil)
	defer r.CloseAll()

	ids, err := r.KnownProjectIDs()
	if err != nil {
		t.Fatalf("KnownProjectIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no known projects before bootstrap, got %v", ids)
	}

	resolved, err := r.Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := r.Bootstrap(context.Background(), resolved, "live"); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	ids, err = r.KnownProjectIDs()
	if err != nil {
		t.Fatalf("KnownProjectIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != resolved.ProjectID {
		t.Fatalf("expected [%q], got %v", resolved.ProjectID, ids)
	}
}

func TestIndexingFlag(t *testing.T) {
	r := NewRouter(t.TempDir(), t.TempDir(), nil)
	defer r.CloseAll()

	if r.IsIndexing("p1") {
		t.Fatal("expected not indexing initially")
	}
	r.MarkIndexing("p1")
	if !r.IsIndexing("p1") {
		t.Fatal("expected indexing after MarkIndexing")
	}
	r.ClearIndexing("p1")
	if r.IsIndexing("p1") {
		t.Fatal("expected not indexing after ClearIndexing")
	}
}
