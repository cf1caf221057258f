package refresolve

import (
	"testing"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
	"github.com/codecompass-mcp/codecompass/internal/relstore"
)

func strPtr(s string) *string { return &s }

// Ported from the original's
// resolve_tool_ref_falls_back_to_project_default_when_head_unavailable:
// a non-git temp dir has no HEAD branch, so resolution should fall back
// to the project's registered default_ref, while an explicit ref
// argument always wins regardless.
func TestResolveToolRefFallsBackToProjectDefault(t *testing.T) {
	dir := t.TempDir()
	rel, err := relstore.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer rel.Close()

	if err := rel.UpsertProject(coretypes.Project{ID: "proj_test", RootPath: dir, DefaultRef: "main", CreatedAt: 1}); err != nil {
		t.Fatalf("UpsertProject: %v", err)
	}

	resolved := ResolveToolRef(nil, dir, rel, "proj_test")
	if resolved != "main" {
		t.Errorf("expected fallback to project default_ref %q, got %q", "main", resolved)
	}

	explicit := ResolveToolRef(strPtr("feat/auth"), dir, rel, "proj_test")
	if explicit != "feat/auth" {
		t.Errorf("expected explicit ref to win, got %q", explicit)
	}
}

func TestResolveToolRefFallsBackToLiveWithNoProject(t *testing.T) {
	dir := t.TempDir()
	rel, err := relstore.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer rel.Close()

	resolved := ResolveToolRef(nil, dir, rel, "no-such-project")
	if resolved != RefLive {
		t.Errorf("expected %q, got %q", RefLive, resolved)
	}
}

func TestIsRefStaleUnknownWithNoBranchState(t *testing.T) {
	dir := t.TempDir()
	rel, err := relstore.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer rel.Close()
	if err := rel.UpsertProject(coretypes.Project{ID: "p", RootPath: dir, DefaultRef: "live", CreatedAt: 1}); err != nil {
		t.Fatalf("UpsertProject: %v", err)
	}

	result := IsRefStale(rel, dir, "p", "main")
	if result.Status != coretypes.FreshnessUnknown {
		t.Errorf("expected FreshnessUnknown with no branch_state row, got %v", result.Status)
	}
}

func TestApplyFreshnessPolicy(t *testing.T) {
	stale := FreshnessResult{Status: coretypes.FreshnessStale}
	fresh := FreshnessResult{Status: coretypes.FreshnessFresh}

	if got := ApplyFreshnessPolicy(coretypes.PolicyPermissive, stale); got != ActionProceed {
		t.Errorf("permissive+stale: expected ActionProceed, got %v", got)
	}
	if got := ApplyFreshnessPolicy(coretypes.PolicyAdvisory, stale); got != ActionProceedAndSync {
		t.Errorf("advisory+stale: expected ActionProceedAndSync, got %v", got)
	}
	if got := ApplyFreshnessPolicy(coretypes.PolicyStrict, stale); got != ActionBlock {
		t.Errorf("strict+stale: expected ActionBlock, got %v", got)
	}
	if got := ApplyFreshnessPolicy(coretypes.PolicyStrict, fresh); got != ActionProceed {
		t.Errorf("strict+fresh: expected ActionProceed, got %v", got)
	}
}
