// Package refresolve resolves which ref a tool call operates against and
// judges whether that ref's index is stale, applying one of three
// freshness policies. Ported from `resolve_tool_ref`/`is_ref_stale`/
// `check_and_enforce_freshness` in the original's
// codecompass-mcp/src/server.rs and tool_calls/shared.rs.
package refresolve

import (
	"errors"
	"strings"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
	"github.com/codecompass-mcp/codecompass/internal/relstore"
	"github.com/codecompass-mcp/codecompass/internal/vcsprobe"
)

// RefLive is the sentinel ref name used when a workspace has no VCS and
// the project was never given an explicit default_ref.
const RefLive = "live"

// ResolveToolRef implements the priority chain:
//  1. an explicit ref argument
//  2. the current VCS HEAD branch, if the workspace is a git work tree
//  3. the project's registered default_ref
//  4. RefLive
func ResolveToolRef(requestedRef *string, workspaceDir string, rel *relstore.Store, projectID string) string {
	if requestedRef != nil && *requestedRef != "" {
		return *requestedRef
	}
	if branch, err := vcsprobe.DetectHeadBranch(workspaceDir); err == nil {
		return branch
	}
	if rel != nil {
		if p, err := rel.GetProject(projectID); err == nil && strings.TrimSpace(p.DefaultRef) != "" {
			return p.DefaultRef
		}
	}
	return RefLive
}

// FreshnessResult is what IsRefStale computed, kept around so callers can
// report last_indexed_commit/current_head in an index_stale error without
// re-probing.
type FreshnessResult struct {
	Status            coretypes.FreshnessStatus
	LastIndexedCommit string
	CurrentHead       string
}

// IsRefStale compares the ref's recorded branch_state against the VCS's
// actual HEAD commit. Any missing input (no branch_state row, ref isn't
// the repo's current branch, VCS probe failure) degrades to "not stale"
// — the oracle only ever asserts staleness it can prove.
func IsRefStale(rel *relstore.Store, workspaceDir, projectID, ref string) FreshnessResult {
	if rel == nil {
		return FreshnessResult{Status: coretypes.FreshnessUnknown}
	}
	branchState, err := rel.GetBranchState(projectID, ref)
	if err != nil {
		if errors.Is(err, relstore.ErrNotFound) {
			return FreshnessResult{Status: coretypes.FreshnessUnknown}
		}
		return FreshnessResult{Status: coretypes.FreshnessUnknown}
	}

	headBranch, err := vcsprobe.DetectHeadBranch(workspaceDir)
	if err != nil || headBranch != ref {
		return FreshnessResult{Status: coretypes.FreshnessFresh, LastIndexedCommit: branchState.LastIndexedCommit}
	}

	headCommit, err := vcsprobe.DetectHeadCommit(workspaceDir)
	if err != nil {
		return FreshnessResult{Status: coretypes.FreshnessFresh, LastIndexedCommit: branchState.LastIndexedCommit}
	}

	if branchState.LastIndexedCommit != headCommit {
		return FreshnessResult{
			Status:            coretypes.FreshnessStale,
			LastIndexedCommit: branchState.LastIndexedCommit,
			CurrentHead:       headCommit,
		}
	}
	return FreshnessResult{Status: coretypes.FreshnessFresh, LastIndexedCommit: branchState.LastIndexedCommit, CurrentHead: headCommit}
}

// PolicyAction is what a tool handler must do once freshness has been
// checked against the caller's requested policy.
type PolicyAction int

const (
	// ActionProceed serves the result normally (fresh, or stale+permissive).
	ActionProceed PolicyAction = iota
	// ActionProceedAndSync serves the result but also kicks off an async
	// background sync (stale+advisory).
	ActionProceedAndSync
	// ActionBlock refuses to serve the result; the caller must return an
	// index_stale error (stale+strict).
	ActionBlock
)

// ApplyFreshnessPolicy turns a freshness check plus a policy selection
// into the action a tool handler takes.
func ApplyFreshnessPolicy(policy coretypes.FreshnessPolicy, freshness FreshnessResult) PolicyAction {
	if freshness.Status != coretypes.FreshnessStale {
		return ActionProceed
	}
	switch policy {
	case coretypes.PolicyStrict:
		return ActionBlock
	case coretypes.PolicyAdvisory:
		return ActionProceedAndSync
	default:
		return ActionProceed
	}
}
