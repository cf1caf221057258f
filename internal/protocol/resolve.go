package protocol

import (
	"context"
	"strings"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
	"github.com/codecompass-mcp/codecompass/internal/refresolve"
	"github.com/codecompass-mcp/codecompass/internal/relstore"
	"github.com/codecompass-mcp/codecompass/internal/schema"
	"github.com/codecompass-mcp/codecompass/internal/workspace"
)

// queryContext bundles everything a query-tool handler needs after
// workspace resolution, schema classification, and ref/freshness checks
// have all passed.
type queryContext struct {
	Resolved     workspace.Resolved
	Rel          *relstore.Store
	Runtime      schema.Runtime
	EffectiveRef string
	Freshness    coretypes.FreshnessStatus
	ActiveJob    bool
}

// resolveForQuery implements the shared precondition chain every query
// tool (locate_symbol, search_code, get_symbol_hierarchy,
// find_related_symbols, get_code_context, get_file_outline) runs before
// touching a store: resolve workspace, auto-bootstrap, classify schema,
// resolve ref, and apply the caller's freshness policy. The caller is
// responsible for Runtime.Close().
func (s *Server) resolveForQuery(ctx context.Context, workspaceHint string, refArg *string, policyArg string) (queryContext, *coretypes.DomainError) {
	resolved, err := s.Workspace.Resolve(workspaceHint)
	if err != nil {
		return queryContext{Freshness: coretypes.FreshnessUnknown}, workspaceResolveError(err)
	}

	if bootErr := s.Workspace.Bootstrap(ctx, resolved, refresolve.RefLive); bootErr != nil {
		return queryContext{Freshness: coretypes.FreshnessUnknown}, coretypes.NewDomainError(coretypes.ErrInternal, bootErr.Error(), "")
	}

	rel, err := s.Workspace.RelStore(resolved.ProjectID)
	if err != nil {
		return queryContext{Freshness: coretypes.FreshnessUnknown}, coretypes.NewDomainError(coretypes.ErrInternal, err.Error(), "")
	}

	activeJob := s.Orchestrator.IsActive(resolved.ProjectID)

	runtime := schema.Load(s.Workspace.DataDir(resolved.ProjectID), s.Versions, rel, resolved.ProjectID)
	if runtime.Status != coretypes.SchemaCompatible {
		return queryContext{Resolved: resolved, Rel: rel, Runtime: runtime, Freshness: coretypes.FreshnessUnknown, ActiveJob: activeJob},
			coretypes.NewDomainError(coretypes.ErrIndexIncompatible, runtime.Reason, "run index_repo")
	}

	effectiveRef := refresolve.ResolveToolRef(refArg, resolved.RootPath, rel, resolved.ProjectID)

	policy, perr := coretypes.ParseFreshnessPolicy(policyArg)
	if perr != nil {
		runtime.Close()
		return queryContext{Resolved: resolved, Runtime: runtime, Freshness: coretypes.FreshnessUnknown, ActiveJob: activeJob},
			coretypes.NewDomainError(coretypes.ErrInvalidInput, perr.Error(), "use permissive, advisory, or strict")
	}

	freshness := refresolve.IsRefStale(rel, resolved.RootPath, resolved.ProjectID, effectiveRef)
	switch refresolve.ApplyFreshnessPolicy(policy, freshness) {
	case refresolve.ActionBlock:
		runtime.Close()
		derr := coretypes.NewDomainError(coretypes.ErrIndexStale, "index is stale under the strict freshness policy", "run sync_repo").
			WithData(map[string]any{
				"last_indexed_commit": freshness.LastIndexedCommit,
				"current_head":        freshness.CurrentHead,
			})
		return queryContext{Resolved: resolved, Rel: rel, Runtime: runtime, EffectiveRef: effectiveRef, Freshness: freshness.Status, ActiveJob: activeJob}, derr
	case refresolve.ActionProceedAndSync:
		s.fireAndForgetSync(ctx, resolved, effectiveRef)
	}

	return queryContext{Resolved: resolved, Rel: rel, Runtime: runtime, EffectiveRef: effectiveRef, Freshness: freshness.Status, ActiveJob: activeJob}, nil
}

// fireAndForgetSync spawns a background sync_repo equivalent job for
// advisory-staleness, ignoring an index_in_progress collision — spec.md
// §4.F: "ignoring any index_in_progress collision."
func (s *Server) fireAndForgetSync(ctx context.Context, resolved workspace.Resolved, ref string) {
	rel, err := s.Workspace.RelStore(resolved.ProjectID)
	if err != nil {
		return
	}
	_, _ = s.Orchestrator.Spawn(ctx, rel, resolved.ProjectID, resolved.RootPath, s.Workspace.DataDir(resolved.ProjectID), ref, coretypes.JobKindSync)
}

// workspaceResolveError translates workspace.Router's string-prefixed
// errors into the domain error taxonomy.
func workspaceResolveError(err error) *coretypes.DomainError {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "workspace_not_allowed:"):
		return coretypes.NewDomainError(coretypes.ErrWorkspaceNotAllowed, msg, "configure multi-workspace allow-list")
	case strings.HasPrefix(msg, "workspace_unsupported:"):
		return coretypes.NewDomainError(coretypes.ErrWorkspaceUnsupported, msg, "check the workspace path")
	default:
		return coretypes.NewDomainError(coretypes.ErrWorkspaceUnsupported, msg, "check the workspace path")
	}
}
