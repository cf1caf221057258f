package protocol

import (
	"context"
	"sort"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
	"github.com/codecompass-mcp/codecompass/internal/orchestrator"
	"github.com/codecompass-mcp/codecompass/internal/query"
	"github.com/codecompass-mcp/codecompass/internal/refresolve"
)

// handlerFunc is the signature every tool handler implements: parsed
// arguments in, a JSON-serializable result or a domain error out. The
// dispatcher wraps either outcome in the MCP tool-content envelope.
type handlerFunc func(ctx context.Context, s *Server, args map[string]any) (map[string]any, *coretypes.DomainError)

var handlers = map[string]handlerFunc{
	"locate_symbol":        handleLocateSymbol,
	"search_code":          handleSearchCode,
	"get_symbol_hierarchy": handleGetSymbolHierarchy,
	"find_related_symbols": handleFindRelatedSymbols,
	"get_code_context":     handleGetCodeContext,
	"get_file_outline":     handleGetFileOutline,
	"index_repo":           handleIndexRepo,
	"sync_repo":            handleSyncRepo,
	"health_check":         handleHealthCheck,
}

// protocolVersion is the codecompass_protocol_version every tool response's
// metadata object carries, per spec.md §4.G.
const protocolVersion = "1.0"

func buildMetadata(qc queryContext) map[string]any {
	return map[string]any{
		"codecompass_protocol_version": protocolVersion,
		"ref":                          qc.EffectiveRef,
		"index_status":                 qc.Runtime.Status.String(),
		"freshness_status":             qc.Freshness.String(),
		"active_job":                   qc.ActiveJob,
		"project_id":                   qc.Resolved.ProjectID,
	}
}

func withMetadata(result map[string]any, qc queryContext) map[string]any {
	result["metadata"] = buildMetadata(qc)
	return result
}

func errorWithMetadata(derr *coretypes.DomainError, qc queryContext) map[string]any {
	errObj := map[string]any{
		"code":        string(derr.Code),
		"message":     derr.Message,
		"remediation": derr.Remediation,
	}
	if derr.Data != nil {
		errObj["data"] = derr.Data
	}
	return map[string]any{
		"error":    errObj,
		"metadata": buildMetadata(qc),
	}
}

func handleLocateSymbol(ctx context.Context, s *Server, args map[string]any) (map[string]any, *coretypes.DomainError) {
	name := argString(args, "name")
	if name == "" {
		return nil, coretypes.NewDomainError(coretypes.ErrInvalidInput, "name must not be empty", "pass a non-empty name")
	}

	qc, derr := s.resolveForQuery(ctx, argString(args, "workspace"), argStringPtr(args, "ref"), argString(args, "freshness_policy"))
	if derr != nil {
		return errorWithMetadata(derr, qc), nil
	}
	defer qc.Runtime.Close()

	explain, err := coretypes.ParseRankingExplainLevel(argString(args, "ranking_explain_level"))
	if err != nil {
		return nil, coretypes.NewDomainError(coretypes.ErrInvalidInput, err.Error(), "")
	}

	engine := &query.Engine{Index: qc.Runtime.IndexSet, Rel: qc.Rel, ProjectID: qc.Resolved.ProjectID}
	resp, err := engine.LocateSymbol(query.LocateParams{
		RequestParams: query.RequestParams{
			Ref: qc.EffectiveRef, Limit: argInt(args, "limit", 10),
			RankingExplainLevel: explain, MaxResponseBytes: query.DefaultMaxResponseBytes,
		},
		Name:     name,
		Kind:     argString(args, "kind"),
		Language: argString(args, "language"),
	})
	if err != nil {
		return nil, coretypes.NewDomainError(coretypes.ErrInternal, err.Error(), "")
	}

	return withMetadata(responseToMap(resp), qc), nil
}

func handleSearchCode(ctx context.Context, s *Server, args map[string]any) (map[string]any, *coretypes.DomainError) {
	q := argString(args, "query")
	if q == "" {
		return nil, coretypes.NewDomainError(coretypes.ErrInvalidInput, "query must not be empty", "pass a non-empty query")
	}

	qc, derr := s.resolveForQuery(ctx, argString(args, "workspace"), argStringPtr(args, "ref"), argString(args, "freshness_policy"))
	if derr != nil {
		return errorWithMetadata(derr, qc), nil
	}
	defer qc.Runtime.Close()

	explain, err := coretypes.ParseRankingExplainLevel(argString(args, "ranking_explain_level"))
	if err != nil {
		return nil, coretypes.NewDomainError(coretypes.ErrInvalidInput, err.Error(), "")
	}

	engine := &query.Engine{Index: qc.Runtime.IndexSet, Rel: qc.Rel, ProjectID: qc.Resolved.ProjectID}
	resp, err := engine.SearchCode(query.SearchParams{
		RequestParams: query.RequestParams{
			Ref: qc.EffectiveRef, Limit: argInt(args, "limit", 10),
			DetailLevel:         coretypes.ParseDetailLevel(argString(args, "detail_level")),
			Compact:             argBool(args, "compact"),
			RankingExplainLevel: explain,
			MaxResponseBytes:    query.DefaultMaxResponseBytes,
		},
		Query: q,
	})
	if err != nil {
		return nil, coretypes.NewDomainError(coretypes.ErrInternal, err.Error(), "")
	}

	return withMetadata(responseToMap(resp), qc), nil
}

func handleGetSymbolHierarchy(ctx context.Context, s *Server, args map[string]any) (map[string]any, *coretypes.DomainError) {
	stableID := argString(args, "symbol_stable_id")
	if stableID == "" {
		return nil, coretypes.NewDomainError(coretypes.ErrInvalidInput, "symbol_stable_id must not be empty", "")
	}
	qc, derr := s.resolveForQuery(ctx, argString(args, "workspace"), argStringPtr(args, "ref"), "")
	if derr != nil {
		return errorWithMetadata(derr, qc), nil
	}
	defer qc.Runtime.Close()

	sym, err := qc.Rel.GetSymbol(qc.Resolved.ProjectID, stableID)
	if err != nil {
		return nil, coretypes.NewDomainError(coretypes.ErrInvalidInput, "symbol not found: "+stableID, "use locate_symbol to find the stable id")
	}
	children, err := qc.Rel.FindChildSymbols(qc.Resolved.ProjectID, stableID)
	if err != nil {
		return nil, coretypes.NewDomainError(coretypes.ErrInternal, err.Error(), "")
	}

	var parent *coretypes.SymbolRecord
	if sym.ParentID != "" {
		if p, err := qc.Rel.GetSymbol(qc.Resolved.ProjectID, sym.ParentID); err == nil {
			parent = &p
		}
	}

	result := map[string]any{
		"symbol":   symbolToMap(sym),
		"children": symbolsToMaps(children),
	}
	if parent != nil {
		result["parent"] = symbolToMap(*parent)
	}
	return withMetadata(result, qc), nil
}

func handleFindRelatedSymbols(ctx context.Context, s *Server, args map[string]any) (map[string]any, *coretypes.DomainError) {
	stableID := argString(args, "symbol_stable_id")
	if stableID == "" {
		return nil, coretypes.NewDomainError(coretypes.ErrInvalidInput, "symbol_stable_id must not be empty", "")
	}
	qc, derr := s.resolveForQuery(ctx, argString(args, "workspace"), argStringPtr(args, "ref"), "")
	if derr != nil {
		return errorWithMetadata(derr, qc), nil
	}
	defer qc.Runtime.Close()

	sym, err := qc.Rel.GetSymbol(qc.Resolved.ProjectID, stableID)
	if err != nil {
		return nil, coretypes.NewDomainError(coretypes.ErrInvalidInput, "symbol not found: "+stableID, "use locate_symbol to find the stable id")
	}

	siblings, err := qc.Rel.FindSymbolsInFile(qc.Resolved.ProjectID, sym.FilePath)
	if err != nil {
		return nil, coretypes.NewDomainError(coretypes.ErrInternal, err.Error(), "")
	}
	related := make([]coretypes.SymbolRecord, 0, len(siblings))
	for _, other := range siblings {
		if other.StableID != sym.StableID {
			related = append(related, other)
		}
	}

	importers, err := qc.Rel.ImportersOfModule(qc.Resolved.ProjectID, sym.FilePath)
	if err != nil {
		importers = nil
	}

	return withMetadata(map[string]any{
		"related_in_file":  symbolsToMaps(related),
		"importing_files":  importers,
	}, qc), nil
}

func handleGetCodeContext(ctx context.Context, s *Server, args map[string]any) (map[string]any, *coretypes.DomainError) {
	stableID := argString(args, "symbol_stable_id")
	if stableID == "" {
		return nil, coretypes.NewDomainError(coretypes.ErrInvalidInput, "symbol_stable_id must not be empty", "")
	}
	qc, derr := s.resolveForQuery(ctx, argString(args, "workspace"), argStringPtr(args, "ref"), "")
	if derr != nil {
		return errorWithMetadata(derr, qc), nil
	}
	defer qc.Runtime.Close()

	sym, err := qc.Rel.GetSymbol(qc.Resolved.ProjectID, stableID)
	if err != nil {
		return nil, coretypes.NewDomainError(coretypes.ErrInvalidInput, "symbol not found: "+stableID, "use locate_symbol to find the stable id")
	}

	return withMetadata(map[string]any{
		"symbol":      symbolToMap(sym),
		"doc_comment": sym.DocComment,
		"signature":   sym.Signature,
	}, qc), nil
}

func handleGetFileOutline(ctx context.Context, s *Server, args map[string]any) (map[string]any, *coretypes.DomainError) {
	path := argString(args, "path")
	if path == "" {
		return nil, coretypes.NewDomainError(coretypes.ErrInvalidInput, "path must not be empty", "")
	}
	qc, derr := s.resolveForQuery(ctx, argString(args, "workspace"), argStringPtr(args, "ref"), "")
	if derr != nil {
		return errorWithMetadata(derr, qc), nil
	}
	defer qc.Runtime.Close()

	syms, err := qc.Rel.FindSymbolsInFile(qc.Resolved.ProjectID, path)
	if err != nil {
		return nil, coretypes.NewDomainError(coretypes.ErrInternal, err.Error(), "")
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i].StartLine < syms[j].StartLine })

	return withMetadata(map[string]any{"path": path, "symbols": symbolsToMaps(syms)}, qc), nil
}

func handleIndexRepo(ctx context.Context, s *Server, args map[string]any) (map[string]any, *coretypes.DomainError) {
	resolved, err := s.Workspace.Resolve(argString(args, "workspace"))
	if err != nil {
		return nil, workspaceResolveError(err)
	}
	ref := argString(args, "ref")
	if ref == "" {
		ref = refresolve.RefLive
	}
	if bootErr := s.Workspace.Bootstrap(ctx, resolved, ref); bootErr != nil {
		return nil, coretypes.NewDomainError(coretypes.ErrInternal, bootErr.Error(), "")
	}

	rel, err := s.Workspace.RelStore(resolved.ProjectID)
	if err != nil {
		return nil, coretypes.NewDomainError(coretypes.ErrInternal, err.Error(), "")
	}

	kind := coretypes.JobKindIndex
	mode := "full"
	if !argBool(args, "force") {
		if _, found, _ := rel.ActiveJobForProject(resolved.ProjectID); !found {
			if _, err := rel.GetManifest(resolved.ProjectID); err == nil {
				kind, mode = coretypes.JobKindSync, "incremental"
			}
		}
	}

	jobID, err := s.Orchestrator.Spawn(ctx, rel, resolved.ProjectID, resolved.RootPath, s.Workspace.DataDir(resolved.ProjectID), ref, kind)
	if err == orchestrator.ErrJobInProgress {
		return nil, coretypes.NewDomainError(coretypes.ErrIndexInProgress, "a job is already running for this workspace", "poll health_check")
	}
	if err != nil {
		return nil, coretypes.NewDomainError(coretypes.ErrInternal, err.Error(), "")
	}

	return map[string]any{
		"job_id": jobID,
		"status": "running",
		"mode":   mode,
		"metadata": map[string]any{
			"project_id": resolved.ProjectID,
			"ref":        ref,
		},
	}, nil
}

func handleSyncRepo(ctx context.Context, s *Server, args map[string]any) (map[string]any, *coretypes.DomainError) {
	resolved, err := s.Workspace.Resolve(argString(args, "workspace"))
	if err != nil {
		return nil, workspaceResolveError(err)
	}
	rel, err := s.Workspace.RelStore(resolved.ProjectID)
	if err != nil {
		return nil, coretypes.NewDomainError(coretypes.ErrInternal, err.Error(), "")
	}

	ref := refresolve.ResolveToolRef(argStringPtr(args, "ref"), resolved.RootPath, rel, resolved.ProjectID)

	jobID, err := s.Orchestrator.Spawn(ctx, rel, resolved.ProjectID, resolved.RootPath, s.Workspace.DataDir(resolved.ProjectID), ref, coretypes.JobKindSync)
	if err == orchestrator.ErrJobInProgress {
		return nil, coretypes.NewDomainError(coretypes.ErrIndexInProgress, "a job is already running for this workspace", "poll health_check")
	}
	if err != nil {
		return nil, coretypes.NewDomainError(coretypes.ErrInternal, err.Error(), "")
	}

	return map[string]any{
		"job_id": jobID,
		"status": "running",
		"mode":   "incremental",
		"metadata": map[string]any{
			"project_id": resolved.ProjectID,
			"ref":        ref,
		},
	}, nil
}

func handleHealthCheck(_ context.Context, s *Server, args map[string]any) (map[string]any, *coretypes.DomainError) {
	projectID := ""
	if resolved, err := s.Workspace.Resolve(argString(args, "workspace")); err == nil {
		projectID = resolved.ProjectID
	}
	payload := s.health.get(func() map[string]any { return s.computeHealth(projectID) })
	return payload, nil
}

func symbolToMap(sym coretypes.SymbolRecord) map[string]any {
	return map[string]any{
		"symbol_stable_id": sym.StableID,
		"kind":             sym.Kind.String(),
		"name":             sym.Name,
		"qualified_name":   sym.QualifiedName,
		"language":         sym.Language,
		"path":             sym.FilePath,
		"line_start":       sym.StartLine,
		"line_end":         sym.EndLine,
		"signature":        sym.Signature,
	}
}

func symbolsToMaps(syms []coretypes.SymbolRecord) []map[string]any {
	out := make([]map[string]any, 0, len(syms))
	for _, sym := range syms {
		out = append(out, symbolToMap(sym))
	}
	return out
}

func responseToMap(resp query.Response) map[string]any {
	m := map[string]any{
		"results":                resp.Results,
		"suggested_next_actions": resp.SuggestedNextActions,
		"safety_limit_applied":   resp.SafetyLimitApplied,
	}
	if resp.RankingReasons != nil {
		m["ranking_reasons"] = resp.RankingReasons
	}
	return m
}
