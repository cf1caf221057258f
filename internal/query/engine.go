package query

import (
	"strings"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
	"github.com/codecompass-mcp/codecompass/internal/ftsindex"
	"github.com/codecompass-mcp/codecompass/internal/relstore"
)

// overfetchFactor controls how many candidates are pulled from the
// stores before rerank/dedup/truncation trims down to the caller's
// requested limit — reranking needs more candidates than the final
// result count to have anything to reorder.
const overfetchFactor = 4

// minOverfetch is the floor applied to overfetchFactor*limit so a
// limit=1 request still has enough candidates for dedup to work with.
const minOverfetch = 20

// Engine joins the full-text store and the relational store to answer
// locate_symbol and search_code queries for one project.
type Engine struct {
	Index     *ftsindex.IndexSet
	Rel       *relstore.Store
	ProjectID string
}

// RequestParams is shared between LocateSymbol and SearchCode.
type RequestParams struct {
	Ref                 string
	Limit               int
	DetailLevel         coretypes.DetailLevel
	Compact             bool
	RankingExplainLevel coretypes.RankingExplainLevel
	MaxResponseBytes    int
}

// Response is shared between LocateSymbol and SearchCode.
type Response struct {
	Results              []ResultItem
	RankingReasons       any
	SuggestedNextActions []SuggestedAction
	SafetyLimitApplied   bool
	TotalCandidates      int
	SuppressedDuplicates int
}

func overfetchLimit(limit int) int {
	n := limit * overfetchFactor
	if n < minOverfetch {
		n = minOverfetch
	}
	return n
}

// LocateParams are locate_symbol's arguments beyond RequestParams.
type LocateParams struct {
	RequestParams
	Name     string
	Kind     string // optional SymbolKind filter, string form
	Language string // optional filter
}

// LocateSymbol finds symbols by name via the relational store (exact
// name match is reliable there), optionally filtered by kind/language,
// cross-referencing the full-text shard for a bm25 base score, then runs
// the shared rerank/dedup/payload pipeline.
func (e *Engine) LocateSymbol(p LocateParams) (Response, error) {
	syms, err := e.Rel.FindSymbolsByName(e.ProjectID, p.Name)
	if err != nil {
		return Response{}, err
	}

	bm25 := bm25ScoresByStableID(e.Index, p.Name, overfetchLimit(p.Limit))

	results := make([]Result, 0, len(syms))
	symByStable := make(map[string]coretypes.SymbolRecord, len(syms))
	for _, sym := range syms {
		if p.Kind != "" && !strings.EqualFold(sym.Kind.String(), p.Kind) {
			continue
		}
		if p.Language != "" && !strings.EqualFold(sym.Language, p.Language) {
			continue
		}
		symByStable[sym.StableID] = sym
		results = append(results, Result{
			ResultID:       sym.StableID,
			SymbolStableID: sym.StableID,
			ResultType:     ResultSymbol,
			Path:           sym.FilePath,
			LineStart:      sym.StartLine,
			LineEnd:        sym.EndLine,
			Kind:           sym.Kind.String(),
			Name:           sym.Name,
			QualifiedName:  sym.QualifiedName,
			Score:          bm25[sym.StableID],
		})
	}

	return e.finish(results, symByStable, p.Name, p.RequestParams, true)
}

// SearchParams are search_code's arguments beyond RequestParams.
type SearchParams struct {
	RequestParams
	Query string
}

// SearchCode runs a free-text query across the symbols, snippets, and
// files shards, enriches symbol hits with relational metadata, then runs
// the shared rerank/dedup/payload pipeline.
func (e *Engine) SearchCode(p SearchParams) (Response, error) {
	n := overfetchLimit(p.Limit)

	symbolHits, err := e.Index.SearchSymbols(p.Query, n)
	if err != nil {
		return Response{}, err
	}
	snippetHits, err := e.Index.SearchSnippets(p.Query, n)
	if err != nil {
		return Response{}, err
	}
	fileHits, err := e.Index.SearchFiles(p.Query, n)
	if err != nil {
		return Response{}, err
	}

	results := make([]Result, 0, len(symbolHits)+len(snippetHits)+len(fileHits))
	symByStable := make(map[string]coretypes.SymbolRecord, len(symbolHits))

	for _, h := range symbolHits {
		sym, err := e.Rel.GetSymbol(e.ProjectID, h.ID)
		if err != nil {
			// Full-text and relational store disagree on this id; skip
			// rather than surface a half-populated result.
			continue
		}
		symByStable[sym.StableID] = sym
		results = append(results, Result{
			ResultID:       sym.StableID,
			SymbolStableID: sym.StableID,
			ResultType:     ResultSymbol,
			Path:           sym.FilePath,
			LineStart:      sym.StartLine,
			LineEnd:        sym.EndLine,
			Kind:           sym.Kind.String(),
			Name:           sym.Name,
			QualifiedName:  sym.QualifiedName,
			Score:          h.Score,
		})
	}
	for _, h := range snippetHits {
		results = append(results, Result{
			ResultID:   h.ID,
			ResultType: ResultSnippet,
			Path:       fieldString(h.Fields, "file_path"),
			LineStart:  fieldInt(h.Fields, "start_line"),
			LineEnd:    fieldInt(h.Fields, "end_line"),
			Score:      h.Score,
		})
	}
	for _, h := range fileHits {
		results = append(results, Result{
			ResultID:   h.ID,
			ResultType: ResultFile,
			Path:       fieldString(h.Fields, "path"),
			Score:      h.Score,
		})
	}

	return e.finish(results, symByStable, p.Query, p.RequestParams, false)
}

func (e *Engine) finish(results []Result, symByStable map[string]coretypes.SymbolRecord, queryOrName string, p RequestParams, isLocate bool) (Response, error) {
	reasons := BuildRankingReasons(results, queryOrName)
	Rerank(results, queryOrName)

	deduped, keptIndices, suppressed := Dedup(results)
	alignedReasons := AlignRankingReasonsToDedup(reasons, keptIndices)

	if p.Limit > 0 && len(deduped) > p.Limit {
		deduped = deduped[:p.Limit]
		alignedReasons = alignedReasons[:min(len(alignedReasons), p.Limit)]
	}

	items := make([]ResultItem, 0, len(deduped))
	for _, r := range deduped {
		var symPtr *coretypes.SymbolRecord
		if sym, ok := symByStable[r.SymbolStableID]; ok {
			symPtr = &sym
		}
		items = append(items, ProjectResult(r, symPtr, p.DetailLevel, p.Compact, ""))
	}

	items, truncated := EnforcePayloadSafetyLimit(items, p.MaxResponseBytes)

	var suggestions []SuggestedAction
	if len(items) == 0 {
		if isLocate {
			suggestions = DeterministicLocateSuggestions(queryOrName, p.Ref, p.Limit)
		} else {
			suggestions = DeterministicSearchSuggestions(nil, queryOrName, p.Ref, p.Limit)
		}
	}

	return Response{
		Results:              items,
		RankingReasons:       RankingReasonsPayload(alignedReasons, p.RankingExplainLevel),
		SuggestedNextActions: suggestions,
		SafetyLimitApplied:   truncated,
		TotalCandidates:      len(results),
		SuppressedDuplicates: suppressed,
	}, nil
}

func bm25ScoresByStableID(index *ftsindex.IndexSet, query string, limit int) map[string]float64 {
	scores := make(map[string]float64)
	hits, err := index.SearchSymbols(query, limit)
	if err != nil {
		return scores
	}
	for _, h := range hits {
		scores[h.ID] = h.Score
	}
	return scores
}

func fieldString(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func fieldInt(fields map[string]any, key string) int {
	switch v := fields[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
