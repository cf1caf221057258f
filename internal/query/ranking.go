package query

import (
	"sort"
	"strings"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
)

// ResultType distinguishes a symbol hit (locate_symbol/search_code's
// structural matches) from a snippet or file hit.
type ResultType string

const (
	ResultSymbol  ResultType = "symbol"
	ResultSnippet ResultType = "snippet"
	ResultFile    ResultType = "file"
)

// Result is the shared shape locate_symbol and search_code rerank
// together — renamed from the original's SearchResult since both tools
// feed the same pipeline here.
type Result struct {
	ResultID       string
	SymbolStableID string
	ResultType     ResultType
	Path           string
	LineStart      int
	LineEnd        int
	Kind           string
	Name           string
	QualifiedName  string
	Score          float64 // bleve bm25 score before boosts
}

// RankingReason records the boost breakdown for one result, surfaced to
// callers when ranking_explain_level=full: spec.md §4.E's
// {exact_match, qualified_name, path_affinity, definition, kind_match,
// bm25, final}.
type RankingReason struct {
	ResultIndex   int     `json:"result_index"`
	ExactMatch    float64 `json:"exact_match"`
	QualifiedName float64 `json:"qualified_name"`
	PathAffinity  float64 `json:"path_affinity"`
	Definition    float64 `json:"definition"`
	KindMatch     float64 `json:"kind_match"`
	Bm25          float64 `json:"bm25"`
	Final         float64 `json:"final"`
}

// BasicRankingReason is the ranking_explain_level=basic projection:
// spec.md §4.E's {exact_match, path_boost, semantic_similarity, final},
// where semantic_similarity=bm25 and path_boost=path_affinity.
type BasicRankingReason struct {
	ResultIndex        int     `json:"result_index"`
	ExactMatch         float64 `json:"exact_match"`
	PathBoost          float64 `json:"path_boost"`
	SemanticSimilarity float64 `json:"semantic_similarity"`
	Final              float64 `json:"final"`
}

// Rerank applies the boost formula — score = bm25 + exact_match*5 +
// qualified_substring*2 + definition_boost*1 + path_affinity*1 — in
// place, then stable-sorts by descending score with ResultID as a
// deterministic tiebreaker. It returns nothing; callers that want the
// per-result boost breakdown (ranking_explain_level=full/basic) call
// BuildRankingReasons before Rerank, while the results are still in
// their original order.
func Rerank(results []Result, query string) {
	queryLower := strings.ToLower(query)

	for i := range results {
		r := &results[i]
		boost := 0.0
		if r.Name != "" && strings.ToLower(r.Name) == queryLower {
			boost += 5.0
		}
		if r.QualifiedName != "" && strings.Contains(strings.ToLower(r.QualifiedName), queryLower) {
			boost += 2.0
		}
		if r.ResultType == ResultSymbol {
			boost += 1.0
		}
		if strings.Contains(strings.ToLower(r.Path), queryLower) {
			boost += 1.0
		}
		r.Score += boost
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ResultID < results[j].ResultID
	})
}

// BuildRankingReasons computes the same boost breakdown Rerank applies,
// without mutating results, so callers can capture per-result reasons
// indexed to the pre-sort order and later realign them post-dedup via
// AlignRankingReasonsToDedup.
func BuildRankingReasons(results []Result, query string) []RankingReason {
	queryLower := strings.ToLower(query)
	reasons := make([]RankingReason, len(results))
	for i, r := range results {
		reason := RankingReason{ResultIndex: i, Bm25: r.Score}
		if r.Name != "" && strings.ToLower(r.Name) == queryLower {
			reason.ExactMatch = 5.0
		}
		if r.QualifiedName != "" && strings.Contains(strings.ToLower(r.QualifiedName), queryLower) {
			reason.QualifiedName = 2.0
		}
		if r.ResultType == ResultSymbol {
			reason.Definition = 1.0
		}
		if strings.Contains(strings.ToLower(r.Path), queryLower) {
			reason.PathAffinity = 1.0
		}
		reason.Final = reason.Bm25 + reason.ExactMatch + reason.QualifiedName +
			reason.Definition + reason.PathAffinity + reason.KindMatch
		reasons[i] = reason
	}
	return reasons
}

// ToBasicRankingReasons projects full reasons down to the basic shape.
func ToBasicRankingReasons(reasons []RankingReason) []BasicRankingReason {
	basic := make([]BasicRankingReason, len(reasons))
	for i, r := range reasons {
		basic[i] = BasicRankingReason{
			ResultIndex:        r.ResultIndex,
			ExactMatch:         r.ExactMatch,
			PathBoost:          r.PathAffinity,
			SemanticSimilarity: r.Bm25,
			Final:              r.Final,
		}
	}
	return basic
}

// RankingReasonsPayload projects reasons per the requested explain level;
// nil for Off, matching the original's ranking_reasons_payload.
func RankingReasonsPayload(reasons []RankingReason, level coretypes.RankingExplainLevel) any {
	switch level {
	case coretypes.RankingExplainFull:
		return reasons
	case coretypes.RankingExplainBasic:
		return ToBasicRankingReasons(reasons)
	default:
		return nil
	}
}
