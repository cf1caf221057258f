package query

import "fmt"

// Dedup removes duplicate results, keyed by symbol_stable_id when
// present, else by a (type, path, line_start, line_end, name) tuple.
// First occurrence wins. Returns the deduped slice, the original indices
// that were kept (for AlignRankingReasonsToDedup), and a suppressed
// count.
func Dedup(results []Result) (deduped []Result, keptIndices []int, suppressed int) {
	seen := make(map[string]struct{}, len(results))
	deduped = make([]Result, 0, len(results))
	keptIndices = make([]int, 0, len(results))

	for i, r := range results {
		key := dedupKey(r)
		if _, ok := seen[key]; ok {
			suppressed++
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, r)
		keptIndices = append(keptIndices, i)
	}
	return deduped, keptIndices, suppressed
}

func dedupKey(r Result) string {
	if r.SymbolStableID != "" {
		return "stable:" + r.SymbolStableID
	}
	return fmt.Sprintf("%s:%s:%d:%d:%s", r.ResultType, r.Path, r.LineStart, r.LineEnd, r.Name)
}

// AlignRankingReasonsToDedup re-indexes a pre-dedup reasons slice to
// match the post-dedup result order, dropping reasons whose result was
// suppressed.
func AlignRankingReasonsToDedup(reasons []RankingReason, keptIndices []int) []RankingReason {
	aligned := make([]RankingReason, 0, len(keptIndices))
	for newIndex, oldIndex := range keptIndices {
		if oldIndex >= len(reasons) {
			continue
		}
		updated := reasons[oldIndex]
		updated.ResultIndex = newIndex
		aligned = append(aligned, updated)
	}
	return aligned
}
