package query

// SuggestedAction is one deterministic next-step hint returned alongside
// a query response — e.g. "your search_code query came back empty, try
// locate_symbol with this name instead."
type SuggestedAction struct {
	Tool  string `json:"tool"`
	Name  string `json:"name,omitempty"`
	Query string `json:"query,omitempty"`
	Ref   string `json:"ref,omitempty"`
	Limit int    `json:"limit"`
}

// DeterministicSearchSuggestions returns existing unchanged if the caller
// already produced suggestions; otherwise falls back to a single
// search_code retry at roughly half the original limit, per the
// original's deterministic_suggested_actions.
func DeterministicSearchSuggestions(existing []SuggestedAction, query, effectiveRef string, limit int) []SuggestedAction {
	if len(existing) > 0 {
		return existing
	}
	if limit < 1 {
		limit = 1
	}
	return []SuggestedAction{
		{Tool: "search_code", Query: query, Ref: effectiveRef, Limit: limit/2 + 1},
	}
}

// DeterministicLocateSuggestions builds locate_symbol's fixed two-action
// fallback: a narrower locate_symbol retry, and a search_code query by
// name, per the original's deterministic_locate_suggested_actions.
func DeterministicLocateSuggestions(name, effectiveRef string, limit int) []SuggestedAction {
	half := limit / 2
	if half < 1 {
		half = 1
	}
	return []SuggestedAction{
		{Tool: "locate_symbol", Name: name, Ref: effectiveRef, Limit: half},
		{Tool: "search_code", Query: name, Ref: effectiveRef, Limit: 5},
	}
}
