package query

import (
	"path/filepath"
	"testing"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
	"github.com/codecompass-mcp/codecompass/internal/ftsindex"
	"github.com/codecompass-mcp/codecompass/internal/relstore"
)

const testProjectID = "proj-1"

func newEngine(t *testing.T) *Engine {
	t.Helper()

	rel, err := relstore.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { rel.Close() })

	idx, err := ftsindex.Open(t.TempDir())
	if err != nil {
		t.Fatalf("ftsindex.Open: %v", err)
	}
	t.Cleanup(func() { idx.Close() })

	if err := rel.UpsertProject(coretypes.Project{ID: testProjectID, RootPath: "/repo", DefaultRef: "main", CreatedAt: 1}); err != nil {
		t.Fatalf("UpsertProject: %v", err)
	}

	return &Engine{Index: idx, Rel: rel, ProjectID: testProjectID}
}

func seedSymbol(t *testing.T, e *Engine, sym coretypes.SymbolRecord) {
	t.Helper()
	sym.ProjectID = e.ProjectID
	if err := e.Rel.UpsertSymbol(sym); err != nil {
		t.Fatalf("UpsertSymbol: %v", err)
	}
	if err := e.Index.IndexSymbol(sym); err != nil {
		t.Fatalf("IndexSymbol: %v", err)
	}
}

func TestLocateSymbolExactNameMatch(t *testing.T) {
	e := newEngine(t)
	seedSymbol(t, e, coretypes.SymbolRecord{
		StableID: "sym-parsewidget", Kind: coretypes.SymbolFunction, Name: "ParseWidget",
		QualifiedName: "widgets.ParseWidget", Language: "go",
		FilePath: filepath.Join("widgets", "parse.go"), StartLine: 10, EndLine: 20,
		Signature: "func ParseWidget(r io.Reader) (*Widget, error)",
	})
	seedSymbol(t, e, coretypes.SymbolRecord{
		StableID: "sym-other", Kind: coretypes.SymbolFunction, Name: "ParseOther",
		QualifiedName: "widgets.ParseOther", Language: "go",
		FilePath: filepath.Join("widgets", "other.go"), StartLine: 1, EndLine: 5,
	})

	resp, err := e.LocateSymbol(LocateParams{
		RequestParams: RequestParams{Limit: 10, MaxResponseBytes: DefaultMaxResponseBytes},
		Name:          "ParseWidget",
	})
	if err != nil {
		t.Fatalf("LocateSymbol: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d: %+v", len(resp.Results), resp.Results)
	}
	if resp.Results[0]["symbol_stable_id"] != "sym-parsewidget" {
		t.Errorf("wrong result: %+v", resp.Results[0])
	}
	if resp.Results[0]["signature"] == nil {
		t.Errorf("expected signature at default detail level, got %+v", resp.Results[0])
	}
}

func TestLocateSymbolFiltersByKindAndLanguage(t *testing.T) {
	e := newEngine(t)
	seedSymbol(t, e, coretypes.SymbolRecord{
		StableID: "sym-fn", Kind: coretypes.SymbolFunction, Name: "Run", Language: "go",
		FilePath: "a.go", StartLine: 1, EndLine: 2,
	})
	seedSymbol(t, e, coretypes.SymbolRecord{
		StableID: "sym-type", Kind: coretypes.SymbolType, Name: "Run", Language: "go",
		FilePath: "b.go", StartLine: 1, EndLine: 2,
	})

	resp, err := e.LocateSymbol(LocateParams{
		RequestParams: RequestParams{Limit: 10, MaxResponseBytes: DefaultMaxResponseBytes},
		Name:          "Run",
		Kind:          "type",
	})
	if err != nil {
		t.Fatalf("LocateSymbol: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0]["symbol_stable_id"] != "sym-type" {
		t.Fatalf("expected only the type kind result, got %+v", resp.Results)
	}
}

func TestLocateSymbolNoMatchReturnsSuggestions(t *testing.T) {
	e := newEngine(t)

	resp, err := e.LocateSymbol(LocateParams{
		RequestParams: RequestParams{Limit: 10, Ref: "main", MaxResponseBytes: DefaultMaxResponseBytes},
		Name:          "DoesNotExist",
	})
	if err != nil {
		t.Fatalf("LocateSymbol: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Fatalf("expected no results, got %+v", resp.Results)
	}
	if len(resp.SuggestedNextActions) != 2 {
		t.Fatalf("expected locate_symbol's two-action fallback, got %+v", resp.SuggestedNextActions)
	}
	if resp.SuggestedNextActions[1].Tool != "search_code" || resp.SuggestedNextActions[1].Query != "DoesNotExist" {
		t.Errorf("unexpected second suggestion: %+v", resp.SuggestedNextActions[1])
	}
}

func TestSearchCodeRanksExactMatchAboveSubstring(t *testing.T) {
	e := newEngine(t)
	seedSymbol(t, e, coretypes.SymbolRecord{
		StableID: "sym-exact", Kind: coretypes.SymbolFunction, Name: "handleRequest",
		QualifiedName: "server.handleRequest", Language: "go", FilePath: "server.go", StartLine: 1, EndLine: 10,
	})
	seedSymbol(t, e, coretypes.SymbolRecord{
		StableID: "sym-sub", Kind: coretypes.SymbolFunction, Name: "handleRequestWithRetry",
		QualifiedName: "server.handleRequestWithRetry", Language: "go", FilePath: "server.go", StartLine: 20, EndLine: 30,
	})

	resp, err := e.SearchCode(SearchParams{
		RequestParams: RequestParams{Limit: 10, MaxResponseBytes: DefaultMaxResponseBytes},
		Query:         "handleRequest",
	})
	if err != nil {
		t.Fatalf("SearchCode: %v", err)
	}
	if len(resp.Results) < 2 {
		t.Fatalf("expected at least 2 results, got %+v", resp.Results)
	}
	if resp.Results[0]["symbol_stable_id"] != "sym-exact" {
		t.Errorf("expected exact match first, got %+v", resp.Results[0])
	}
}

func TestSearchCodeCompactDropsMetadata(t *testing.T) {
	e := newEngine(t)
	seedSymbol(t, e, coretypes.SymbolRecord{
		StableID: "sym-only", Kind: coretypes.SymbolFunction, Name: "Alpha",
		QualifiedName: "pkg.Alpha", Language: "go", FilePath: "pkg/a.go", StartLine: 1, EndLine: 2,
	})

	resp, err := e.SearchCode(SearchParams{
		RequestParams: RequestParams{Limit: 10, Compact: true, MaxResponseBytes: DefaultMaxResponseBytes},
		Query:         "Alpha",
	})
	if err != nil {
		t.Fatalf("SearchCode: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %+v", resp.Results)
	}
	if _, ok := resp.Results[0]["signature"]; ok {
		t.Errorf("compact result should omit signature: %+v", resp.Results[0])
	}
}

func TestSearchCodeRankingExplainFull(t *testing.T) {
	e := newEngine(t)
	seedSymbol(t, e, coretypes.SymbolRecord{
		StableID: "sym-x", Kind: coretypes.SymbolFunction, Name: "Xyz",
		QualifiedName: "pkg.Xyz", Language: "go", FilePath: "pkg/x.go", StartLine: 1, EndLine: 2,
	})

	resp, err := e.SearchCode(SearchParams{
		RequestParams: RequestParams{
			Limit: 10, MaxResponseBytes: DefaultMaxResponseBytes,
			RankingExplainLevel: coretypes.RankingExplainFull,
		},
		Query: "Xyz",
	})
	if err != nil {
		t.Fatalf("SearchCode: %v", err)
	}
	reasons, ok := resp.RankingReasons.([]RankingReason)
	if !ok || len(reasons) != len(resp.Results) {
		t.Fatalf("expected full ranking reasons aligned to results, got %+v", resp.RankingReasons)
	}
}
