package indexer

import "testing"

func TestStableSymbolIDReformattingInvariant(t *testing.T) {
	a := stableSymbolID(LangGo, "proj.pkg.Handle", "func Handle(w http.ResponseWriter, r *http.Request)")
	b := stableSymbolID(LangGo, "proj.pkg.Handle", "func Handle(w http.ResponseWriter,\n\tr *http.Request)")
	if a != b {
		t.Fatalf("expected whitespace-only signature changes to hash identically, got %q != %q", a, b)
	}
}

func TestStableSymbolIDChangesWithSignature(t *testing.T) {
	a := stableSymbolID(LangGo, "proj.pkg.Handle", "func Handle(w http.ResponseWriter)")
	b := stableSymbolID(LangGo, "proj.pkg.Handle", "func Handle(w http.ResponseWriter, r *http.Request)")
	if a == b {
		t.Fatal("expected a changed signature to change the stable id")
	}
}

func TestStableSymbolIDChangesWithLanguage(t *testing.T) {
	a := stableSymbolID(LangGo, "proj.pkg.Handle", "sig")
	b := stableSymbolID(LangPython, "proj.pkg.Handle", "sig")
	if a == b {
		t.Fatal("expected language to be part of the stable id's identity")
	}
}

func TestSnippetIDStableAcrossCalls(t *testing.T) {
	a := snippetID("src/app.go", 10, 20)
	b := snippetID("src/app.go", 10, 20)
	if a != b {
		t.Fatal("expected snippetID to be deterministic for the same inputs")
	}
	c := snippetID("src/app.go", 10, 21)
	if a == c {
		t.Fatal("expected a different end line to change the snippet id")
	}
}
