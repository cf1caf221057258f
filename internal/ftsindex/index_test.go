package ftsindex

import (
	"testing"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
)

func TestOpenCreatesAllShards(t *testing.T) {
	dir := t.TempDir()
	set, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer set.Close()

	for _, h := range set.CheckHealth() {
		if !h.OK {
			t.Errorf("shard %s unhealthy: %s", h.Shard, h.Error)
		}
	}
}

func TestIndexAndSearchSymbols(t *testing.T) {
	dir := t.TempDir()
	set, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer set.Close()

	sym := coretypes.SymbolRecord{
		StableID:      "sid1",
		Kind:          coretypes.SymbolFunction,
		Name:          "ParseConfig",
		QualifiedName: "internal/config.ParseConfig",
		Language:      "go",
		FilePath:      "internal/config/config.go",
		StartLine:     10,
		EndLine:       40,
		Signature:     "func ParseConfig(path string) (*Config, error)",
	}
	if err := set.IndexSymbol(sym); err != nil {
		t.Fatalf("IndexSymbol: %v", err)
	}

	hits, err := set.SearchSymbols("ParseConfig", 10)
	if err != nil {
		t.Fatalf("SearchSymbols: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "sid1" {
		t.Fatalf("expected one hit for sid1, got %+v", hits)
	}

	if err := set.DeleteSymbol("sid1"); err != nil {
		t.Fatalf("DeleteSymbol: %v", err)
	}
	hits, err = set.SearchSymbols("ParseConfig", 10)
	if err != nil {
		t.Fatalf("SearchSymbols after delete: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits after delete, got %+v", hits)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	set, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer set.Close()

	m := Manifest{SchemaVersion: 3, ParserVersion: 7, Generation: 42}
	if err := WriteManifest(dir, m); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	got, err := ReadManifest(dir)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if got != m {
		t.Errorf("expected %+v, got %+v", m, got)
	}
}

func TestReadManifestMissing(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadManifest(dir); err == nil {
		t.Fatal("expected error reading manifest before any Open/WriteManifest")
	}
}
