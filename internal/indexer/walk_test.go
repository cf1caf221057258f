package indexer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWalkSkipsIgnoredDirsAndUnknownExtensions(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "main.go"), "package main\n")
	mustWrite(t, filepath.Join(root, "README.md"), "# hi\n")
	mustWrite(t, filepath.Join(root, "vendor", "dep.go"), "package dep\n")
	mustWrite(t, filepath.Join(root, "node_modules", "lib.ts"), "export {}\n")
	mustWrite(t, filepath.Join(root, "src", "app.ts"), "export const x = 1\n")

	files, err := Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	got := make(map[string]bool)
	for _, f := range files {
		got[f.RelPath] = true
	}
	if !got["main.go"] {
		t.Error("expected main.go to be discovered")
	}
	if !got["src/app.ts"] {
		t.Error("expected src/app.ts to be discovered")
	}
	if got["vendor/dep.go"] {
		t.Error("expected vendor/dep.go to be skipped")
	}
	if got["node_modules/lib.ts"] {
		t.Error("expected node_modules/lib.ts to be skipped")
	}
	if got["README.md"] {
		t.Error("expected README.md to be skipped (unregistered extension)")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
