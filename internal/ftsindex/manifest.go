package ftsindex

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Manifest is the full-text side's schema/parser/generation marker,
// written as a JSON sidecar next to the three shard directories.
// internal/schema reads both this file and relstore's manifest row and
// classifies SchemaCorruptManifest if they disagree or this file is
// unreadable.
type Manifest struct {
	SchemaVersion int   `json:"schema_version"`
	ParserVersion int   `json:"parser_version"`
	Generation    int64 `json:"generation"`
}

func manifestPath(dataDir string) string {
	return filepath.Join(dataDir, "index", "manifest.json")
}

// WriteManifest atomically replaces the manifest.json sidecar for a
// project's full-text store. Writing to a temp file and renaming avoids
// leaving a half-written manifest if the process is killed mid-write.
func WriteManifest(dataDir string, m Manifest) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	path := manifestPath(dataDir)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o640); err != nil {
		return fmt.Errorf("write manifest tmp: %w", err)
	}
	return os.Rename(tmp, path)
}

// ReadManifest loads the manifest.json sidecar. Returns os.ErrNotExist if
// no manifest has ever been written (the project has never completed an
// index_repo run).
func ReadManifest(dataDir string) (Manifest, error) {
	b, err := os.ReadFile(manifestPath(dataDir))
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}
