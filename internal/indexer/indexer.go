package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
	"github.com/codecompass-mcp/codecompass/internal/ftsindex"
	"github.com/codecompass-mcp/codecompass/internal/relstore"
	"github.com/codecompass-mcp/codecompass/internal/schema"
	"github.com/codecompass-mcp/codecompass/internal/vcsprobe"
)

// Options configures one Run: index or incrementally sync a project's
// working tree into its relstore and ftsindex stores.
type Options struct {
	ProjectID string
	RootPath  string
	DataDir   string
	Ref       string
	Kind      coretypes.JobKind
	JobID     string // non-empty enables job-progress reporting
}

// progressEvery bounds how often UpdateJobProgress is written: once every
// progressEvery processed files plus once when the last file is done,
// rather than once per file.
const progressEvery = 25

// Run walks opts.RootPath, diffs it against the project's previously
// indexed file hashes (full index on JobKindIndex, incremental on
// JobKindSync), extracts symbols/snippets/imports for every changed file,
// writes them to rel and fts, and finishes by bumping the manifest
// generation and recording branch_state. Grounded in the teacher's
// pipeline.Run/runPasses two-speed (full vs incremental) shape, collapsed
// to CodeCompass's flatter symbol/snippet/file/import schema.
func Run(ctx context.Context, rel *relstore.Store, fts *ftsindex.IndexSet, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	discovered, err := Walk(opts.RootPath)
	if err != nil {
		return fmt.Errorf("indexer: walk: %w", err)
	}

	priorHashes, err := rel.AllFileHashes(opts.ProjectID)
	if err != nil {
		return fmt.Errorf("indexer: load prior hashes: %w", err)
	}

	isFullIndex := opts.Kind == coretypes.JobKindIndex || len(priorHashes) == 0

	byRelPath := make(map[string]FileInfo, len(discovered))
	for _, f := range discovered {
		byRelPath[f.RelPath] = f
	}

	type changedFile struct {
		info FileInfo
		hash string
	}
	var changed []changedFile

	for _, f := range discovered {
		if err := ctx.Err(); err != nil {
			return err
		}
		hash, err := fileHash(f.AbsPath)
		if err != nil {
			slog.Warn("indexer.hash_failed", "path", f.RelPath, "err", err)
			continue
		}
		if isFullIndex {
			changed = append(changed, changedFile{f, hash})
			continue
		}
		if prior, ok := priorHashes[f.RelPath]; !ok || prior != hash {
			changed = append(changed, changedFile{f, hash})
		}
	}

	// Files present in the prior index but no longer on disk are removed.
	var removed []string
	for relPath := range priorHashes {
		if _, ok := byRelPath[relPath]; !ok {
			removed = append(removed, relPath)
		}
	}

	slog.Info("indexer.plan", "project_id", opts.ProjectID, "kind", opts.Kind.String(),
		"total_files", len(discovered), "changed", len(changed), "removed", len(removed))

	total := len(changed) + len(removed)
	done := 0
	reportProgress := func() {
		if opts.JobID == "" {
			return
		}
		if done%progressEvery != 0 && done != total {
			return
		}
		if err := rel.UpdateJobProgress(opts.JobID, done, total); err != nil {
			slog.Warn("indexer.progress_write_failed", "job_id", opts.JobID, "err", err)
		}
	}

	for _, relPath := range removed {
		if err := removeFile(rel, fts, opts.ProjectID, relPath); err != nil {
			return fmt.Errorf("indexer: remove %s: %w", relPath, err)
		}
		done++
		reportProgress()
	}

	for _, cf := range changed {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := indexOneFile(rel, fts, opts.ProjectID, cf.info, cf.hash); err != nil {
			slog.Warn("indexer.file_failed", "path", cf.info.RelPath, "err", err)
		}
		done++
		reportProgress()
	}

	if err := finalize(rel, fts, opts); err != nil {
		return fmt.Errorf("indexer: finalize: %w", err)
	}
	return nil
}

// indexOneFile re-extracts a single changed file and replaces its prior
// rows in both stores. Deleting before inserting (rather than diffing at
// the symbol level) mirrors the teacher's DeleteSymbolsForFile-then-
// reinsert incremental-sync idiom — simpler than computing a symbol-level
// diff, and correct since every changed file's full symbol set is
// recomputed from source regardless.
func indexOneFile(rel *relstore.Store, fts *ftsindex.IndexSet, projectID string, f FileInfo, hash string) error {
	source, err := os.ReadFile(f.AbsPath)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	result, err := ExtractFile(projectID, f, source)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	if err := clearFileRows(rel, fts, projectID, f.RelPath); err != nil {
		return fmt.Errorf("clear prior rows: %w", err)
	}

	if err := rel.UpsertFile(coretypes.FileRecord{
		ProjectID:   projectID,
		Path:        f.RelPath,
		ContentHash: hash,
		Language:    string(f.Language),
		SizeBytes:   int64(len(source)),
		IndexedAt:   relstore.Now(),
	}); err != nil {
		return fmt.Errorf("upsert file: %w", err)
	}
	if err := fts.IndexFile(coretypes.FileRecord{Path: f.RelPath, Language: string(f.Language)}); err != nil {
		return fmt.Errorf("fts index file: %w", err)
	}

	for _, sym := range result.Symbols {
		if err := rel.UpsertSymbol(sym); err != nil {
			return fmt.Errorf("upsert symbol %s: %w", sym.Name, err)
		}
		if err := fts.IndexSymbol(sym); err != nil {
			return fmt.Errorf("fts index symbol %s: %w", sym.Name, err)
		}
	}
	for _, snip := range result.Snippets {
		if err := fts.IndexSnippet(snip); err != nil {
			return fmt.Errorf("fts index snippet: %w", err)
		}
	}
	for _, edge := range result.Imports {
		if err := rel.UpsertImport(edge); err != nil {
			return fmt.Errorf("upsert import: %w", err)
		}
	}
	return nil
}

// removeFile deletes every row a now-deleted file contributed, in both
// stores.
func removeFile(rel *relstore.Store, fts *ftsindex.IndexSet, projectID, relPath string) error {
	if err := clearFileRows(rel, fts, projectID, relPath); err != nil {
		return err
	}
	if err := rel.DeleteFile(projectID, relPath); err != nil {
		return err
	}
	return fts.DeleteFile(relPath)
}

// clearFileRows removes a file's prior symbol/snippet/import rows from
// both stores, ahead of either re-indexing it or deleting it outright.
func clearFileRows(rel *relstore.Store, fts *ftsindex.IndexSet, projectID, relPath string) error {
	symbols, err := rel.FindSymbolsInFile(projectID, relPath)
	if err != nil {
		return fmt.Errorf("find symbols: %w", err)
	}
	symbolIDs := make([]string, len(symbols))
	for i, s := range symbols {
		symbolIDs[i] = s.StableID
	}

	// Snippet ids are content-addressed from (path, line range); since
	// clearFileRows runs before the caller re-extracts, the only way to
	// know which snippet ids existed is the bleve shard itself, so prior
	// snippets for a file are pruned via a direct shard query rather than
	// a relstore table — search_code never needs snippet rows outside
	// ftsindex.
	snippetIDs, err := fts.SnippetIDsForFile(relPath)
	if err != nil {
		return fmt.Errorf("list snippet ids: %w", err)
	}

	if err := fts.DeleteSymbolsAndSnippetsForFile(symbolIDs, snippetIDs); err != nil {
		return fmt.Errorf("fts delete: %w", err)
	}
	if err := rel.DeleteSymbolsForFile(projectID, relPath); err != nil {
		return fmt.Errorf("delete symbols: %w", err)
	}
	if err := rel.DeleteImportsForFile(projectID, relPath); err != nil {
		return fmt.Errorf("delete imports: %w", err)
	}
	return nil
}

// finalize bumps the manifest generation in both stores and records
// branch_state for opts.Ref, so internal/schema sees a consistent
// Compatible index and internal/refresolve has a last-indexed commit to
// compare the live ref against.
func finalize(rel *relstore.Store, fts *ftsindex.IndexSet, opts Options) error {
	prior, err := rel.GetManifest(opts.ProjectID)
	switch {
	case err == nil:
	case err == relstore.ErrNotFound:
	default:
		return fmt.Errorf("get prior manifest: %w", err)
	}
	generation := prior.Generation + 1

	versions := schema.CurrentVersions()
	if err := rel.PutManifest(relstore.Manifest{
		ProjectID:     opts.ProjectID,
		SchemaVersion: versions.SchemaVersion,
		ParserVersion: versions.ParserVersion,
		Generation:    generation,
	}); err != nil {
		return fmt.Errorf("put rel manifest: %w", err)
	}
	if err := ftsindex.WriteManifest(opts.DataDir, ftsindex.Manifest{
		SchemaVersion: versions.SchemaVersion,
		ParserVersion: versions.ParserVersion,
		Generation:    generation,
	}); err != nil {
		return fmt.Errorf("write fts manifest: %w", err)
	}

	fileCount, err := rel.FileCount(opts.ProjectID)
	if err != nil {
		return fmt.Errorf("file count: %w", err)
	}

	commit, err := vcsprobe.DetectHeadCommit(opts.RootPath)
	if err != nil {
		slog.Warn("indexer.vcs_probe_failed", "root", opts.RootPath, "err", err)
		commit = ""
	}

	now := relstore.Now()
	existing, err := rel.GetBranchState(opts.ProjectID, opts.Ref)
	createdAt := now
	if err == nil {
		createdAt = existing.CreatedAt
	}

	return rel.UpsertBranchState(coretypes.BranchState{
		ProjectID:         opts.ProjectID,
		Ref:               opts.Ref,
		LastIndexedCommit: commit,
		FileCount:         fileCount,
		CreatedAt:         createdAt,
		LastAccessedAt:    now,
	})
}
