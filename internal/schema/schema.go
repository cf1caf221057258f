// Package schema classifies a project's on-disk index into the 4-state
// SchemaStatus enum, the gate every query/index tool handler checks
// before touching the stores. Ported from the original's
// `load_index_runtime`/`classify_index_open_error` in
// codecompass-mcp/src/server.rs.
package schema

import (
	"errors"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
	"github.com/codecompass-mcp/codecompass/internal/ftsindex"
	"github.com/codecompass-mcp/codecompass/internal/relstore"
)

// Versions pins the schema/parser versions the running binary expects.
// Bumped whenever a relstore table or ftsindex document shape changes in
// a way old index data can't satisfy.
type Versions struct {
	SchemaVersion int
	ParserVersion int
}

// CurrentSchemaVersion and CurrentParserVersion are the versions the
// running binary expects. cmd/codecompass and cmd/codecompass-indexer
// both build their schema.Versions from these so the server and the
// out-of-process indexer never disagree about what "compatible" means.
const (
	CurrentSchemaVersion = 1
	CurrentParserVersion = 1
)

// CurrentVersions returns the Versions value every entrypoint should use.
func CurrentVersions() Versions {
	return Versions{SchemaVersion: CurrentSchemaVersion, ParserVersion: CurrentParserVersion}
}

// Runtime is the result of loading a project's index: either a usable
// IndexSet (Compatible) or a status/reason explaining why not.
type Runtime struct {
	IndexSet *ftsindex.IndexSet
	Status   coretypes.SchemaStatus
	Reason   string
}

// Close releases the IndexSet, if one was opened.
func (r Runtime) Close() error {
	if r.IndexSet != nil {
		return r.IndexSet.Close()
	}
	return nil
}

// Load classifies and, if compatible, opens the full-text store for
// dataDir. rel is used to cross-check the relational side's manifest row
// against the ftsindex sidecar: if either is missing the index is
// NotIndexed, if the versions disagree with `want` it's
// ReindexRequired, and if the sidecar is unreadable or the shards
// themselves won't open it's CorruptManifest.
func Load(dataDir string, want Versions, rel *relstore.Store, projectID string) Runtime {
	ftsManifest, err := ftsindex.ReadManifest(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return Runtime{Status: coretypes.SchemaNotIndexed, Reason: "No index found. Run index_repo."}
		}
		return Runtime{Status: coretypes.SchemaCorruptManifest, Reason: fmt.Sprintf("Index manifest unreadable: %v", err)}
	}

	relManifest, err := rel.GetManifest(projectID)
	if err != nil {
		if errors.Is(err, relstore.ErrNotFound) {
			return Runtime{Status: coretypes.SchemaNotIndexed, Reason: "No index found. Run index_repo."}
		}
		return Runtime{Status: coretypes.SchemaCorruptManifest, Reason: fmt.Sprintf("Relational manifest unreadable: %v", err)}
	}

	if relManifest.SchemaVersion != ftsManifest.SchemaVersion || relManifest.ParserVersion != ftsManifest.ParserVersion ||
		relManifest.Generation != ftsManifest.Generation {
		return Runtime{
			Status: coretypes.SchemaCorruptManifest,
			Reason: "Relational and full-text manifests disagree; index is inconsistent.",
		}
	}

	if ftsManifest.SchemaVersion != want.SchemaVersion || ftsManifest.ParserVersion != want.ParserVersion {
		return Runtime{
			Status: coretypes.SchemaReindexRequired,
			Reason: fmt.Sprintf("Index schema is incompatible (current=%d, required=%d).",
				ftsManifest.SchemaVersion, want.SchemaVersion),
		}
	}

	set, err := ftsindex.OpenExisting(dataDir)
	if err != nil {
		if err == bleve.ErrorIndexPathDoesNotExist {
			return Runtime{Status: coretypes.SchemaNotIndexed, Reason: "No index found. Run index_repo."}
		}
		return Runtime{Status: coretypes.SchemaCorruptManifest, Reason: fmt.Sprintf("Index open failed: %v", err)}
	}

	return Runtime{IndexSet: set, Status: coretypes.SchemaCompatible}
}
