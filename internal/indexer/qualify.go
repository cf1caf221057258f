package indexer

import (
	"path/filepath"
	"strings"
)

// qualifiedName composes a symbol's fully-qualified name from the
// project id, the file's path relative to the workspace root, and the
// symbol's own name. Grounded in the teacher's internal/fqn.Compute:
// <project_id>.<rel_path_parts_dotted>.<name>, with Python __init__ and
// JS/TS index-file special-casing preserved since those conventions
// apply equally to CodeCompass's four languages.
func qualifiedName(projectID, relPath, name string) string {
	relPath = strings.TrimSuffix(relPath, filepath.Ext(relPath))
	parts := strings.Split(filepath.ToSlash(relPath), "/")

	if len(parts) > 0 && parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) > 0 && parts[len(parts)-1] == "index" {
		parts = parts[:len(parts)-1]
	}

	all := append([]string{projectID}, parts...)
	if name != "" {
		all = append(all, name)
	}
	return strings.Join(all, ".")
}

// moduleQualifiedName is qualifiedName with no symbol name component:
// the dotted name of a file's own module/package scope.
func moduleQualifiedName(projectID, relPath string) string {
	return qualifiedName(projectID, relPath, "")
}
