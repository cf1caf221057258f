package indexer

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/zeebo/xxh3"
)

// fileHash returns the hex-encoded xxh3 streaming hash of a file's
// contents, the same pattern as the teacher's pipeline.fileHash — used to
// diff the working tree against relstore's stored content_hash and skip
// unchanged files during an incremental sync.
func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
