package indexer

import (
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// whitespaceRun collapses runs of whitespace so two signatures that
// differ only in formatting hash identically.
var whitespaceRun = regexp.MustCompile(`\s+`)

// normalizeSignature collapses whitespace in a raw signature string, the
// minimal normalization spec.md §9 requires so that reformatting a
// function's parameter list without changing its shape doesn't change
// its stable id.
func normalizeSignature(sig string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(sig, " "))
}

// stableSymbolID computes spec.md §9's content-addressed symbol_stable_id:
// a hash of (language, qualified_name, normalized_signature). Using
// qualified_name rather than file path means the id survives a file
// rename as long as the symbol's own qualified name and signature don't
// change — moving a file changes qualified_name too, so "survives
// renames" here means renames that don't change the symbol's logical
// location, matching the teacher's xxh3-for-content-identity convention
// (internal/pipeline.fileHash) applied to a different input.
func stableSymbolID(language Language, qualifiedName, signature string) string {
	key := string(language) + "\x00" + qualifiedName + "\x00" + normalizeSignature(signature)
	h := xxh3.HashString128(key)
	return "sym_" + hex.EncodeToString(uint128Bytes(h.Hi, h.Lo))
}

func uint128Bytes(hi, lo uint64) []byte {
	b := make([]byte, 16)
	for i := 0; i < 8; i++ {
		b[i] = byte(hi >> (56 - 8*i))
		b[8+i] = byte(lo >> (56 - 8*i))
	}
	return b
}

// snippetID computes a stable id for a snippet record, content-addressed
// on its file path and line range so re-extracting the same snippet
// across syncs doesn't churn its bleve document id.
func snippetID(filePath string, startLine, endLine int) string {
	h := xxh3.HashString128(filePath + "\x00" + strconv.Itoa(startLine) + "\x00" + strconv.Itoa(endLine))
	return "snip_" + hex.EncodeToString(uint128Bytes(h.Hi, h.Lo))
}
