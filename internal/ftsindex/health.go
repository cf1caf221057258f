package ftsindex

import "github.com/blevesearch/bleve/v2"

// ShardHealth mirrors the per-shard record shape
// `check_tantivy_health` reports in the original source: a doc count on
// success, or an error string when the shard can't be opened/queried.
type ShardHealth struct {
	Shard    string
	OK       bool
	DocCount uint64
	Error    string
}

// CheckHealth probes all three shards via DocCount, which touches the
// on-disk segment files without running a full query.
func (s *IndexSet) CheckHealth() []ShardHealth {
	return []ShardHealth{
		checkShard(symbolsShard, s.Symbols),
		checkShard(snippetsShard, s.Snippets),
		checkShard(filesShard, s.Files),
	}
}

func checkShard(name string, idx bleve.Index) ShardHealth {
	n, err := idx.DocCount()
	if err != nil {
		return ShardHealth{Shard: name, OK: false, Error: err.Error()}
	}
	return ShardHealth{Shard: name, OK: true, DocCount: n}
}
