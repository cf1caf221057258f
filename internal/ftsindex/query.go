package ftsindex

import "github.com/blevesearch/bleve/v2"

// Hit is a shard-agnostic search result: the document id, bleve's
// bm25-derived relevance score, and the stored field values
// internal/query needs to rebuild a SymbolRecord/SnippetRecord without a
// second store round trip.
type Hit struct {
	ID     string
	Score  float64
	Fields map[string]any
}

// SearchSymbols runs a full-text query against the symbols shard,
// matching on name/qualified_name/signature/doc_comment. limit bounds the
// number of hits bleve returns; the rerank pipeline in internal/query
// applies its own boosts and truncation on top of bleve's bm25 ordering.
func (s *IndexSet) SearchSymbols(text string, limit int) ([]Hit, error) {
	return searchShard(s.Symbols, text, limit,
		[]string{"name", "qualified_name", "signature", "doc_comment", "kind", "language", "file_path", "start_line", "end_line"})
}

// SearchSnippets runs a full-text query against the snippets shard.
func (s *IndexSet) SearchSnippets(text string, limit int) ([]Hit, error) {
	return searchShard(s.Snippets, text, limit,
		[]string{"text", "file_path", "start_line", "end_line", "symbol_id"})
}

// SearchFiles runs a full-text query against the files shard, used to
// satisfy IntentPath queries that name a path fragment rather than a
// symbol.
func (s *IndexSet) SearchFiles(text string, limit int) ([]Hit, error) {
	return searchShard(s.Files, text, limit, []string{"path", "language"})
}

func searchShard(idx bleve.Index, text string, limit int, fields []string) ([]Hit, error) {
	q := bleve.NewQueryStringQuery(text)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = fields

	result, err := idx.Search(req)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score, Fields: h.Fields})
	}
	return hits, nil
}
