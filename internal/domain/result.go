package domain

// SearchResult is a single search hit. It carries the per-method scores and
// the final score under which the hit was ranked. Results are ephemeral:
// built per query, never persisted.
type SearchResult struct {
	id          string
	title       string
	content     string
	bm25Score   float64
	vectorScore float64
	hybridScore float64
	metadata    map[string]string
}

// NewBM25Result creates a hit ranked by keyword score alone.
func NewBM25Result(id, title, content string, score float64, metadata map[string]string) SearchResult {
	return SearchResult{
		id: id, title: title, content: content,
		bm25Score: score, hybridScore: score, metadata: metadata,
	}
}

// NewVectorResult creates a hit ranked by similarity score alone.
func NewVectorResult(id, title, content string, score float64, metadata map[string]string) SearchResult {
	return SearchResult{
		id: id, title: title, content: content,
		vectorScore: score, hybridScore: score, metadata: metadata,
	}
}

// NewFusedResult creates a hit carrying both per-method scores and the fused
// score it was ranked under.
func NewFusedResult(
	id, title, content string,
	bm25Score, vectorScore, hybridScore float64,
	metadata map[string]string,
) SearchResult {
	return SearchResult{
		id: id, title: title, content: content,
		bm25Score: bm25Score, vectorScore: vectorScore, hybridScore: hybridScore,
		metadata: metadata,
	}
}

// ID returns the document identifier.
func (r *SearchResult) ID() string { return r.id }

// Title returns the document title.
func (r *SearchResult) Title() string { return r.title }

// Content returns the document content.
func (r *SearchResult) Content() string { return r.content }

// BM25Score returns the keyword relevance score (0 for vector-only hits).
func (r *SearchResult) BM25Score() float64 { return r.bm25Score }

// VectorScore returns the cosine similarity score (0 for keyword-only hits).
func (r *SearchResult) VectorScore() float64 { return r.vectorScore }

// HybridScore returns the score the hit was ranked under.
func (r *SearchResult) HybridScore() float64 { return r.hybridScore }

// Metadata returns the document metadata.
func (r *SearchResult) Metadata() map[string]string { return r.metadata }
