// Package vectorstore persists and queries chunk embeddings, one logical
// index per domain.
package vectorstore

import "context"

// QueryResult is one ranked retrieval candidate.
type QueryResult struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]interface{}
}

// VectorStore is one domain's embedding index. Implementations must accept
// concurrent appends; rows are keyed by chunk id so re-indexing an
// unchanged document rewrites in place.
type VectorStore interface {
	// StoreEmbeddings persists one batch. The four slices are
	// positionally aligned and must have equal length.
	StoreEmbeddings(ctx context.Context, embeddings [][]float32, metadata []map[string]interface{}, ids []string, contents []string) error

	// Query returns the topK nearest candidates, best first.
	Query(ctx context.Context, queryEmbedding []float32, topK int) ([]QueryResult, error)
}

// Provider resolves the vector store backing a domain.
type Provider interface {
	ForDomain(name string) (VectorStore, error)
}
