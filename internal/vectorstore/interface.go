package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks compare-ai/internal/vectorstore VectorStore

import "context"

// SearchResult is one scored hit from a similarity search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore is the read side of the search index.
type VectorStore interface {
	// Search returns the k nearest points to query, best first. Filters are
	// exact payload matches; string values match keywords, integers match integers.
	Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error)

	// CollectionExists reports whether the collection has been created.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
