package interfaces

import (
	"context"

	"docqa/internal/rag/schema"
)

// Extractor turns a document's raw bytes into page-scoped records. When pages
// is nil or empty, every page is extracted; otherwise only the listed 1-based
// page numbers are. It fails only when the document cannot be opened at all;
// individual unreadable pages are yielded with empty text.
type Extractor interface {
	Extract(ctx context.Context, raw []byte, pages []int) ([]*schema.Page, error)
}

// Splitter cuts page records into chunks with deterministic IDs and typed
// provenance.
type Splitter interface {
	Split(ctx context.Context, document string, pages []*schema.Page) ([]*schema.Chunk, error)
}

// EmbeddingModel maps texts to fixed-dimension vectors. Embed returns one
// vector per input, in input order; a partial failure fails the whole batch so
// alignment is never silently corrupted. Version identifies the model so that
// collections indexed with a different model can be detected.
type EmbeddingModel interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Version() string
}

// CollectionStore is the capability interface over the vector database:
// a set of named, independently managed collections of (chunk id, vector,
// provenance) entries.
type CollectionStore interface {
	// EnsureCollection creates the collection if it does not exist and stamps
	// it with the embedding model version. An existing collection indexed with
	// a different model version is rejected.
	EnsureCollection(ctx context.Context, collection string, dim int) error

	// Upsert writes chunks by ID; the last write for a given ID wins.
	Upsert(ctx context.Context, collection string, chunks []*schema.Chunk) error

	// Query returns up to topK nearest neighbours by cosine similarity.
	// A missing collection yields schema.ErrCollectionNotFound; it is never
	// created on read.
	Query(ctx context.Context, collection string, embedding []float32, topK int) ([]*schema.ScoredChunk, error)

	// DropCollection removes the whole namespace. Dropping a missing
	// collection is not an error; the bool reports whether it existed.
	DropCollection(ctx context.Context, collection string) (bool, error)

	ListCollections(ctx context.Context) ([]string, error)
}

// DocStore stores the full chunk records by ID, per collection. The vector
// store keeps only vectors and filter metadata; retrieval enriches its hits
// with the text held here.
type DocStore interface {
	Add(ctx context.Context, collection string, chunks map[string]*schema.Chunk) error
	Get(ctx context.Context, collection string, ids []string) (map[string]*schema.Chunk, error)
	DeleteCollection(ctx context.Context, collection string) error
}

// LLM is the language model capability: given a prompt, return text.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EventPublisher emits ingestion lifecycle events for downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event *schema.IngestionEvent) error
}
