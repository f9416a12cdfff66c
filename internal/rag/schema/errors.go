package schema

import "errors"

// Sentinel errors for the ingestion and query paths. Callers classify
// failures with errors.Is and wrap these with fmt.Errorf("%w: ...") to add
// detail.
var (
	// ErrExtraction means the document itself could not be opened or parsed.
	// Individual unreadable pages are not extraction errors; they yield
	// pages with empty text.
	ErrExtraction = errors.New("document extraction failed")

	// ErrUnsupportedFormat means the uploaded bytes are not a supported
	// document format.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmbedding means the embedding service failed for a whole batch.
	// Batches fail atomically so vector/text alignment can never be corrupted.
	ErrEmbedding = errors.New("embedding failed")

	// ErrCollectionNotFound means a read addressed a collection that does not
	// exist. Reads never auto-create collections.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrNoCollectionsSelected means a query was issued with an empty target
	// list. Queries never silently fan out to all collections.
	ErrNoCollectionsSelected = errors.New("no collections selected")

	// ErrModelVersionMismatch means a collection was indexed with a different
	// embedding model version than the one configured. Mixing versions in one
	// collection would silently mis-rank results, so it is rejected.
	ErrModelVersionMismatch = errors.New("embedding model version mismatch")

	// ErrLanguageModel means the language model capability failed after the
	// composer's retry.
	ErrLanguageModel = errors.New("language model unavailable")
)
