package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ChunkKind distinguishes how a chunk was produced from its source page.
type ChunkKind string

const (
	// ChunkKindText is a chunk cut from a page's running text.
	ChunkKindText ChunkKind = "text"
	// ChunkKindTable is a chunk holding a whole table block. Tables are never
	// split across chunks.
	ChunkKindTable ChunkKind = "table"
)

// Page is a page-scoped extraction record: the plain text of one page plus
// zero or more table blocks detected on it. A page that yielded no text is
// represented with an empty Text, not dropped by the extractor.
type Page struct {
	// Number is the 1-based page number in the source document.
	Number int

	// Text is the best-effort extracted running text of the page.
	Text string

	// Tables holds the text of each table block detected on the page.
	Tables []string
}

// Empty reports whether the page carries no retrievable content at all.
func (p *Page) Empty() bool {
	return p.Text == "" && len(p.Tables) == 0
}

// Provenance is the typed citation trail attached to every chunk. It replaces
// an open-ended metadata map so that citations can be checked at compile time.
type Provenance struct {
	// Document is the source document's filename within its collection.
	Document string `json:"document" bson:"document"`

	// PageStart and PageEnd bound the page range the chunk was cut from.
	// For the current splitter a chunk never spans pages, so they are equal.
	PageStart int `json:"page_start" bson:"page_start"`
	PageEnd   int `json:"page_end" bson:"page_end"`

	// Clause is an optional section label ("Section 4.2", "Clause 12")
	// detected in the chunk text. Empty when no label was found.
	Clause string `json:"clause,omitempty" bson:"clause,omitempty"`
}

// Chunk is the retrieval unit: a slice of document text with a stable
// identity, its embedding, and full provenance.
type Chunk struct {
	// ID is deterministic for a given content location, see ChunkID.
	ID string `json:"id" bson:"_id"`

	// Collection is the namespace the chunk belongs to.
	Collection string `json:"collection" bson:"collection"`

	Kind ChunkKind `json:"kind" bson:"kind"`
	Text string    `json:"text" bson:"text"`

	// Embedding is nil until the chunk has been embedded.
	Embedding []float32 `json:"-" bson:"-"`

	Provenance Provenance `json:"provenance" bson:"provenance"`
}

// ChunkID derives the stable identifier of a chunk from its content location:
// the owning document, the page range it was cut from, and its sequence number
// within that page range. Re-ingesting identical content therefore reproduces
// the same IDs, and an upsert overwrites instead of duplicating.
func ChunkID(document string, pageStart, pageEnd, seq int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d|%d", document, pageStart, pageEnd, seq)))
	return hex.EncodeToString(sum[:16])
}

// ScoredChunk pairs a retrieved chunk with its similarity score and the
// collection it was found in.
type ScoredChunk struct {
	Chunk      *Chunk
	Score      float32
	Collection string
}

// RetrievalResult is the merged, globally ranked output of a multi-collection
// retrieval. Matches are ordered by descending score; ties are broken by
// ascending (document, page, chunk ID).
type RetrievalResult struct {
	Matches []*ScoredChunk
}

// Empty reports the "no evidence found" condition. It is a recoverable state
// the answer composer handles explicitly, not an error.
func (r *RetrievalResult) Empty() bool {
	return r == nil || len(r.Matches) == 0
}

// Citation points a reader back to the evidence a statement was grounded on.
type Citation struct {
	Document string `json:"document"`
	Page     int    `json:"page"`
	Clause   string `json:"clause,omitempty"`
	Excerpt  string `json:"excerpt"`
}

// Answer is the composed response to a question, with citations mapped 1:1 to
// the ranked chunks the composer was given.
type Answer struct {
	Text      string     `json:"answer"`
	Citations []Citation `json:"citations"`

	// Degraded marks answers produced without the language model, either
	// because no evidence was found or because the model was unavailable.
	Degraded bool `json:"degraded,omitempty"`
}

// IngestionEvent describes a change to the vector index, published for
// downstream consumers (audit, cache invalidation).
type IngestionEvent struct {
	Type       string `json:"type"` // "document_ingested" | "collection_deleted"
	Collection string `json:"collection"`
	Document   string `json:"document,omitempty"`
	Pages      int    `json:"pages,omitempty"`
	Chunks     int    `json:"chunks,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

const (
	EventDocumentIngested  = "document_ingested"
	EventCollectionDeleted = "collection_deleted"
)
