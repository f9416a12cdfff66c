package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	milvusdb "docqa/internal/database/milvus"
	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"
	"docqa/pkg/logger"
)

// Field names of the per-collection Milvus schema.
const (
	FieldID        = "id"
	FieldEmbedding = "embedding"
	FieldDocument  = "document"
	FieldPageStart = "page_start"
	FieldPageEnd   = "page_end"
	FieldClause    = "clause"
	FieldKind      = "kind"
)

const modelStampPrefix = "model="

// MilvusStore implements CollectionStore on Milvus. Each docqa collection is
// one Milvus collection; the embedding model version is stamped into the
// collection description so a model change is detected instead of silently
// mis-ranking queries. Only vectors and provenance live here; chunk text is
// held by the DocStore.
type MilvusStore struct {
	log          *logger.Logger
	client       client.Client
	modelVersion string
}

// NewMilvusStore creates a store bound to one embedding model version.
func NewMilvusStore(milvusClient *milvusdb.Client, modelVersion string, log *logger.Logger) (*MilvusStore, error) {
	if milvusClient == nil || milvusClient.Client == nil {
		return nil, fmt.Errorf("milvus client is not initialized")
	}
	if modelVersion == "" {
		return nil, fmt.Errorf("embedding model version must not be empty")
	}
	return &MilvusStore{
		log:          log,
		client:       milvusClient.Client,
		modelVersion: modelVersion,
	}, nil
}

// EnsureCollection creates the collection with the store's model stamp if it
// does not exist, and verifies the stamp if it does.
func (s *MilvusStore) EnsureCollection(ctx context.Context, collection string, dim int) error {
	exists, err := s.client.HasCollection(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", collection, err)
	}

	if exists {
		return s.verifyModelStamp(ctx, collection)
	}

	collSchema := entity.NewSchema().
		WithName(collection).
		WithDescription(modelStampPrefix + s.modelVersion).
		WithField(entity.NewField().WithName(FieldID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64).WithIsPrimaryKey(true)).
		WithField(entity.NewField().WithName(FieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(dim))).
		WithField(entity.NewField().WithName(FieldDocument).WithDataType(entity.FieldTypeVarChar).WithMaxLength(512)).
		WithField(entity.NewField().WithName(FieldPageStart).WithDataType(entity.FieldTypeInt64)).
		WithField(entity.NewField().WithName(FieldPageEnd).WithDataType(entity.FieldTypeInt64)).
		WithField(entity.NewField().WithName(FieldClause).WithDataType(entity.FieldTypeVarChar).WithMaxLength(255)).
		WithField(entity.NewField().WithName(FieldKind).WithDataType(entity.FieldTypeVarChar).WithMaxLength(16))

	if err := s.client.CreateCollection(ctx, collSchema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", collection, err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.COSINE, 128)
	if err != nil {
		return fmt.Errorf("failed to build index config: %w", err)
	}
	if err := s.client.CreateIndex(ctx, collection, FieldEmbedding, idx, false); err != nil {
		return fmt.Errorf("failed to create index on %s: %w", collection, err)
	}

	if err := s.client.LoadCollection(ctx, collection, false); err != nil {
		return fmt.Errorf("failed to load collection %s: %w", collection, err)
	}

	s.log.Info(fmt.Sprintf("Created collection '%s' for model %s (dim=%d)", collection, s.modelVersion, dim))
	return nil
}

// Upsert writes chunks by ID. The last write for a given ID wins, which makes
// re-ingestion of identical content idempotent.
func (s *MilvusStore) Upsert(ctx context.Context, collection string, chunks []*schema.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))
	documents := make([]string, len(chunks))
	pageStarts := make([]int64, len(chunks))
	pageEnds := make([]int64, len(chunks))
	clauses := make([]string, len(chunks))
	kinds := make([]string, len(chunks))

	dim := 0
	for i, chunk := range chunks {
		if chunk.Embedding == nil {
			return fmt.Errorf("chunk %s has no embedding", chunk.ID)
		}
		ids[i] = chunk.ID
		embeddings[i] = chunk.Embedding
		documents[i] = chunk.Provenance.Document
		pageStarts[i] = int64(chunk.Provenance.PageStart)
		pageEnds[i] = int64(chunk.Provenance.PageEnd)
		clauses[i] = chunk.Provenance.Clause
		kinds[i] = string(chunk.Kind)
		if len(chunk.Embedding) > dim {
			dim = len(chunk.Embedding)
		}
	}

	_, err := s.client.Upsert(ctx, collection, "", /* default partition */
		entity.NewColumnVarChar(FieldID, ids),
		entity.NewColumnFloatVector(FieldEmbedding, dim, embeddings),
		entity.NewColumnVarChar(FieldDocument, documents),
		entity.NewColumnInt64(FieldPageStart, pageStarts),
		entity.NewColumnInt64(FieldPageEnd, pageEnds),
		entity.NewColumnVarChar(FieldClause, clauses),
		entity.NewColumnVarChar(FieldKind, kinds),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", collection, err)
	}

	s.log.Info(fmt.Sprintf("Upserted %d chunks into collection '%s'", len(chunks), collection))
	return nil
}

// Query returns up to topK nearest neighbours by cosine similarity, with
// provenance but without chunk text. A missing collection is a caller error,
// never an implicit create.
func (s *MilvusStore) Query(ctx context.Context, collection string, embedding []float32, topK int) ([]*schema.ScoredChunk, error) {
	exists, err := s.client.HasCollection(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection %s: %w", collection, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", schema.ErrCollectionNotFound, collection)
	}
	if err := s.verifyModelStamp(ctx, collection); err != nil {
		return nil, err
	}

	if err := s.client.LoadCollection(ctx, collection, false); err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", collection, err)
	}

	sp, _ := entity.NewIndexIvfFlatSearchParam(10)
	outputFields := []string{FieldID, FieldDocument, FieldPageStart, FieldPageEnd, FieldClause, FieldKind}

	searchResults, err := s.client.Search(
		ctx, collection, []string{}, "", outputFields,
		[]entity.Vector{entity.FloatVector(embedding)},
		FieldEmbedding, entity.COSINE, topK, sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search collection %s: %w", collection, err)
	}

	var results []*schema.ScoredChunk
	for _, res := range searchResults {
		idData := varCharData(res.Fields, FieldID)
		docData := varCharData(res.Fields, FieldDocument)
		clauseData := varCharData(res.Fields, FieldClause)
		kindData := varCharData(res.Fields, FieldKind)
		pageStartData := int64Data(res.Fields, FieldPageStart)
		pageEndData := int64Data(res.Fields, FieldPageEnd)

		if idData == nil {
			s.log.Warn("Search result is missing the id field, skipping")
			continue
		}

		for i := 0; i < res.ResultCount; i++ {
			chunk := &schema.Chunk{
				ID:         idData[i],
				Collection: collection,
			}
			if docData != nil {
				chunk.Provenance.Document = docData[i]
			}
			if pageStartData != nil {
				chunk.Provenance.PageStart = int(pageStartData[i])
			}
			if pageEndData != nil {
				chunk.Provenance.PageEnd = int(pageEndData[i])
			}
			if clauseData != nil {
				chunk.Provenance.Clause = clauseData[i]
			}
			if kindData != nil {
				chunk.Kind = schema.ChunkKind(kindData[i])
			}
			results = append(results, &schema.ScoredChunk{
				Chunk:      chunk,
				Score:      res.Scores[i],
				Collection: collection,
			})
		}
	}

	return results, nil
}

// DropCollection removes the whole namespace. Dropping a missing collection
// reports existed=false instead of failing.
func (s *MilvusStore) DropCollection(ctx context.Context, collection string) (bool, error) {
	exists, err := s.client.HasCollection(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("failed to check collection %s: %w", collection, err)
	}
	if !exists {
		return false, nil
	}
	if err := s.client.DropCollection(ctx, collection); err != nil {
		return false, fmt.Errorf("failed to drop collection %s: %w", collection, err)
	}
	s.log.Info(fmt.Sprintf("Dropped collection '%s'", collection))
	return true, nil
}

// ListCollections returns the names of all collections.
func (s *MilvusStore) ListCollections(ctx context.Context) ([]string, error) {
	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	names := make([]string, 0, len(collections))
	for _, c := range collections {
		names = append(names, c.Name)
	}
	return names, nil
}

// verifyModelStamp rejects collections indexed with a different embedding
// model version.
func (s *MilvusStore) verifyModelStamp(ctx context.Context, collection string) error {
	coll, err := s.client.DescribeCollection(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to describe collection %s: %w", collection, err)
	}
	stamped := strings.TrimPrefix(coll.Schema.Description, modelStampPrefix)
	if stamped != s.modelVersion {
		return fmt.Errorf("%w: collection %s was indexed with %q, configured model is %q",
			schema.ErrModelVersionMismatch, collection, stamped, s.modelVersion)
	}
	return nil
}

func varCharData(fields []entity.Column, name string) []string {
	for _, field := range fields {
		if field.Name() == name {
			if col, ok := field.(*entity.ColumnVarChar); ok {
				return col.Data()
			}
		}
	}
	return nil
}

func int64Data(fields []entity.Column, name string) []int64 {
	for _, field := range fields {
		if field.Name() == name {
			if col, ok := field.(*entity.ColumnInt64); ok {
				return col.Data()
			}
		}
	}
	return nil
}

var _ interfaces.CollectionStore = (*MilvusStore)(nil)
