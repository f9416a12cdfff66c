package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"docqa/internal/database/minio"
	"docqa/internal/models"
	"docqa/internal/rag/dal"
	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/pipeline"
	"docqa/internal/rag/schema"
	"docqa/pkg/logger"
)

// ErrInvalidCollectionName is returned for collection names the vector
// database cannot represent.
var ErrInvalidCollectionName = errors.New("invalid collection name")

// Collection names follow the vector database's identifier rules.
var collectionNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,254}$`)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// Service implements the ingestion surface: uploading documents, partial
// re-ingestion, and collection deletion.
type Service struct {
	log          *logger.Logger
	indexer      *pipeline.IndexingPipeline
	vectorStore  interfaces.CollectionStore
	docStore     interfaces.DocStore
	objects      *minio.ObjectStore
	registry     *dal.DocumentDAL
	events       interfaces.EventPublisher // nil disables event publishing
	modelVersion string
	checks       map[string]HealthCheck
}

// NewService creates the ingestion service.
func NewService(
	log *logger.Logger,
	indexer *pipeline.IndexingPipeline,
	vectorStore interfaces.CollectionStore,
	docStore interfaces.DocStore,
	objects *minio.ObjectStore,
	registry *dal.DocumentDAL,
	events interfaces.EventPublisher,
	modelVersion string,
	checks map[string]HealthCheck,
) *Service {
	return &Service{
		log:          log,
		indexer:      indexer,
		vectorStore:  vectorStore,
		docStore:     docStore,
		objects:      objects,
		registry:     registry,
		events:       events,
		modelVersion: modelVersion,
		checks:       checks,
	}
}

// UploadDocument stores the raw document, runs the full indexing pipeline and
// registers the document. The collection is created implicitly on first
// upload.
func (s *Service) UploadDocument(ctx context.Context, collection, filename string, raw []byte) (*pipeline.IndexStats, error) {
	if !collectionNamePattern.MatchString(collection) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCollectionName, collection)
	}
	if mt := mimetype.Detect(raw); !mt.Is("application/pdf") {
		return nil, fmt.Errorf("%w: detected %s, only PDF is supported", schema.ErrUnsupportedFormat, mt.String())
	}

	if err := s.objects.Put(ctx, collection, filename, raw, "application/pdf"); err != nil {
		return nil, err
	}

	stats, err := s.indexer.Run(ctx, collection, filename, raw, nil)
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(raw)
	rec := &models.DocumentRecord{
		Collection:   collection,
		Filename:     filename,
		Pages:        stats.PagesProcessed,
		Chunks:       stats.ChunksCreated,
		Digest:       hex.EncodeToString(digest[:]),
		ModelVersion: s.modelVersion,
	}
	if err := s.registry.Upsert(ctx, rec); err != nil {
		// The index is already consistent; a registry failure only degrades
		// listings, so it is logged rather than failing the upload.
		s.log.Error(fmt.Sprintf("Failed to register document '%s': %v", filename, err))
	}

	s.publish(ctx, &schema.IngestionEvent{
		Type:       schema.EventDocumentIngested,
		Collection: collection,
		Document:   filename,
		Pages:      stats.PagesProcessed,
		Chunks:     stats.ChunksCreated,
		Timestamp:  time.Now().Unix(),
	})

	return stats, nil
}

// EmbedPages re-ingests a subset of a stored document's pages. Chunk IDs are
// deterministic per page, so the re-embedded pages overwrite their previous
// chunks.
func (s *Service) EmbedPages(ctx context.Context, collection, filename string, pages []int) (*pipeline.IndexStats, error) {
	if !collectionNamePattern.MatchString(collection) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCollectionName, collection)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("at least one page number is required")
	}

	raw, err := s.objects.Fetch(ctx, collection, filename)
	if err != nil {
		return nil, err
	}

	return s.indexer.Run(ctx, collection, filename, raw, pages)
}

// DeleteCollection removes the collection from every store. Deleting a
// missing collection reports deleted=false instead of failing.
func (s *Service) DeleteCollection(ctx context.Context, collection string) (bool, error) {
	existed, err := s.vectorStore.DropCollection(ctx, collection)
	if err != nil {
		return false, err
	}

	if err := s.docStore.DeleteCollection(ctx, collection); err != nil {
		return existed, err
	}
	if err := s.registry.DeleteByCollection(ctx, collection); err != nil {
		return existed, err
	}
	if err := s.objects.RemoveCollection(ctx, collection); err != nil {
		return existed, err
	}

	if existed {
		s.publish(ctx, &schema.IngestionEvent{
			Type:       schema.EventCollectionDeleted,
			Collection: collection,
			Timestamp:  time.Now().Unix(),
		})
	}
	return existed, nil
}

// ListCollections returns the names of all collections in the vector index.
func (s *Service) ListCollections(ctx context.Context) ([]string, error) {
	return s.vectorStore.ListCollections(ctx)
}

// Health reports "ok" when every dependency responds and "degraded"
// otherwise.
func (s *Service) Health(ctx context.Context) string {
	status := "ok"
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.log.Warn(fmt.Sprintf("Health check '%s' failed: %v", name, err))
			status = "degraded"
		}
	}
	return status
}

// publish sends an event when publishing is enabled. Failures are logged,
// never propagated: the index is already consistent.
func (s *Service) publish(ctx context.Context, event *schema.IngestionEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn(fmt.Sprintf("Failed to publish ingestion event: %v", err))
	}
}
