package service

import (
	"context"
	"fmt"

	"docqa/internal/database/minio"
	"docqa/internal/rag/dal"
	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/pipeline"
	"docqa/internal/rag/schema"
	"docqa/pkg/logger"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// Service implements the query surface: chat over selected collections and
// document listing/fetching.
type Service struct {
	log         *logger.Logger
	retriever   *pipeline.RetrievalPipeline
	composer    *pipeline.QAPipeline
	vectorStore interfaces.CollectionStore
	registry    *dal.DocumentDAL
	objects     *minio.ObjectStore
	topK        int
	checks      map[string]HealthCheck
}

// NewService creates the query service. topK is the default result budget
// when the caller does not send one.
func NewService(
	log *logger.Logger,
	retriever *pipeline.RetrievalPipeline,
	composer *pipeline.QAPipeline,
	vectorStore interfaces.CollectionStore,
	registry *dal.DocumentDAL,
	objects *minio.ObjectStore,
	topK int,
	checks map[string]HealthCheck,
) *Service {
	return &Service{
		log:         log,
		retriever:   retriever,
		composer:    composer,
		vectorStore: vectorStore,
		registry:    registry,
		objects:     objects,
		topK:        topK,
		checks:      checks,
	}
}

// Chat answers a question grounded on the selected collections.
func (s *Service) Chat(ctx context.Context, question string, collections []string, topK int) (*schema.Answer, error) {
	if topK <= 0 {
		topK = s.topK
	}

	result, err := s.retriever.Run(ctx, question, collections, topK)
	if err != nil {
		return nil, err
	}

	answer, err := s.composer.Run(ctx, question, result)
	if err != nil {
		return nil, err
	}

	s.log.Info(fmt.Sprintf("Answered question with %d citations", len(answer.Citations)))
	return answer, nil
}

// ListDocuments returns the filenames of every registered document.
func (s *Service) ListDocuments(ctx context.Context) ([]string, error) {
	records, err := s.registry.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	filenames := make([]string, 0, len(records))
	for _, rec := range records {
		filenames = append(filenames, rec.Filename)
	}
	return filenames, nil
}

// ListCollections returns the names of all collections in the vector index.
func (s *Service) ListCollections(ctx context.Context) ([]string, error) {
	return s.vectorStore.ListCollections(ctx)
}

// FetchDocument returns the original bytes of a stored document.
func (s *Service) FetchDocument(ctx context.Context, collection, filename string) ([]byte, error) {
	return s.objects.Fetch(ctx, collection, filename)
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
