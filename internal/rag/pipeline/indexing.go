package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"
	"docqa/pkg/logger"
)

// IndexStats summarizes one ingestion run.
type IndexStats struct {
	PagesProcessed int `json:"pagesProcessed"`
	ChunksCreated  int `json:"chunksCreated"`
}

// IndexingPipeline orchestrates the write path: extract pages, split them into
// chunks, embed the chunks, and store them. Chunk IDs are deterministic, so a
// re-run over identical content overwrites rather than duplicates.
type IndexingPipeline struct {
	extractor   interfaces.Extractor
	splitter    interfaces.Splitter
	embedder    interfaces.EmbeddingModel
	docStore    interfaces.DocStore
	vectorStore interfaces.CollectionStore
	log         *logger.Logger
}

// NewIndexingPipeline creates a new IndexingPipeline.
func NewIndexingPipeline(
	extractor interfaces.Extractor,
	splitter interfaces.Splitter,
	embedder interfaces.EmbeddingModel,
	docStore interfaces.DocStore,
	vectorStore interfaces.CollectionStore,
	log *logger.Logger,
) *IndexingPipeline {
	return &IndexingPipeline{
		extractor:   extractor,
		splitter:    splitter,
		embedder:    embedder,
		docStore:    docStore,
		vectorStore: vectorStore,
		log:         log,
	}
}

// Run ingests one document into a collection. pages restricts extraction to a
// subset of 1-based page numbers; nil means all pages. A failure anywhere
// aborts this document's ingestion without touching chunks of other documents.
func (p *IndexingPipeline) Run(ctx context.Context, collection, document string, raw []byte, pages []int) (*IndexStats, error) {
	p.log.Info(fmt.Sprintf("Starting ingestion of '%s' into collection '%s'", document, collection))

	extracted, err := p.extractor.Extract(ctx, raw, pages)
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to extract '%s': %v", document, err))
		return nil, err
	}

	chunks, err := p.splitter.Split(ctx, document, extracted)
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to split '%s': %v", document, err))
		return nil, err
	}

	stats := &IndexStats{PagesProcessed: len(extracted), ChunksCreated: len(chunks)}
	if len(chunks) == 0 {
		p.log.Warn(fmt.Sprintf("Document '%s' produced no chunks, nothing to index", document))
		return stats, nil
	}

	for _, chunk := range chunks {
		chunk.Collection = collection
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	embeddings, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to embed '%s': %v", document, err))
		return nil, err
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d chunks",
			schema.ErrEmbedding, len(embeddings), len(chunks))
	}
	for i, chunk := range chunks {
		chunk.Embedding = embeddings[i]
	}

	if err := p.vectorStore.EnsureCollection(ctx, collection, len(embeddings[0])); err != nil {
		p.log.Error(fmt.Sprintf("Failed to ensure collection '%s': %v", collection, err))
		return nil, err
	}

	// Vector and text stores are written concurrently; either failure aborts
	// the ingestion.
	eg, gCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		chunkMap := make(map[string]*schema.Chunk, len(chunks))
		for _, chunk := range chunks {
			chunkMap[chunk.ID] = chunk
		}
		if err := p.docStore.Add(gCtx, collection, chunkMap); err != nil {
			p.log.Error(fmt.Sprintf("Failed to add chunks to doc store: %v", err))
			return err
		}
		return nil
	})

	eg.Go(func() error {
		if err := p.vectorStore.Upsert(gCtx, collection, chunks); err != nil {
			p.log.Error(fmt.Sprintf("Failed to upsert chunks to vector store: %v", err))
			return err
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	p.log.Info(fmt.Sprintf("Finished ingestion of '%s': %d pages, %d chunks",
		document, stats.PagesProcessed, stats.ChunksCreated))
	return stats, nil
}
