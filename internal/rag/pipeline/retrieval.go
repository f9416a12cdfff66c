package pipeline

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"
	"docqa/pkg/logger"
)

// RetrievalPipeline answers the read path: embed the query once, fan out one
// vector query per selected collection, then merge everything into a single
// global ranking.
type RetrievalPipeline struct {
	embedder    interfaces.EmbeddingModel
	vectorStore interfaces.CollectionStore
	docStore    interfaces.DocStore
	minScore    float32
	maxParallel int
	log         *logger.Logger
}

// NewRetrievalPipeline creates a new RetrievalPipeline. minScore drops
// matches weaker than the threshold; maxParallel bounds the per-collection
// query fan-out.
func NewRetrievalPipeline(
	embedder interfaces.EmbeddingModel,
	vectorStore interfaces.CollectionStore,
	docStore interfaces.DocStore,
	minScore float32,
	maxParallel int,
	log *logger.Logger,
) *RetrievalPipeline {
	if maxParallel <= 0 {
		maxParallel = 4
	}
	return &RetrievalPipeline{
		embedder:    embedder,
		vectorStore: vectorStore,
		docStore:    docStore,
		minScore:    minScore,
		maxParallel: maxParallel,
		log:         log,
	}
}

// Run retrieves the globally best topK chunks for the query across the given
// collections. An empty collection list is a caller error; zero matches
// across all collections is a valid, empty result the composer handles.
func (p *RetrievalPipeline) Run(ctx context.Context, query string, collections []string, topK int) (*schema.RetrievalResult, error) {
	if len(collections) == 0 {
		return nil, schema.ErrNoCollectionsSelected
	}
	if topK <= 0 {
		topK = 8
	}

	queryEmbeddings, err := p.embedder.Embed(ctx, []string{query})
	if err != nil || len(queryEmbeddings) == 0 {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	queryVector := queryEmbeddings[0]

	// One bounded task per collection, joined before merging. Relative
	// completion order cannot affect the ranking: results land in fixed
	// slots and the merge sorts globally. A failure (or caller cancel)
	// cancels the remaining in-flight queries and no partial result is
	// returned.
	perCollection := make([][]*schema.ScoredChunk, len(collections))
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.maxParallel)
	for i, collection := range collections {
		eg.Go(func() error {
			matches, err := p.vectorStore.Query(gCtx, collection, queryVector, topK)
			if err != nil {
				return err
			}
			perCollection[i] = matches
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		p.log.Error(fmt.Sprintf("Retrieval fan-out failed: %v", err))
		return nil, err
	}

	var merged []*schema.ScoredChunk
	for _, matches := range perCollection {
		for _, m := range matches {
			if m.Score >= p.minScore {
				merged = append(merged, m)
			}
		}
	}

	sortMatches(merged)
	if len(merged) > topK {
		merged = merged[:topK]
	}

	if len(merged) == 0 {
		p.log.Info("No evidence found in any selected collection")
		return &schema.RetrievalResult{}, nil
	}

	if err := p.enrich(ctx, merged); err != nil {
		return nil, err
	}

	p.log.Info(fmt.Sprintf("Retrieved %d chunks across %d collections", len(merged), len(collections)))
	return &schema.RetrievalResult{Matches: merged}, nil
}

// enrich fills in chunk text from the doc store, grouping lookups per
// collection.
func (p *RetrievalPipeline) enrich(ctx context.Context, matches []*schema.ScoredChunk) error {
	byCollection := make(map[string][]string)
	for _, m := range matches {
		byCollection[m.Collection] = append(byCollection[m.Collection], m.Chunk.ID)
	}

	full := make(map[string]map[string]*schema.Chunk, len(byCollection))
	for collection, ids := range byCollection {
		chunks, err := p.docStore.Get(ctx, collection, ids)
		if err != nil {
			return fmt.Errorf("failed to enrich results from doc store: %w", err)
		}
		full[collection] = chunks
	}

	for _, m := range matches {
		if chunk, ok := full[m.Collection][m.Chunk.ID]; ok {
			m.Chunk.Text = chunk.Text
			m.Chunk.Kind = chunk.Kind
			m.Chunk.Provenance = chunk.Provenance
		} else {
			p.log.Warn(fmt.Sprintf("Chunk %s in collection %s has no doc store entry", m.Chunk.ID, m.Collection))
		}
	}
	return nil
}

// sortMatches orders by descending score; equal scores fall back to ascending
// (document, page, chunk ID) so the ranking is deterministic.
func sortMatches(matches []*schema.ScoredChunk) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Chunk.Provenance.Document != b.Chunk.Provenance.Document {
			return a.Chunk.Provenance.Document < b.Chunk.Provenance.Document
		}
		if a.Chunk.Provenance.PageStart != b.Chunk.Provenance.PageStart {
			return a.Chunk.Provenance.PageStart < b.Chunk.Provenance.PageStart
		}
		return a.Chunk.ID < b.Chunk.ID
	})
}
