package pipeline

import (
	"context"
	"fmt"
	"sync"

	"docqa/internal/rag/schema"
	"docqa/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New("test", "")
}

// fakeEmbedder returns a fixed-dimension vector derived from each text's
// length, so identical inputs always embed identically.
type fakeEmbedder struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls = append(f.calls, texts)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1, 0}
	}
	return out, nil
}

func (f *fakeEmbedder) Version() string { return "fake/embedder-v1" }

// fakeVectorStore serves canned per-collection query results and records
// writes keyed by chunk ID.
type fakeVectorStore struct {
	mu       sync.Mutex
	results  map[string][]*schema.ScoredChunk
	queryErr map[string]error
	ensured  map[string]int
	upserted map[string]map[string]*schema.Chunk
	dropped  []string
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{
		results:  make(map[string][]*schema.ScoredChunk),
		queryErr: make(map[string]error),
		ensured:  make(map[string]int),
		upserted: make(map[string]map[string]*schema.Chunk),
	}
}

func (f *fakeVectorStore) EnsureCollection(_ context.Context, collection string, dim int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured[collection] = dim
	return nil
}

func (f *fakeVectorStore) Upsert(_ context.Context, collection string, chunks []*schema.Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upserted[collection] == nil {
		f.upserted[collection] = make(map[string]*schema.Chunk)
	}
	for _, c := range chunks {
		f.upserted[collection][c.ID] = c
	}
	return nil
}

func (f *fakeVectorStore) Query(_ context.Context, collection string, _ []float32, topK int) ([]*schema.ScoredChunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.queryErr[collection]; err != nil {
		return nil, err
	}
	matches, ok := f.results[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", schema.ErrCollectionNotFound, collection)
	}
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (f *fakeVectorStore) DropCollection(_ context.Context, collection string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropped = append(f.dropped, collection)
	_, ok := f.results[collection]
	delete(f.results, collection)
	return ok, nil
}

func (f *fakeVectorStore) ListCollections(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.results))
	for name := range f.results {
		out = append(out, name)
	}
	return out, nil
}

// fakeLLM replies with a fixed answer, optionally failing the first n calls.
type fakeLLM struct {
	mu       sync.Mutex
	reply    string
	failures int
	calls    int
	prompts  []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.failures > 0 {
		f.failures--
		return "", fmt.Errorf("%w: connection refused", schema.ErrLanguageModel)
	}
	return f.reply, nil
}

// fakeExtractor returns canned pages, filtered to the requested subset.
type fakeExtractor struct {
	pages []*schema.Page
	err   error
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte, pages []int) ([]*schema.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(pages) == 0 {
		return f.pages, nil
	}
	wanted := make(map[int]bool, len(pages))
	for _, p := range pages {
		wanted[p] = true
	}
	var out []*schema.Page
	for _, p := range f.pages {
		if wanted[p.Number] {
			out = append(out, p)
		}
	}
	return out, nil
}

// match builds a scored chunk with the ID derived from its location, the way
// the splitter would.
func match(collection, document string, page int, seq int, score float32) *schema.ScoredChunk {
	return &schema.ScoredChunk{
		Collection: collection,
		Score:      score,
		Chunk: &schema.Chunk{
			ID:         schema.ChunkID(document, page, page, seq),
			Collection: collection,
			Provenance: schema.Provenance{Document: document, PageStart: page, PageEnd: page},
		},
	}
}
