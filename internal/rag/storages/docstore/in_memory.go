package docstore

import (
	"context"
	"fmt"
	"sync"

	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"
)

// InMemoryDocStore is a thread-safe, in-memory DocStore. It backs tests and
// single-process deployments; production uses the Mongo store.
type InMemoryDocStore struct {
	mu   sync.RWMutex
	docs map[string]*schema.Chunk
}

// NewInMemoryDocStore creates an empty store.
func NewInMemoryDocStore() *InMemoryDocStore {
	return &InMemoryDocStore{
		docs: make(map[string]*schema.Chunk),
	}
}

// key namespaces chunk IDs per collection.
func (s *InMemoryDocStore) key(collection, chunkID string) string {
	return fmt.Sprintf("%s:%s", collection, chunkID)
}

// Add stores chunks by ID; an existing ID is overwritten.
func (s *InMemoryDocStore) Add(ctx context.Context, collection string, chunks map[string]*schema.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, chunk := range chunks {
		s.docs[s.key(collection, id)] = chunk
	}
	return nil
}

// Get returns the stored chunks for the given IDs. Missing IDs are simply
// absent from the result.
func (s *InMemoryDocStore) Get(ctx context.Context, collection string, ids []string) (map[string]*schema.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*schema.Chunk)
	for _, id := range ids {
		if chunk, ok := s.docs[s.key(collection, id)]; ok {
			result[id] = chunk
		}
	}
	return result, nil
}

// DeleteCollection removes every chunk in the collection.
func (s *InMemoryDocStore) DeleteCollection(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := collection + ":"
	for key := range s.docs {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.docs, key)
		}
	}
	return nil
}

// Len reports the number of stored chunks across all collections.
func (s *InMemoryDocStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

var _ interfaces.DocStore = (*InMemoryDocStore)(nil)
