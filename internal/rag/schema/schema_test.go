package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkIDIsStableAndLocationSensitive(t *testing.T) {
	id := ChunkID("contract.pdf", 4, 4, 2)
	assert.Equal(t, id, ChunkID("contract.pdf", 4, 4, 2))
	assert.Len(t, id, 32)

	assert.NotEqual(t, id, ChunkID("other.pdf", 4, 4, 2))
	assert.NotEqual(t, id, ChunkID("contract.pdf", 5, 5, 2))
	assert.NotEqual(t, id, ChunkID("contract.pdf", 4, 4, 3))
}

func TestRetrievalResultEmpty(t *testing.T) {
	var nilResult *RetrievalResult
	assert.True(t, nilResult.Empty())
	assert.True(t, (&RetrievalResult{}).Empty())
	assert.False(t, (&RetrievalResult{Matches: []*ScoredChunk{{}}}).Empty())
}

func TestPageEmpty(t *testing.T) {
	assert.True(t, (&Page{Number: 1}).Empty())
	assert.False(t, (&Page{Number: 1, Text: "body"}).Empty())
	assert.False(t, (&Page{Number: 1, Tables: []string{"a | b | c"}}).Empty())
}
