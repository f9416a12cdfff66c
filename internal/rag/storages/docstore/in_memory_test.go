package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/rag/schema"
)

func chunk(id, text string) *schema.Chunk {
	return &schema.Chunk{ID: id, Text: text, Kind: schema.ChunkKindText}
}

func TestInMemoryDocStoreRoundTrip(t *testing.T) {
	s := NewInMemoryDocStore()
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "alpha", map[string]*schema.Chunk{
		"c1": chunk("c1", "first"),
		"c2": chunk("c2", "second"),
	}))

	got, err := s.Get(ctx, "alpha", []string{"c1", "c2", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got["c1"].Text)
	assert.Equal(t, "second", got["c2"].Text)
	assert.NotContains(t, got, "missing")
}

func TestInMemoryDocStoreCollectionsAreIsolated(t *testing.T) {
	s := NewInMemoryDocStore()
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "alpha", map[string]*schema.Chunk{"c1": chunk("c1", "in alpha")}))
	require.NoError(t, s.Add(ctx, "beta", map[string]*schema.Chunk{"c1": chunk("c1", "in beta")}))

	got, err := s.Get(ctx, "alpha", []string{"c1"})
	require.NoError(t, err)
	assert.Equal(t, "in alpha", got["c1"].Text)

	got, err = s.Get(ctx, "beta", []string{"c1"})
	require.NoError(t, err)
	assert.Equal(t, "in beta", got["c1"].Text)
}

func TestInMemoryDocStoreOverwrite(t *testing.T) {
	s := NewInMemoryDocStore()
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "alpha", map[string]*schema.Chunk{"c1": chunk("c1", "old")}))
	require.NoError(t, s.Add(ctx, "alpha", map[string]*schema.Chunk{"c1": chunk("c1", "new")}))

	assert.Equal(t, 1, s.Len())
	got, err := s.Get(ctx, "alpha", []string{"c1"})
	require.NoError(t, err)
	assert.Equal(t, "new", got["c1"].Text)
}

func TestInMemoryDocStoreDeleteCollection(t *testing.T) {
	s := NewInMemoryDocStore()
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "alpha", map[string]*schema.Chunk{"c1": chunk("c1", "a")}))
	require.NoError(t, s.Add(ctx, "beta", map[string]*schema.Chunk{"c2": chunk("c2", "b")}))

	require.NoError(t, s.DeleteCollection(ctx, "alpha"))
	assert.Equal(t, 1, s.Len())

	got, err := s.Get(ctx, "alpha", []string{"c1"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Get(ctx, "beta", []string{"c2"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
