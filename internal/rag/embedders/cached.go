package embedders

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/go-redis/redis/v8"

	"docqa/internal/rag/interfaces"
	"docqa/pkg/logger"
)

// CachedEmbedder wraps an EmbeddingModel with a Redis cache keyed by
// (model version, text digest). Identical texts are only embedded once, which
// matters for overlap regions and repeated re-ingestion. The cache is
// best-effort: any Redis failure is logged and the call falls through to the
// underlying model.
type CachedEmbedder struct {
	inner interfaces.EmbeddingModel
	rdb   *redis.Client
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedEmbedder decorates inner with a Redis cache. A ttl of zero keeps
// entries forever.
func NewCachedEmbedder(inner interfaces.EmbeddingModel, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("emb:%s:%s", c.inner.Version(), hex.EncodeToString(sum[:]))
}

// Embed serves cache hits from Redis and delegates the misses, preserving
// input order in the combined result.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = c.cacheKey(text)
	}

	var missIdx []int
	cached, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.log.Warn(fmt.Sprintf("Embedding cache lookup failed, falling through: %v", err))
		return c.inner.Embed(ctx, texts)
	}
	for i, raw := range cached {
		s, ok := raw.(string)
		if !ok {
			missIdx = append(missIdx, i)
			continue
		}
		vec, err := decodeVector([]byte(s))
		if err != nil {
			missIdx = append(missIdx, i)
			continue
		}
		out[i] = vec
	}

	if len(missIdx) == 0 {
		return out, nil
	}

	missTexts := make([]string, len(missIdx))
	for j, i := range missIdx {
		missTexts[j] = texts[i]
	}
	vectors, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	for j, i := range missIdx {
		out[i] = vectors[j]
		if err := c.rdb.Set(ctx, keys[i], encodeVector(vectors[j]), c.ttl).Err(); err != nil {
			c.log.Warn(fmt.Sprintf("Failed to store embedding in cache: %v", err))
		}
	}

	return out, nil
}

// Version passes through the underlying model's identity.
func (c *CachedEmbedder) Version() string {
	return c.inner.Version()
}

// encodeVector packs a vector as little-endian float32 bits.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) ([]float32, error) {
	if len(buf) == 0 || len(buf)%4 != 0 {
		return nil, fmt.Errorf("malformed cached vector of %d bytes", len(buf))
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec, nil
}

var _ interfaces.EmbeddingModel = (*CachedEmbedder)(nil)
