package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
ingestion:
  address: ":9090"
databases:
  milvus:
    address: "milvus:19530"
  redis:
    enabled: true
    address: "redis:6379"
    ttl: 3600
embedding:
  provider: "openai"
  model: "text-embedding-3-small"
  apiKey: "file-key"
retrieval:
  topK: 5
  minScore: 0.25
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Ingestion.Address)
	assert.Equal(t, "milvus:19530", cfg.Databases.Milvus.Address)
	assert.True(t, cfg.Databases.Redis.Enabled)
	assert.Equal(t, 3600, cfg.Databases.Redis.TTL)
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, "file-key", cfg.Embedding.APIKey)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, float32(0.25), cfg.Retrieval.MinScore)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
databases:
  milvus:
    address: "localhost:19530"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Ingestion.Address)
	assert.Equal(t, ":8081", cfg.Query.Address)
	assert.Equal(t, 1200, cfg.Chunking.ChunkSize)
	assert.Equal(t, 200, cfg.Chunking.ChunkOverlap)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	assert.Equal(t, 4, cfg.Retrieval.MaxParallel)
	assert.Equal(t, "docqa_ingestion_events", cfg.Events.Topic)
}

func TestLoadConfigEnvOverridesSecrets(t *testing.T) {
	path := writeConfig(t, `
embedding:
  apiKey: "file-embedding-key"
llm:
  apiKey: "file-llm-key"
`)

	t.Setenv("EMBEDDING_API_KEY", "env-embedding-key")
	t.Setenv("LLM_API_KEY", "env-llm-key")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env-embedding-key", cfg.Embedding.APIKey)
	assert.Equal(t, "env-llm-key", cfg.LLM.APIKey)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := writeConfig(t, "ingestion: [not a mapping")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
