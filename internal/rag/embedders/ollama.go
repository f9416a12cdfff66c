package embedders

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	ollama "github.com/ollama/ollama/api"

	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"
)

// OllamaEmbedder generates embeddings with a locally hosted Ollama model.
type OllamaEmbedder struct {
	client *ollama.Client
	model  string
}

// NewOllamaEmbedder creates a client for the given model. baseURL defaults to
// the local Ollama endpoint when empty.
func NewOllamaEmbedder(model, baseURL string) (*OllamaEmbedder, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	hc := &http.Client{Timeout: 120 * time.Second}
	return &OllamaEmbedder{client: ollama.NewClient(parsedURL, hc), model: model}, nil
}

// Embed returns one vector per input text, in input order. Any failure fails
// the whole batch.
func (m *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := m.client.Embed(ctx, &ollama.EmbedRequest{
		Model: m.model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: %v", schema.ErrEmbedding, err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: ollama returned %d embeddings for %d texts",
			schema.ErrEmbedding, len(resp.Embeddings), len(texts))
	}

	return resp.Embeddings, nil
}

// Version identifies the embedding model for collection stamping.
func (m *OllamaEmbedder) Version() string {
	return "ollama/" + m.model
}

var _ interfaces.EmbeddingModel = (*OllamaEmbedder)(nil)
