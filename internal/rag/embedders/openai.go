package embedders

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"
)

// OpenAIEmbedder generates embeddings through any OpenAI-compatible API.
// Setting baseURL points it at alternative providers (e.g. Groq).
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder creates a client for the given model.
func NewOpenAIEmbedder(apiKey, model, baseURL string) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai embedder requires an API key")
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIEmbedder{client: openai.NewClientWithConfig(config), model: model}, nil
}

// Embed returns one vector per input text, in input order. The response is
// reassembled by item index, and any missing item fails the whole batch.
func (m *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := m.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(m.model),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %v", schema.ErrEmbedding, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: openai returned %d embeddings for %d texts",
			schema.ErrEmbedding, len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("%w: openai returned out-of-range item index %d", schema.ErrEmbedding, d.Index)
		}
		out[d.Index] = d.Embedding
	}
	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("%w: openai response is missing item %d", schema.ErrEmbedding, i)
		}
	}
	return out, nil
}

// Version identifies the embedding model for collection stamping.
func (m *OpenAIEmbedder) Version() string {
	return "openai/" + m.model
}

var _ interfaces.EmbeddingModel = (*OpenAIEmbedder)(nil)
