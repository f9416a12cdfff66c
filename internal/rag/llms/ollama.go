package llms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"

	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"
)

// OllamaLLM generates answers with a locally hosted Ollama model.
type OllamaLLM struct {
	client *ollama.Client
	model  string
}

// NewOllamaLLM creates a client for the given model. baseURL defaults to the
// local Ollama endpoint when empty.
func NewOllamaLLM(model, baseURL string) (*OllamaLLM, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	hc := &http.Client{Timeout: 300 * time.Second}
	return &OllamaLLM{client: ollama.NewClient(parsedURL, hc), model: model}, nil
}

// Generate runs a non-streaming completion and returns the full response text.
func (o *OllamaLLM) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	var sb strings.Builder

	err := o.client.Generate(ctx, &ollama.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: &stream,
	}, func(resp ollama.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: ollama: %v", schema.ErrLanguageModel, err)
	}

	return sb.String(), nil
}

var _ interfaces.LLM = (*OllamaLLM)(nil)
