package llms

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"
)

// OpenAILLM generates answers through any OpenAI-compatible chat completion
// API. Setting baseURL points it at alternative providers (e.g. Groq).
type OpenAILLM struct {
	client *openai.Client
	model  string
}

// NewOpenAILLM creates a client for the given model.
func NewOpenAILLM(apiKey, model, baseURL string) (*OpenAILLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai llm requires an API key")
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAILLM{client: openai.NewClientWithConfig(config), model: model}, nil
}

// Generate runs a single-turn chat completion and returns the response text.
func (o *OpenAILLM) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai: %v", schema.ErrLanguageModel, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", schema.ErrLanguageModel)
	}

	return resp.Choices[0].Message.Content, nil
}

var _ interfaces.LLM = (*OpenAILLM)(nil)
