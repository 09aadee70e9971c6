package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"docgen/models"
	"docgen/providers/contracts"
	provider_models "docgen/providers/models"
)

const defaultTemperature = 0.2

// OpenAIProvider talks to the OpenAI API or any OpenAI-compatible endpoint
// (configured through the model descriptor's base URL).
type OpenAIProvider struct{}

// NewOpenAIProvider initializes a new OpenAIProvider.
func NewOpenAIProvider() contracts.IAIProvider {
	return &OpenAIProvider{}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) client(model models.ModelDescriptor) (*openai.Client, error) {
	apiKey := model.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is not set")
	}

	cfg := openai.DefaultConfig(apiKey)
	if model.BaseURL != "" {
		cfg.BaseURL = model.BaseURL
	}
	return openai.NewClientWithConfig(cfg), nil
}

func (p *OpenAIProvider) Complete(ctx context.Context, model models.ModelDescriptor, systemPrompt string, userPrompt string) (*provider_models.CompletionResult, error) {
	client, err := p.client(model)
	if err != nil {
		return nil, err
	}

	temperature := float32(defaultTemperature)
	if model.Temperature != nil {
		temperature = *model.Temperature
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model.ModelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: temperature,
		MaxTokens:   model.MaxTokens,
	})
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	return &provider_models.CompletionResult{
		Content:      resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (p *OpenAIProvider) Embed(ctx context.Context, model models.ModelDescriptor, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	client, err := p.client(model)
	if err != nil {
		return nil, err
	}

	resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(model.ModelName),
	})
	if err != nil {
		return nil, wrapError(err)
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < len(embeddings) {
			embeddings[data.Index] = data.Embedding
		}
	}
	return embeddings, nil
}

// wrapError converts SDK errors into ProviderError so the client's retry
// logic can classify them.
func wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &provider_models.ProviderError{
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
		}
	}
	return err
}
