package anthropic

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"docgen/models"
	"docgen/providers/contracts"
	provider_models "docgen/providers/models"
)

const defaultMaxTokens = 1024

// AnthropicProvider talks to the Anthropic Messages API.
type AnthropicProvider struct{}

// NewAnthropicProvider initializes a new AnthropicProvider.
func NewAnthropicProvider() contracts.IAIProvider {
	return &AnthropicProvider{}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) client(model models.ModelDescriptor) (*anthropic.Client, error) {
	apiKey := model.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is not set")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if model.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(model.BaseURL))
	}
	client := anthropic.NewClient(opts...)
	return &client, nil
}

func (p *AnthropicProvider) Complete(ctx context.Context, model models.ModelDescriptor, systemPrompt string, userPrompt string) (*provider_models.CompletionResult, error) {
	client, err := p.client(model)
	if err != nil {
		return nil, err
	}

	maxTokens := model.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	// The system prompt rides in front of the user turn; the doc-generation
	// prompts are short enough that a separate system block buys nothing.
	prompt := userPrompt
	if systemPrompt != "" {
		prompt = systemPrompt + "\n\n" + userPrompt
	}

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model.ModelName),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, wrapError(err)
	}

	var sb strings.Builder
	for _, content := range message.Content {
		if content.Type == "text" {
			sb.WriteString(content.Text)
		}
	}

	return &provider_models.CompletionResult{
		Content:      sb.String(),
		InputTokens:  int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

// Embed is unsupported: Anthropic exposes no embedding models. Pair the
// anthropic generation provider with an openai or ollama embedding model.
func (p *AnthropicProvider) Embed(ctx context.Context, model models.ModelDescriptor, texts []string) ([][]float32, error) {
	return nil, fmt.Errorf("anthropic provider does not support embeddings")
}

func wrapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &provider_models.ProviderError{
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Error(),
		}
	}
	return err
}
