package providers

import (
	"fmt"

	"docgen/providers/anthropic"
	"docgen/providers/contracts"
	"docgen/providers/ollama"
	"docgen/providers/openai"
)

// NewProvider returns the provider adapter for the given name.
func NewProvider(name string) (contracts.IAIProvider, error) {
	switch name {
	case "openai":
		return openai.NewOpenAIProvider(), nil
	case "anthropic":
		return anthropic.NewAnthropicProvider(), nil
	case "ollama":
		return ollama.NewOllamaProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}
