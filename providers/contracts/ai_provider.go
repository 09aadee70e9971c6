package contracts

import (
	"context"

	"docgen/models"
	provider_models "docgen/providers/models"
)

// IAIProvider is one provider adapter. The generation client resolves a
// ModelDescriptor to an adapter at call time and never talks to a provider
// API directly.
type IAIProvider interface {
	Name() string

	// Complete sends one generation request and returns the raw text.
	Complete(ctx context.Context, model models.ModelDescriptor, systemPrompt string, userPrompt string) (*provider_models.CompletionResult, error)

	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, model models.ModelDescriptor, texts []string) ([][]float32, error)
}
