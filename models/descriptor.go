package models

// ModelKind distinguishes generation models from embedding models.
type ModelKind string

const (
	ModelKindGeneration ModelKind = "generation"
	ModelKindEmbedding  ModelKind = "embedding"
)

// ModelDescriptor declares one model and the provider that serves it. The
// generation client resolves a descriptor to a provider adapter at call time.
type ModelDescriptor struct {
	ID          string    `mapstructure:"id"`
	Provider    string    `mapstructure:"provider"`
	ModelName   string    `mapstructure:"model_name"`
	Kind        ModelKind `mapstructure:"kind"`
	BaseURL     string    `mapstructure:"base_url"`
	APIKey      string    `mapstructure:"api_key"`
	Temperature *float32  `mapstructure:"temperature"`
	MaxTokens   int       `mapstructure:"max_tokens"`
}
