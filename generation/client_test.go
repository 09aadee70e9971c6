package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen/config"
	"docgen/models"
	provider_models "docgen/providers/models"
)

type fakeProvider struct {
	completions []fakeCompletion
	calls       int
	embedVecs   [][]float32
	embedErr    error
}

type fakeCompletion struct {
	content string
	err     error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, model models.ModelDescriptor, systemPrompt string, userPrompt string) (*provider_models.CompletionResult, error) {
	idx := f.calls
	if idx >= len(f.completions) {
		idx = len(f.completions) - 1
	}
	f.calls++
	c := f.completions[idx]
	if c.err != nil {
		return nil, c.err
	}
	return &provider_models.CompletionResult{Content: c.content, InputTokens: 10, OutputTokens: 5}, nil
}

func (f *fakeProvider) Embed(ctx context.Context, model models.ModelDescriptor, texts []string) ([][]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return f.embedVecs, nil
}

func testConfig() config.AIConfig {
	return config.AIConfig{
		Provider:           "openai",
		Model:              "gpt-4o-mini",
		EmbeddingModel:     "text-embedding-3-small",
		MaxRetries:         2,
		RetryBaseDelayMs:   1,
		MinResponseLength:  10,
		RequestConcurrency: 2,
	}
}

func newTestClient(provider *fakeProvider) *Client {
	client := NewClient(provider, testConfig(), nil)
	client.sleep = func(time.Duration) {}
	return client
}

func goNodeContext() *models.NodeContext {
	return &models.NodeContext{
		ID:          "pkg/util.go:ParseAddr",
		NodeName:    "ParseAddr",
		NodeKind:    models.NodeKindFunction,
		Language:    "go",
		CodeSnippet: "func ParseAddr(s string) (Addr, error) { ... }",
	}
}

func TestGenerateSuccess(t *testing.T) {
	provider := &fakeProvider{completions: []fakeCompletion{
		{content: "// ParseAddr parses s into an Addr."},
	}}
	client := newTestClient(provider)

	outcome := client.Generate(context.Background(), goNodeContext())

	assert.Equal(t, models.OutcomeSuccess, outcome.Status)
	assert.Equal(t, "// ParseAddr parses s into an Addr.", outcome.Content)
	assert.Equal(t, 1, provider.calls)
}

func TestGenerateRetriesTransientThenSucceeds(t *testing.T) {
	transient := &provider_models.ProviderError{StatusCode: 429, Message: "rate limited"}
	provider := &fakeProvider{completions: []fakeCompletion{
		{err: transient},
		{err: transient},
		{content: "// ParseAddr parses s into an Addr."},
	}}
	client := newTestClient(provider)

	var delays []time.Duration
	client.sleep = func(d time.Duration) { delays = append(delays, d) }

	outcome := client.Generate(context.Background(), goNodeContext())

	assert.Equal(t, models.OutcomeSuccess, outcome.Status)
	assert.Equal(t, 3, provider.calls)
	require.Len(t, delays, 2)
	assert.Equal(t, 1*time.Millisecond, delays[0])
	assert.Equal(t, 2*time.Millisecond, delays[1])
}

func TestGenerateExhaustsRetries(t *testing.T) {
	transient := &provider_models.ProviderError{StatusCode: 503, Message: "overloaded"}
	provider := &fakeProvider{completions: []fakeCompletion{{err: transient}}}
	client := newTestClient(provider)

	outcome := client.Generate(context.Background(), goNodeContext())

	assert.Equal(t, models.OutcomeError, outcome.Status)
	assert.Contains(t, outcome.Reason, "overloaded")
	assert.Equal(t, 3, provider.calls)
}

func TestGenerateDoesNotRetryPermanentError(t *testing.T) {
	permanent := &provider_models.ProviderError{StatusCode: 401, Message: "bad api key"}
	provider := &fakeProvider{completions: []fakeCompletion{{err: permanent}}}
	client := newTestClient(provider)

	outcome := client.Generate(context.Background(), goNodeContext())

	assert.Equal(t, models.OutcomeError, outcome.Status)
	assert.Equal(t, 1, provider.calls)
}

func TestGenerateSkipsShortResponse(t *testing.T) {
	provider := &fakeProvider{completions: []fakeCompletion{{content: "// ok"}}}
	client := newTestClient(provider)

	outcome := client.Generate(context.Background(), goNodeContext())

	assert.Equal(t, models.OutcomeSkip, outcome.Status)
	assert.Contains(t, outcome.Reason, "too short")
	assert.Empty(t, outcome.Content)
}

func TestGenerateRejectsResponseWithoutCommentMarker(t *testing.T) {
	provider := &fakeProvider{completions: []fakeCompletion{
		{content: "ParseAddr parses s into an Addr and returns it."},
	}}
	client := newTestClient(provider)

	outcome := client.Generate(context.Background(), goNodeContext())

	assert.Equal(t, models.OutcomeError, outcome.Status)
	assert.Contains(t, outcome.Reason, "comment marker")
}

func TestGenerateAcceptsPythonDocstring(t *testing.T) {
	provider := &fakeProvider{completions: []fakeCompletion{
		{content: "\"\"\"Parse an address string into its parts.\"\"\""},
	}}
	client := newTestClient(provider)

	nodeCtx := goNodeContext()
	nodeCtx.Language = "python"
	outcome := client.Generate(context.Background(), nodeCtx)

	assert.Equal(t, models.OutcomeSuccess, outcome.Status)
}

func TestGenerateCancelledContext(t *testing.T) {
	provider := &fakeProvider{completions: []fakeCompletion{
		{content: "// ParseAddr parses s into an Addr."},
	}}
	client := newTestClient(provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcome := client.Generate(ctx, goNodeContext())

	assert.Equal(t, models.OutcomeError, outcome.Status)
}

func TestEmbedReturnsVectorsInOrder(t *testing.T) {
	provider := &fakeProvider{embedVecs: [][]float32{{1, 0}, {0, 1}}}
	client := newTestClient(provider)

	vecs, err := client.Embed(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{1, 0}, vecs[0])
}

func TestEmbedSurfacesError(t *testing.T) {
	provider := &fakeProvider{embedErr: errors.New("embeddings unavailable")}
	client := newTestClient(provider)

	_, err := client.Embed(context.Background(), []string{"a"})

	assert.Error(t, err)
}

func TestBuildUserPromptIncludesRelatedSymbols(t *testing.T) {
	nodeCtx := goNodeContext()
	nodeCtx.RelatedSymbols = []models.RelatedSymbol{
		{Name: "FormatAddr", Kind: models.NodeKindFunction, FilePath: "pkg/format.go", RelationshipScore: 0.91},
	}
	nodeCtx.SymbolUsages = []string{"pkg/server.go"}
	nodeCtx.Imports = []string{`"net"`, `"strconv"`}

	prompt := buildUserPrompt(nodeCtx)

	assert.Contains(t, prompt, "FormatAddr")
	assert.Contains(t, prompt, "pkg/server.go")
	assert.Contains(t, prompt, `Imports: "net", "strconv"`)
	assert.Contains(t, prompt, nodeCtx.CodeSnippet)
}
