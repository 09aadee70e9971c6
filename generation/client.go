package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docgen/config"
	"docgen/models"
	"docgen/providers/contracts"
	provider_models "docgen/providers/models"
	"docgen/task_scheduler"
	token_contracts "docgen/token_management/contracts"
)

// Client drives all provider traffic for one run. Every request passes the
// concurrency gate and then the rate governor before reaching the provider,
// and a retried attempt re-enters the governor so backoff never bypasses
// pacing.
type Client struct {
	provider contracts.IAIProvider
	cfg      config.AIConfig
	gate     *task_scheduler.Gate
	governor *task_scheduler.Governor
	tokens   token_contracts.ITokenManagement

	// sleep is swapped out by tests.
	sleep func(time.Duration)
}

// NewClient creates a generation client around the given provider adapter.
func NewClient(provider contracts.IAIProvider, cfg config.AIConfig, tokens token_contracts.ITokenManagement) *Client {
	return &Client{
		provider: provider,
		cfg:      cfg,
		gate:     task_scheduler.NewGate(cfg.RequestConcurrency),
		governor: task_scheduler.NewGovernor(time.Duration(cfg.MinRequestIntervalMs) * time.Millisecond),
		tokens:   tokens,
		sleep:    time.Sleep,
	}
}

func (c *Client) descriptor(modelName string, kind models.ModelKind) models.ModelDescriptor {
	return models.ModelDescriptor{
		ID:          fmt.Sprintf("%s/%s", c.cfg.Provider, modelName),
		Provider:    c.cfg.Provider,
		ModelName:   modelName,
		Kind:        kind,
		BaseURL:     c.cfg.BaseURL,
		APIKey:      c.cfg.ApiKey,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxOutputTokens,
	}
}

// ModelID identifies the active generation model, for cache versioning.
func (c *Client) ModelID() string {
	return fmt.Sprintf("%s/%s", c.cfg.Provider, c.cfg.Model)
}

// Generate produces a doc comment for one node. It never panics and never
// returns a Go error: every failure mode is folded into the outcome so the
// caller can account for it without unwinding the batch.
func (c *Client) Generate(ctx context.Context, nodeCtx *models.NodeContext) models.GenerationOutcome {
	var outcome models.GenerationOutcome
	err := c.gate.Execute(ctx, func() error {
		outcome = c.generateLocked(ctx, nodeCtx)
		return nil
	})
	if err != nil {
		return models.GenerationOutcome{Status: models.OutcomeError, Reason: err.Error()}
	}
	return outcome
}

func (c *Client) generateLocked(ctx context.Context, nodeCtx *models.NodeContext) models.GenerationOutcome {
	model := c.descriptor(c.cfg.Model, models.ModelKindGeneration)
	userPrompt := buildUserPrompt(nodeCtx)

	result, err := c.completeWithRetry(ctx, model, userPrompt)
	if err != nil {
		return models.GenerationOutcome{Status: models.OutcomeError, Reason: err.Error()}
	}

	if c.tokens != nil {
		c.tokens.UsedTokens(result.InputTokens, result.OutputTokens)
	}

	content := strings.TrimSpace(result.Content)
	if len(content) < c.cfg.MinResponseLength {
		return models.GenerationOutcome{
			Status: models.OutcomeSkip,
			Reason: fmt.Sprintf("response too short (%d chars)", len(content)),
		}
	}
	if !hasCommentMarker(content, nodeCtx.Language) {
		return models.GenerationOutcome{
			Status: models.OutcomeError,
			Reason: "response contains no recognizable comment marker",
		}
	}

	return models.GenerationOutcome{Status: models.OutcomeSuccess, Content: content}
}

func (c *Client) completeWithRetry(ctx context.Context, model models.ModelDescriptor, userPrompt string) (*provider_models.CompletionResult, error) {
	var lastErr error
	attempts := c.cfg.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			c.sleep(c.backoff(attempt))
		}
		if err := c.governor.Admit(ctx); err != nil {
			return nil, err
		}

		result, err := c.provider.Complete(ctx, model, systemPrompt, userPrompt)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !provider_models.IsTransient(err) {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) backoff(attempt int) time.Duration {
	base := time.Duration(c.cfg.RetryBaseDelayMs) * time.Millisecond
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	return base << (attempt - 1)
}

// Embed returns one vector per text, in input order. Unlike Generate it
// surfaces errors directly: the relationship index owns per-batch failure
// accounting.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	model := c.descriptor(c.cfg.EmbeddingModel, models.ModelKindEmbedding)

	var vectors [][]float32
	err := c.gate.Execute(ctx, func() error {
		if err := c.governor.Admit(ctx); err != nil {
			return err
		}
		var embedErr error
		vectors, embedErr = c.provider.Embed(ctx, model, texts)
		return embedErr
	})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}
