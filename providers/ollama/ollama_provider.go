package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"docgen/models"
	"docgen/providers/contracts"
	provider_models "docgen/providers/models"
)

const defaultBaseURL = "http://localhost:11434"

// OllamaProvider talks to a local Ollama instance for both generation and
// embeddings.
type OllamaProvider struct {
	client *http.Client
}

// NewOllamaProvider initializes a new OllamaProvider.
func NewOllamaProvider() contracts.IAIProvider {
	return &OllamaProvider{
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature *float32      `json:"temperature,omitempty"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	PromptEvalCount int  `json:"prompt_eval_count"`
	EvalCount       int  `json:"eval_count"`
	Done            bool `json:"done"`
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (p *OllamaProvider) baseURL(model models.ModelDescriptor) string {
	if model.BaseURL != "" {
		return model.BaseURL
	}
	return defaultBaseURL
}

func (p *OllamaProvider) Complete(ctx context.Context, model models.ModelDescriptor, systemPrompt string, userPrompt string) (*provider_models.CompletionResult, error) {
	reqBody := chatRequest{
		Model: model.ModelName,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream:      false,
		Temperature: model.Temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshalling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/chat", p.baseURL(model)), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	return &provider_models.CompletionResult{
		Content:      response.Message.Content,
		InputTokens:  response.PromptEvalCount,
		OutputTokens: response.EvalCount,
	}, nil
}

func (p *OllamaProvider) Embed(ctx context.Context, model models.ModelDescriptor, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	jsonData, err := json.Marshal(embedRequest{Model: model.ModelName, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("error marshalling embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/embed", p.baseURL(model)), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending embed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}

	var response embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("error decoding embed response: %w", err)
	}
	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(response.Embeddings))
	}

	return response.Embeddings, nil
}

func readError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiError provider_models.AIError
	message := string(body)
	if err := json.Unmarshal(body, &apiError); err == nil && apiError.Error.Message != "" {
		message = apiError.Error.Message
	}

	return &provider_models.ProviderError{
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}
