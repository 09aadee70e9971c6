package token_management

import (
	"fmt"
	"strings"
	"sync"

	"docgen/constants/lipgloss"
	"docgen/token_management/contracts"
)

// charsPerToken is the cheap proxy used for token estimation: character count
// scaled down by a constant. Good enough for batching under a token ceiling.
const charsPerToken = 4

// TokenManager implementation
type tokenManager struct {
	mu              sync.Mutex
	usedToken       int
	usedInputToken  int
	usedOutputToken int
}

type modelPrice struct {
	inputCostPerMillion  float64
	outputCostPerMillion float64
}

// modelPrices is a static price table for the models the tool ships with.
// Unknown models cost zero.
var modelPrices = map[string]modelPrice{
	"gpt-4o":                   {2.5, 10},
	"gpt-4o-mini":              {0.15, 0.6},
	"claude-3-7-sonnet-latest": {3, 15},
	"claude-3-5-haiku-latest":  {0.8, 4},
	"text-embedding-3-small":   {0.02, 0},
	"text-embedding-3-large":   {0.13, 0},
}

// NewTokenManager creates a new token manager
func NewTokenManager() contracts.ITokenManagement {
	return &tokenManager{}
}

// EstimateTokens estimates the token count of a text without a tokenizer:
// len(text)/charsPerToken, minimum 1 for non-empty text.
func (tm *tokenManager) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / charsPerToken
	if n == 0 {
		n = 1
	}
	return n
}

// UsedTokens accumulates the token count for the run.
func (tm *tokenManager) UsedTokens(inputToken int, outputToken int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.usedInputToken += inputToken
	tm.usedOutputToken += outputToken
	tm.usedToken += inputToken + outputToken
}

func (tm *tokenManager) GetCurrentTokenUsage() (total int, input int, output int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.usedToken, tm.usedInputToken, tm.usedOutputToken
}

func (tm *tokenManager) ClearToken() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.usedToken = 0
	tm.usedInputToken = 0
	tm.usedOutputToken = 0
}

func (tm *tokenManager) CalculateCost(providerName string, modelName string, inputToken int, outputToken int) float64 {
	price, ok := modelPrices[strings.ToLower(modelName)]
	if !ok {
		return 0
	}
	inputCost := float64(inputToken) * price.inputCostPerMillion / 1000000.0
	outputCost := float64(outputToken) * price.outputCostPerMillion / 1000000.0
	return inputCost + outputCost
}

func (tm *tokenManager) DisplayTokens(providerName string, modelName string) {
	total, input, output := tm.GetCurrentTokenUsage()
	cost := tm.CalculateCost(providerName, modelName, input, output)

	tokenInfo := fmt.Sprintf("Token Used: %d - Cost: %.6f $ - Model: %s", total, cost, modelName)
	fmt.Println(lipgloss.BoxStyle.Render(tokenInfo))
}
