package models

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// CompletionResult is one normalized generation response.
type CompletionResult struct {
	Content      string
	InputTokens  int
	OutputTokens int
}

// ProviderError carries the HTTP-equivalent status of a failed provider call
// so the generation client can tell transient failures from permanent ones.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider request failed with status %d: %s", e.StatusCode, e.Message)
}

// IsTransient reports whether err is worth retrying: rate limits, request
// timeouts, 5xx-equivalents, and network timeouts.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.StatusCode == 429 || pe.StatusCode == 408 || pe.StatusCode >= 500
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// AIError is the error envelope most providers return on non-200 responses.
type AIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
