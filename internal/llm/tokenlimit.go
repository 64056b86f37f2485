package llm

import (
	"fmt"
	"strings"
)

// modelTokenLimits is the context window of each supported chat model.
var modelTokenLimits = map[string]int{
	"gpt-35-turbo":      4097,
	"gpt-3.5-turbo":     4097,
	"gpt-35-turbo-16k":  16385,
	"gpt-3.5-turbo-16k": 16385,
	"gpt-4":             8192,
	"gpt-4-32k":         32768,
	"gpt-4o":            128000,
	"gpt-4o-mini":       128000,
}

// TokenLimit returns the context window of model.
func TokenLimit(model string) (int, error) {
	limit, ok := modelTokenLimits[strings.ToLower(strings.TrimSpace(model))]
	if !ok {
		return 0, fmt.Errorf("unknown model %q: no token limit configured", model)
	}
	return limit, nil
}

const (
	// CompletionReserve is the least share of the window kept for the reply.
	CompletionReserve = 500
	// DefaultTokenLimit is assumed for models missing from the table.
	DefaultTokenLimit = 4097
)

// PromptBudget returns how many prompt tokens fit in model's window once
// replyTokens (at least CompletionReserve) are set aside for the completion.
// Unknown models are budgeted against DefaultTokenLimit and reported with an
// error so callers can log it. The budget is never below zero.
func PromptBudget(model string, replyTokens int) (int, error) {
	limit, err := TokenLimit(model)
	if err != nil {
		limit = DefaultTokenLimit
	}
	budget := limit - max(replyTokens, CompletionReserve)
	if budget < 0 {
		budget = 0
	}
	return budget, err
}
