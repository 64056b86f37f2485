package approach

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_approach.go -package=mocks compare-ai/internal/approach Approach

import (
	"context"

	"compare-ai/internal/config"
)

// Turn is one exchange of a conversation. Either side may be empty.
type Turn struct {
	User string `json:"user,omitempty"`
	Bot  string `json:"bot,omitempty"`
}

// History is the ordered conversation, oldest turn first.
type History []Turn

// LastUser returns the user text of the newest turn.
func (h History) LastUser() (string, error) {
	if len(h) == 0 {
		return "", &ValidationError{Field: "history", Message: "cannot be empty"}
	}
	q := h[len(h)-1].User
	if q == "" {
		return "", &ValidationError{Field: "history", Message: "last turn has no user message"}
	}
	return q, nil
}

// FirstBot returns the bot text of the oldest turn.
func (h History) FirstBot() (string, error) {
	if len(h) == 0 {
		return "", &ValidationError{Field: "history", Message: "cannot be empty"}
	}
	a := h[0].Bot
	if a == "" {
		return "", &ValidationError{Field: "history", Message: "first turn has no bot message"}
	}
	return a, nil
}

// Result is the envelope every approach returns.
type Result struct {
	DataPoints     []string        `json:"data_points"`
	Answer         string          `json:"answer"`
	Thoughts       string          `json:"thoughts"`
	CitationLookup *CitationLookup `json:"citation_lookup"`
}

// Approach answers a conversation.
type Approach interface {
	// Run produces an answer for the newest user turn of history.
	Run(ctx context.Context, history History, overrides Overrides) (Result, error)
}

// Factory builds an approach from the shared configuration.
type Factory func(cfg *config.Config) (Approach, error)
