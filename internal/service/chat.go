// Package service routes chat requests to the registered answer approaches.
package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService compare-ai/internal/service ChatService

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"compare-ai/internal/approach"
	"compare-ai/internal/contextutil"
)

// ChatRequest is a chat turn addressed to one approach.
type ChatRequest struct {
	Approach  string
	History   approach.History
	Overrides approach.Overrides
}

// ChatService provides chat functionality.
type ChatService interface {
	// ProcessChat runs the requested approach over the conversation.
	ProcessChat(ctx context.Context, req ChatRequest) (approach.Result, error)
}

// chatService implements ChatService.
type chatService struct {
	approaches map[string]approach.Approach
}

// NewChatService creates a ChatService serving the given approaches by name.
func NewChatService(approaches map[string]approach.Approach) ChatService {
	registered := make(map[string]approach.Approach, len(approaches))
	for name, a := range approaches {
		registered[name] = a
	}
	return &chatService{approaches: registered}
}

// ProcessChat processes a chat request.
func (s *chatService) ProcessChat(ctx context.Context, req ChatRequest) (approach.Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	a, ok := s.approaches[req.Approach]
	if !ok {
		logger.WarnContext(ctx, "unknown approach", "approach", req.Approach)
		return approach.Result{}, &approach.ValidationError{
			Field:   "approach",
			Message: fmt.Sprintf("unknown approach %q, expected one of %s", req.Approach, s.names()),
		}
	}
	if len(req.History) == 0 {
		logger.WarnContext(ctx, "empty history in chat request")
		return approach.Result{}, &approach.ValidationError{
			Field:   "history",
			Message: "cannot be empty",
		}
	}

	result, err := a.Run(ctx, req.History, req.Overrides)
	if err != nil {
		logger.ErrorContext(ctx, "approach failed", "approach", req.Approach, "error", err)
		return approach.Result{}, approach.WrapError(err, fmt.Sprintf("approach %s failed", req.Approach))
	}

	logger.InfoContext(ctx, "chat request processed successfully",
		"approach", req.Approach,
		"history_turns", len(req.History),
		"answer_length", len(result.Answer),
		"citations", result.CitationLookup.Len(),
	)
	return result, nil
}

func (s *chatService) names() string {
	names := make([]string, 0, len(s.approaches))
	for name := range s.approaches {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
