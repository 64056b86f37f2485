// Package compare explains how an internally retrieved answer differs from a web chat answer.
package compare

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_completer.go -package=mocks compare-ai/internal/compare Completer

import (
	"context"
	"fmt"
	"strings"

	"compare-ai/internal/approach"
	"compare-ai/internal/config"
	"compare-ai/internal/contextutil"
	"compare-ai/internal/llm"
	"compare-ai/internal/messagebuilder"
)

const (
	defaultResponseLength = 1024
	temperature           = 0.6
)

// Completer is the chat completion service as seen by this package.
type Completer interface {
	// ChatWithMessages returns the text of the first generated choice.
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Compare runs the internal approach and asks the model to contrast its
// answer with the web chat answer carried in the first history turn.
// It holds no per-request state and is safe for concurrent use.
type Compare struct {
	cfg         *config.Config
	newInternal approach.Factory
	completer   Completer
	tokens      messagebuilder.TokenCounter
}

// NewCompare creates a Compare. newInternal is called on every Run with cfg
// to build the retrieve-then-generate approach whose answer is compared.
func NewCompare(cfg *config.Config, newInternal approach.Factory, completer Completer, tokens messagebuilder.TokenCounter) *Compare {
	if tokens == nil {
		tokens = messagebuilder.ApproxCounter{}
	}
	return &Compare{
		cfg:         cfg,
		newInternal: newInternal,
		completer:   completer,
		tokens:      tokens,
	}
}

// Run implements approach.Approach.
func (c *Compare) Run(ctx context.Context, history approach.History, overrides approach.Overrides) (approach.Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	userQuery, err := history.LastUser()
	if err != nil {
		return approach.Result{}, err
	}
	bingAnswer, err := history.FirstBot()
	if err != nil {
		return approach.Result{}, err
	}
	userPersona, err := overrides.String(approach.OverrideUserPersona, "")
	if err != nil {
		return approach.Result{}, err
	}
	systemPersona, err := overrides.String(approach.OverrideSystemPersona, "")
	if err != nil {
		return approach.Result{}, err
	}
	responseLength, err := overrides.Int(approach.OverrideResponseLength, defaultResponseLength)
	if err != nil {
		return approach.Result{}, err
	}
	if responseLength < 0 {
		return approach.Result{}, &approach.ValidationError{Field: approach.OverrideResponseLength, Message: "must be positive"}
	}
	budget := c.promptBudget(ctx, responseLength)
	if budget < llm.CompletionReserve {
		return approach.Result{}, &approach.ValidationError{
			Field:   approach.OverrideResponseLength,
			Message: fmt.Sprintf("%d leaves no room for the prompt in the %s context window", responseLength, c.cfg.ModelName),
		}
	}

	internal, err := c.newInternal(c.cfg)
	if err != nil {
		return approach.Result{}, approach.WrapError(err, "failed to create internal approach")
	}

	logger.InfoContext(ctx, "running internal approach for comparison", "history_turns", len(history))
	internalResult, err := internal.Run(ctx, history, overrides)
	if err != nil {
		logger.ErrorContext(ctx, "internal approach failed", "error", err)
		return approach.Result{}, approach.WrapError(err, "internal approach failed")
	}
	citations := internalResult.CitationLookup

	systemPrompt := renderSystemPrompt(systemPersona, userPersona, c.cfg.QueryTermLanguage)
	internalText, bingText := c.fitAnswers(systemPrompt, userQuery, internalResult.Answer, bingAnswer, budget)
	if internalText != internalResult.Answer || bingText != bingAnswer {
		logger.WarnContext(ctx, "answers shortened to fit prompt",
			"budget", budget,
			"internal_kept", len(internalText), "internal_length", len(internalResult.Answer),
			"bing_kept", len(bingText), "bing_length", len(bingAnswer),
		)
	}
	messages := c.BuildMessages(
		systemPrompt,
		c.cfg.ModelName,
		comparePrompt(userQuery, internalText, bingText),
		fewShots,
		budget,
	)
	logger.DebugContext(ctx, "comparison prompt assembled",
		"messages", len(messages),
		"prompt_tokens", messagebuilder.CountMessages(c.tokens, c.cfg.ModelName, messages),
		"response_length", responseLength,
	)

	completion, err := c.MakeChatCompletion(ctx, messages, responseLength)
	if err != nil {
		logger.ErrorContext(ctx, "comparison completion failed", "error", err)
		return approach.Result{}, approach.ExternalError(err, "failed to get comparison from LLM")
	}

	var answer strings.Builder
	answer.WriteString(unquote(completion))
	for i := 1; i <= citations.Len(); i++ {
		fmt.Fprintf(&answer, " [File%d]", i)
	}

	logger.InfoContext(ctx, "comparison completed", "answer_length", answer.Len(), "citations", citations.Len())

	return approach.Result{
		DataPoints:     nil,
		Answer:         answer.String(),
		Thoughts:       renderThoughts(messages),
		CitationLookup: citations,
	}, nil
}

// MakeChatCompletion asks the completion service for a single choice at
// temperature 0.6, capped at maxTokens generated tokens (0 means uncapped).
func (c *Compare) MakeChatCompletion(ctx context.Context, messages []llm.Message, maxTokens int) (string, error) {
	return c.completer.ChatWithMessages(ctx, messages, llm.ChatParams{
		Model:        c.cfg.ModelName,
		DeploymentID: c.cfg.ChatDeployment,
		MaxTokens:    maxTokens,
		Temperature:  temperature,
		N:            1,
	})
}

// BuildMessages assembles the system prompt, the few-shot examples in order
// and the user text as the final message, fitted to maxTokens.
func (c *Compare) BuildMessages(systemPrompt, modelID, userText string, shots []llm.Message, maxTokens int) []llm.Message {
	builder := messagebuilder.New(systemPrompt, modelID, c.tokens)
	for _, shot := range shots {
		builder.AppendMessage(shot.Role, shot.Content)
	}
	builder.InsertMessage(len(shots)+1, llm.RoleUser, userText)
	return builder.Fit(maxTokens)
}

// promptBudget is what remains of the model's context window once the reply
// (responseLength, at least llm.CompletionReserve) is set aside.
func (c *Compare) promptBudget(ctx context.Context, responseLength int) int {
	budget, err := llm.PromptBudget(c.cfg.ModelName, responseLength)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "using default token limit", "model", c.cfg.ModelName, "error", err)
	}
	return budget
}

// fitAnswers shortens the two answers from the end so that the system prompt
// and the compare prompt fit budget together. The longer answer gives way
// first; the question and both section headers are never cut.
func (c *Compare) fitAnswers(systemPrompt, query, internal, bing string, budget int) (string, string) {
	model := c.cfg.ModelName
	frame := messagebuilder.CountMessages(c.tokens, model, []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: comparePrompt(query, "", "")},
	})
	available := budget - frame
	internalTokens := c.tokens.Count(model, internal)
	bingTokens := c.tokens.Count(model, bing)
	if internalTokens+bingTokens <= available {
		return internal, bing
	}
	if available <= 0 {
		return "", ""
	}

	half := available / 2
	switch {
	case internalTokens <= half:
		bing = messagebuilder.Truncate(c.tokens, model, bing, available-internalTokens)
	case bingTokens <= half:
		internal = messagebuilder.Truncate(c.tokens, model, internal, available-bingTokens)
	default:
		internal = messagebuilder.Truncate(c.tokens, model, internal, half)
		bing = messagebuilder.Truncate(c.tokens, model, bing, available-half)
	}
	return internal, bing
}
