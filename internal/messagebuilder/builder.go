// Package messagebuilder assembles role-tagged prompts and keeps them inside a token budget.
package messagebuilder

import (
	"compare-ai/internal/llm"
)

const (
	// perMessageTokens is the formatting overhead the chat format adds to every message.
	perMessageTokens = 3
	// replyPrimingTokens is added once for the assistant reply prefix.
	replyPrimingTokens = 3
)

// Builder collects prompt messages. The system message is always first.
type Builder struct {
	model    string
	counter  TokenCounter
	messages []llm.Message
}

// New creates a Builder seeded with the system prompt.
func New(systemPrompt, modelID string, counter TokenCounter) *Builder {
	if counter == nil {
		counter = ApproxCounter{}
	}
	return &Builder{
		model:   modelID,
		counter: counter,
		messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
		},
	}
}

// AppendMessage adds a message at the end of the prompt.
func (b *Builder) AppendMessage(role, content string) {
	b.messages = append(b.messages, llm.Message{Role: role, Content: content})
}

// InsertMessage adds a message at index. The index is clamped to [1, len]
// so nothing can be placed ahead of the system message.
func (b *Builder) InsertMessage(index int, role, content string) {
	if index < 1 {
		index = 1
	}
	if index > len(b.messages) {
		index = len(b.messages)
	}
	msg := llm.Message{Role: role, Content: content}
	b.messages = append(b.messages, llm.Message{})
	copy(b.messages[index+1:], b.messages[index:])
	b.messages[index] = msg
}

// Messages returns a copy of the assembled prompt.
func (b *Builder) Messages() []llm.Message {
	out := make([]llm.Message, len(b.messages))
	copy(out, b.messages)
	return out
}

// Tokens returns the token count of the whole prompt.
func (b *Builder) Tokens() int {
	return b.count(b.messages)
}

func (b *Builder) count(msgs []llm.Message) int {
	return CountMessages(b.counter, b.model, msgs)
}

// CountMessages returns the prompt tokens msgs cost model, including the
// chat format overhead.
func CountMessages(counter TokenCounter, model string, msgs []llm.Message) int {
	total := replyPrimingTokens
	for _, m := range msgs {
		total += perMessageTokens + counter.Count(model, m.Content)
	}
	return total
}

// Truncate cuts text from the end until it counts at most maxTokens.
func Truncate(counter TokenCounter, model, text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	runes := []rune(text)
	for len(runes) > 0 {
		excess := counter.Count(model, string(runes)) - maxTokens
		if excess <= 0 {
			break
		}
		runes = runes[:len(runes)-cutLength(excess, len(runes))]
	}
	return string(runes)
}

// cutLength converts a token excess to runes, roughly four per token,
// always cutting at least one and at most n.
func cutLength(excess, n int) int {
	return min(max(excess*4, 1), n)
}

// Fit returns the prompt reduced to at most maxTokens.
// Messages between the system message and the final message are dropped
// oldest first. The system and final messages are never dropped; when they
// alone are over budget, the final message is cut from the end so its
// opening (the question) survives.
func (b *Builder) Fit(maxTokens int) []llm.Message {
	msgs := b.Messages()
	if maxTokens <= 0 {
		return msgs
	}

	for b.count(msgs) > maxTokens && len(msgs) > 2 {
		msgs = append(msgs[:1], msgs[2:]...)
	}

	if len(msgs) < 2 {
		return msgs
	}

	last := len(msgs) - 1
	for {
		excess := b.count(msgs) - maxTokens
		if excess <= 0 {
			break
		}
		runes := []rune(msgs[last].Content)
		if len(runes) == 0 {
			break
		}
		msgs[last].Content = string(runes[:len(runes)-cutLength(excess, len(runes))])
	}
	return msgs
}
