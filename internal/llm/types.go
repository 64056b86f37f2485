package llm

import "strings"

// Message roles understood by the chat completions API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a chat conversation.
// This type is used by the approaches and the message builder.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// String renders the message for human-readable traces.
func (m Message) String() string {
	return m.Role + ": " + m.Content
}

// FormatTranscript renders messages as an HTML fragment, one
// "role: content" block per message separated by a blank line.
func FormatTranscript(messages []Message) string {
	parts := make([]string, len(messages))
	for i, m := range messages {
		parts[i] = m.String()
	}
	return strings.ReplaceAll(strings.Join(parts, "\n\n"), "\n", "<br>")
}

// ChatParams holds parameters for chat completion requests.
type ChatParams struct {
	// Model specifies the model to use. If empty, the client's default model is used.
	Model string

	// DeploymentID selects an Azure OpenAI deployment. If empty, the
	// OpenAI-compatible /v1/chat/completions route is used.
	DeploymentID string

	// MaxTokens specifies the maximum number of tokens to generate.
	// If 0, no limit is applied.
	MaxTokens int

	// Temperature controls the randomness of the output.
	Temperature float32

	// N is the number of choices to generate. If 0, the service default (1) applies.
	N int
}
