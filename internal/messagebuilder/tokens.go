package messagebuilder

import (
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding is used for models tiktoken does not know by name (e.g. Azure "gpt-35-turbo").
const fallbackEncoding = "cl100k_base"

// TokenCounter counts the tokens a model sees for a piece of text.
type TokenCounter interface {
	Count(model, text string) int
}

// ApproxCounter estimates roughly four characters per token.
type ApproxCounter struct{}

// Count returns the estimated token count of text.
func (ApproxCounter) Count(_ string, text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}

// TiktokenCounter counts tokens with the model's BPE encoding.
// Encodings are loaded lazily and cached; when one cannot be loaded
// (no network, unknown model) the counter falls back to ApproxCounter.
type TiktokenCounter struct {
	mu        sync.Mutex
	encodings map[string]*tiktoken.Tiktoken
	fallback  ApproxCounter
}

// NewTiktokenCounter creates a new TiktokenCounter.
func NewTiktokenCounter() *TiktokenCounter {
	return &TiktokenCounter{encodings: make(map[string]*tiktoken.Tiktoken)}
}

// Count returns the number of tokens in text for model.
func (c *TiktokenCounter) Count(model, text string) int {
	enc := c.encoding(model)
	if enc == nil {
		return c.fallback.Count(model, text)
	}
	return len(enc.Encode(text, nil, nil))
}

func (c *TiktokenCounter) encoding(model string) *tiktoken.Tiktoken {
	c.mu.Lock()
	defer c.mu.Unlock()

	if enc, ok := c.encodings[model]; ok {
		return enc
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		slog.Warn("token encoding unavailable, using estimate", "model", model, "error", err)
		enc = nil
	}
	// Cache misses too so a missing encoding is not fetched on every call.
	c.encodings[model] = enc
	return enc
}
