// Package enrichment talks to the Translator-compatible enrichment endpoint
// used to bring search queries into the index language.
package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const apiVersion = "3.0"

// Client calls the detect and translate operations.
type Client struct {
	Endpoint string
	Key      string
	client   *http.Client
}

// NewClient creates a new enrichment client.
func NewClient(endpoint, key string) *Client {
	return &Client{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Key:      key,
		client:   http.DefaultClient,
	}
}

type textItem struct {
	Text string `json:"Text"`
}

// DetectResult is one entry of a detect response.
type DetectResult struct {
	Language string  `json:"language"`
	Score    float64 `json:"score"`
}

// Translation is one target-language rendering of the input.
type Translation struct {
	Text string `json:"text"`
	To   string `json:"to"`
}

// TranslateResult is one entry of a translate response.
type TranslateResult struct {
	Translations []Translation `json:"translations"`
}

// Detect returns the language code of text, e.g. "fr".
func (c *Client) Detect(ctx context.Context, text string) (string, error) {
	var results []DetectResult
	if err := c.post(ctx, "/detect", nil, text, &results); err != nil {
		return "", err
	}
	if len(results) == 0 || results[0].Language == "" {
		return "", fmt.Errorf("no language detected")
	}
	return results[0].Language, nil
}

// Translate renders text in the language to.
func (c *Client) Translate(ctx context.Context, text, to string) (string, error) {
	if to == "" {
		return "", fmt.Errorf("target language is required")
	}
	var results []TranslateResult
	if err := c.post(ctx, "/translate", url.Values{"to": {to}}, text, &results); err != nil {
		return "", err
	}
	if len(results) == 0 || len(results[0].Translations) == 0 {
		return "", fmt.Errorf("no translation returned")
	}
	return results[0].Translations[0].Text, nil
}

func (c *Client) post(ctx context.Context, path string, query url.Values, text string, out any) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("empty text")
	}

	body, err := json.Marshal([]textItem{{Text: text}})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	params := url.Values{"api-version": {apiVersion}}
	for k, v := range query {
		params[k] = v
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.Endpoint+path+"?"+params.Encode(), bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.Key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
