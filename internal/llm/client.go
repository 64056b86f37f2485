package llm

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

// Client is a client for an OpenAI-compatible or Azure OpenAI chat completions API.
type Client struct {
	BaseURL    string
	APIKey     string
	Model      string
	APIVersion string
	client     *http.Client
}

// NewClient creates a new LLM client.
func NewClient(baseURL, apiKey, model, apiVersion string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		Model:      model,
		APIVersion: apiVersion,
		client:     http.DefaultClient,
	}
}

// ChatRequest represents the request payload for chat completions.
type ChatRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature *float32  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	N           int       `json:"n,omitempty"`
}

// ChatChoice represents a single choice in the chat response.
type ChatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// ChatResponse represents the response from the chat completions API.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Choices []ChatChoice `json:"choices"`
}

// ChatWithMessages sends a chat completion request with the given messages
// and returns the content of the first choice.
func (c *Client) ChatWithMessages(ctx context.Context, messages []Message, params ChatParams) (string, error) {
	payload := c.newRequest(messages, params)

	resp, err := c.do(ctx, params.DeploymentID, payload)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return chatResp.Choices[0].Message.Content, nil
}

func (c *Client) newRequest(messages []Message, params ChatParams) ChatRequest {
	model := params.Model
	if model == "" {
		model = c.Model
	}
	req := ChatRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: params.MaxTokens,
		N:         params.N,
	}
	if params.Temperature != 0 {
		t := params.Temperature
		req.Temperature = &t
	}
	return req
}

// endpoint returns the completions URL. Azure deployments are addressed by
// path and versioned by query string; everything else uses the OpenAI route.
func (c *Client) endpoint(deploymentID string) string {
	if deploymentID == "" {
		return fmt.Sprintf("%s/v1/chat/completions", c.BaseURL)
	}
	u := fmt.Sprintf("%s/openai/deployments/%s/chat/completions", c.BaseURL, url.PathEscape(deploymentID))
	if c.APIVersion != "" {
		u += "?api-version=" + url.QueryEscape(c.APIVersion)
	}
	return u
}

func (c *Client) do(ctx context.Context, deploymentID string, payload ChatRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint(deploymentID), bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if deploymentID != "" {
		req.Header.Set("api-key", c.APIKey)
	} else {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	return resp, nil
}
