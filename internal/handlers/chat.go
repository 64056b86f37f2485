package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"compare-ai/internal/approach"
	"compare-ai/internal/contextutil"
	"compare-ai/internal/service"
)

// maxRequestBytes bounds a chat request body.
const maxRequestBytes = 1 << 20

// ChatHandler handles HTTP requests for chat.
type ChatHandler struct {
	chatService service.ChatService
	markdown    *MarkdownRenderer
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		markdown:    NewMarkdownRenderer(),
	}
}

// ChatRequest represents the HTTP request payload for chat.
type ChatRequest struct {
	Approach  string             `json:"approach"`
	History   approach.History   `json:"history"`
	Overrides approach.Overrides `json:"overrides,omitempty"`
}

// ChatResponse represents the HTTP response payload for chat.
type ChatResponse struct {
	DataPoints     []string                 `json:"data_points"`
	Answer         string                   `json:"answer"`
	AnswerHTML     string                   `json:"answer_html,omitempty"`
	Thoughts       string                   `json:"thoughts"`
	CitationLookup *approach.CitationLookup `json:"citation_lookup"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for chat.
// With ?format=html the answer is also rendered from markdown.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.chatService.ProcessChat(ctx, service.ChatRequest{
		Approach:  req.Approach,
		History:   req.History,
		Overrides: req.Overrides,
	})
	if err != nil {
		h.handleServiceError(w, ctx, err, "Failed to process chat request")
		return
	}

	resp := ChatResponse{
		DataPoints:     result.DataPoints,
		Answer:         result.Answer,
		Thoughts:       result.Thoughts,
		CitationLookup: result.CitationLookup,
	}
	if r.URL.Query().Get("format") == "html" {
		html, err := h.markdown.Render(result.Answer)
		if err != nil {
			logger.WarnContext(ctx, "failed to render answer markdown", "error", err)
		} else {
			resp.AnswerHTML = html
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
func (h *ChatHandler) handleServiceError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "service error", "error", err)

	var validationErr *approach.ValidationError
	if errors.As(err, &validationErr) {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", validationErr.Error()))
		return
	}

	if errors.Is(err, approach.ErrInvalidInput) {
		h.writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if errors.Is(err, approach.ErrExternalService) {
		h.writeError(w, http.StatusBadGateway, "External service error")
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		h.writeError(w, http.StatusGatewayTimeout, "Request timed out")
		return
	}

	h.writeError(w, http.StatusInternalServerError, defaultMsg)
}

// writeError writes an error response.
func (h *ChatHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
