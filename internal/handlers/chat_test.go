package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"compare-ai/internal/approach"
	"compare-ai/internal/service"
	"compare-ai/internal/service/mocks"

	"go.uber.org/mock/gomock"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNewChatHandler(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockChatService := mocks.NewMockChatService(ctrl)
	handler := NewChatHandler(mockChatService)

	if handler.chatService != mockChatService {
		t.Error("NewChatHandler() chatService not set correctly")
	}
	if handler.markdown == nil {
		t.Error("NewChatHandler() markdown renderer not set")
	}
}

func TestChatHandler_ServeHTTP(t *testing.T) {
	lookup := approach.NewCitationLookup()
	lookup.Set("b.pdf", approach.Citation{Citation: "https://store/content/b.pdf", SourcePath: "b.pdf", PageNumber: "1"})
	lookup.Set("a.pdf", approach.Citation{Citation: "https://store/content/a.pdf", SourcePath: "a.pdf", PageNumber: "2"})

	compareBody := `{"approach":"compare","history":[{"bot":"web"},{"user":"q"}],"overrides":{"response_length":256}}`
	wantReq := service.ChatRequest{
		Approach:  "compare",
		History:   approach.History{{Bot: "web"}, {User: "q"}},
		Overrides: approach.Overrides{"response_length": float64(256)},
	}

	tests := []struct {
		name          string
		method        string
		target        string
		body          string
		mockSetup     func(*mocks.MockChatService)
		wantStatus    int
		checkResponse func(t *testing.T, body string)
	}{
		{
			name:   "successful POST request",
			method: http.MethodPost,
			target: "/api/chat",
			body:   compareBody,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().ProcessChat(gomock.Any(), wantReq).Return(approach.Result{
					Answer:         "Both agree. [File1] [File2]",
					Thoughts:       "Searched for:<br>A Comparative Analysis",
					CitationLookup: lookup,
				}, nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body string) {
				var resp ChatResponse
				if err := json.Unmarshal([]byte(body), &resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if resp.Answer != "Both agree. [File1] [File2]" || resp.AnswerHTML != "" {
					t.Errorf("unexpected response %+v", resp)
				}
				if strings.Index(body, `"b.pdf"`) > strings.Index(body, `"a.pdf"`) {
					t.Errorf("citation order not preserved: %s", body)
				}
				if !strings.Contains(body, `"data_points":null`) {
					t.Errorf("data_points should be null: %s", body)
				}
			},
		},
		{
			name:   "html format renders answer",
			method: http.MethodPost,
			target: "/api/chat?format=html",
			body:   compareBody,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().ProcessChat(gomock.Any(), gomock.Any()).Return(approach.Result{Answer: "**Both** agree."}, nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body string) {
				var resp ChatResponse
				if err := json.Unmarshal([]byte(body), &resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if !strings.Contains(resp.AnswerHTML, "<strong>Both</strong>") {
					t.Errorf("answer_html = %q", resp.AnswerHTML)
				}
			},
		},
		{
			name:       "method not allowed",
			method:     http.MethodGet,
			target:     "/api/chat",
			mockSetup:  func(m *mocks.MockChatService) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "invalid JSON body",
			method:     http.MethodPost,
			target:     "/api/chat",
			body:       "{",
			mockSetup:  func(m *mocks.MockChatService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "validation error",
			method: http.MethodPost,
			target: "/api/chat",
			body:   compareBody,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().ProcessChat(gomock.Any(), gomock.Any()).
					Return(approach.Result{}, &approach.ValidationError{Field: "history", Message: "cannot be empty"})
			},
			wantStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, body string) {
				if !strings.Contains(body, "history") {
					t.Errorf("error should name the field: %s", body)
				}
			},
		},
		{
			name:   "wrapped validation error",
			method: http.MethodPost,
			target: "/api/chat",
			body:   compareBody,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().ProcessChat(gomock.Any(), gomock.Any()).
					Return(approach.Result{}, approach.WrapError(&approach.ValidationError{Field: "top", Message: "must be positive"}, "approach rrr failed"))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "external service error",
			method: http.MethodPost,
			target: "/api/chat",
			body:   compareBody,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().ProcessChat(gomock.Any(), gomock.Any()).
					Return(approach.Result{}, approach.ExternalError(errors.New("bad status 503"), "completion failed"))
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:   "deadline exceeded",
			method: http.MethodPost,
			target: "/api/chat",
			body:   compareBody,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().ProcessChat(gomock.Any(), gomock.Any()).
					Return(approach.Result{}, context.DeadlineExceeded)
			},
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:   "unexpected error",
			method: http.MethodPost,
			target: "/api/chat",
			body:   compareBody,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().ProcessChat(gomock.Any(), gomock.Any()).Return(approach.Result{}, errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockChatService := mocks.NewMockChatService(ctrl)
			tt.mockSetup(mockChatService)
			handler := NewChatHandler(mockChatService)

			req := httptest.NewRequest(tt.method, tt.target, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %v, want %v (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, w.Body.String())
			}
		})
	}
}

func TestMarkdownRenderer_DropsRawHTML(t *testing.T) {
	html, err := NewMarkdownRenderer().Render("hi <script>alert(1)</script>")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("raw HTML should not pass through: %q", html)
	}
}
