package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewEmbeddingsClient(t *testing.T) {
	client := NewEmbeddingsClient("http://localhost:8080/", "test-key", "test-model", 768)
	if client == nil {
		t.Fatal("NewEmbeddingsClient() returned nil")
	}
	if client.BaseURL != "http://localhost:8080" {
		t.Errorf("NewEmbeddingsClient() BaseURL = %v, want http://localhost:8080", client.BaseURL)
	}
	if client.ExpectedSize != 768 {
		t.Errorf("NewEmbeddingsClient() ExpectedSize = %v, want 768", client.ExpectedSize)
	}
}

func TestEmbeddingsClient_EmbedQuery(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		serverResp func(t *testing.T, w http.ResponseWriter, r *http.Request)
		wantErr    bool
		wantSize   int
	}{
		{
			name:  "successful embedding",
			query: "Hello",
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/v1/embeddings" {
					t.Errorf("expected /v1/embeddings, got %s", r.URL.Path)
				}
				var req EmbeddingsRequest
				_ = json.NewDecoder(r.Body).Decode(&req)
				if req.Model != "test-model" || len(req.Input) != 1 || req.Input[0] != "Hello" {
					t.Errorf("unexpected request: %+v", req)
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(EmbeddingsResponse{
					Data: []EmbeddingData{{Embedding: make([]float64, 4)}},
				})
			},
			wantSize: 4,
		},
		{
			name:    "empty query",
			query:   "  ",
			wantErr: true,
		},
		{
			name:  "size mismatch",
			query: "Hello",
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(EmbeddingsResponse{
					Data: []EmbeddingData{{Embedding: make([]float64, 3)}},
				})
			},
			wantErr: true,
		},
		{
			name:  "wrong embedding count",
			query: "Hello",
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(EmbeddingsResponse{})
			},
			wantErr: true,
		},
		{
			name:  "server error",
			query: "Hello",
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.serverResp == nil {
					t.Error("unexpected request")
					return
				}
				tt.serverResp(t, w, r)
			}))
			defer server.Close()

			client := NewEmbeddingsClient(server.URL, "test-key", "test-model", 4)
			vec, err := client.EmbedQuery(context.Background(), tt.query)

			if tt.wantErr {
				if err == nil {
					t.Errorf("EmbedQuery() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("EmbedQuery() unexpected error: %v", err)
			}
			if len(vec) != tt.wantSize {
				t.Errorf("EmbedQuery() size = %d, want %d", len(vec), tt.wantSize)
			}
		})
	}
}
