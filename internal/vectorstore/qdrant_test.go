package vectorstore

import (
	"context"
	"reflect"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/protobuf/proto"
)

func TestGrpcEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantErr  bool
		wantHost string
		wantPort int
		wantTLS  bool
	}{
		{
			name:     "valid URL",
			urlStr:   "http://localhost:6333",
			wantHost: "localhost",
			wantPort: 6334, // gRPC port is HTTP port + 1
		},
		{
			name:     "URL with custom port",
			urlStr:   "http://localhost:9000",
			wantHost: "localhost",
			wantPort: 9001,
		},
		{
			name:    "invalid URL",
			urlStr:  "://invalid",
			wantErr: true,
		},
		{
			name:     "URL without port",
			urlStr:   "http://qdrant.internal",
			wantHost: "qdrant.internal",
			wantPort: 6334,
		},
		{
			name:     "URL without hostname",
			urlStr:   "http://:6333",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:     "https enables TLS",
			urlStr:   "https://search.example.com:6333",
			wantHost: "search.example.com",
			wantPort: 6334,
			wantTLS:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, useTLS, err := grpcEndpoint(tt.urlStr)
			if tt.wantErr {
				if err == nil {
					t.Error("grpcEndpoint() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("grpcEndpoint() unexpected error: %v", err)
			}
			if host != tt.wantHost || port != tt.wantPort || useTLS != tt.wantTLS {
				t.Errorf("grpcEndpoint() = %s, %d, %v; want %s, %d, %v", host, port, useTLS, tt.wantHost, tt.wantPort, tt.wantTLS)
			}
		})
	}
}

func TestNewQdrantStore_InvalidURL(t *testing.T) {
	_, err := NewQdrantStore("://invalid", "")
	if err == nil {
		t.Error("NewQdrantStore() with invalid URL should return error")
	}
}

func TestQdrantStore_Search_InvalidInput(t *testing.T) {
	// Validation runs before the client is touched.
	store := &QdrantStore{}
	ctx := context.Background()

	if _, err := store.Search(ctx, "test-collection", []float32{1.0, 2.0}, 0, nil); err == nil {
		t.Error("Search() with k=0 should return error")
	}
	if _, err := store.Search(ctx, "test-collection", []float32{1.0, 2.0}, -1, nil); err == nil {
		t.Error("Search() with k=-1 should return error")
	}
	if _, err := store.Search(ctx, "test-collection", nil, 3, nil); err == nil {
		t.Error("Search() with empty vector should return error")
	}
}

func TestBuildFilter(t *testing.T) {
	if f := buildFilter(nil); f != nil {
		t.Errorf("buildFilter(nil) = %v, want nil", f)
	}
	if f := buildFilter(map[string]any{"skip": 1.5}); f != nil {
		t.Errorf("buildFilter() with only unsupported values = %v, want nil", f)
	}

	got := buildFilter(map[string]any{
		"file_uri": "report.pdf",
		"pages":    int64(3),
		"ignored":  []string{"x"},
		"archived": false,
	})
	want := &qdrant.Filter{Must: []*qdrant.Condition{
		qdrant.NewMatchBool("archived", false),
		qdrant.NewMatchKeyword("file_uri", "report.pdf"),
		qdrant.NewMatchInt("pages", 3),
	}}
	if !proto.Equal(got, want) {
		t.Errorf("buildFilter() = %v, want %v", got, want)
	}
}

func TestPointID(t *testing.T) {
	tests := []struct {
		name string
		id   *qdrant.PointId
		want string
	}{
		{"nil", nil, ""},
		{"uuid", qdrant.NewID("5c56c793-69f3-4fbf-87e6-c4bf54c28c26"), "5c56c793-69f3-4fbf-87e6-c4bf54c28c26"},
		{"numeric", qdrant.NewIDNum(42), "42"},
	}
	for _, tt := range tests {
		if got := pointID(tt.id); got != tt.want {
			t.Errorf("%s: pointID() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	result := convertPayloadToMap(nil)
	if result == nil || len(result) != 0 {
		t.Errorf("convertPayloadToMap(nil) = %v, want empty map", result)
	}

	payload := qdrant.NewValueMap(map[string]any{
		"file_uri": "report.pdf",
		"pages":    2,
		"score":    0.5,
		"draft":    true,
		"tags":     []any{"a", "b"},
	})
	got := convertPayloadToMap(payload)
	want := map[string]any{
		"file_uri": "report.pdf",
		"pages":    int64(2),
		"score":    0.5,
		"draft":    true,
		"tags":     []any{"a", "b"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("convertPayloadToMap() = %#v, want %#v", got, want)
	}
}
