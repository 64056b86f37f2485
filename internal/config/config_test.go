package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// setEnv sets an environment variable, ignoring errors (for test setup)
func setEnv(key, value string) {
	_ = os.Setenv(key, value)
}

// unsetEnv unsets an environment variable, ignoring errors (for test cleanup)
func unsetEnv(key string) {
	_ = os.Unsetenv(key)
}

var envVars = []string{
	"AZURE_OPENAI_SERVICE", "AZURE_OPENAI_SERVICE_KEY", "AZURE_OPENAI_API_VERSION",
	"AZURE_OPENAI_CHATGPT_DEPLOYMENT", "AZURE_OPENAI_CHATGPT_MODEL_NAME", "AZURE_OPENAI_CHATGPT_MODEL_VERSION",
	"LLM_BASE_URL", "EMBEDDING_BASE_URL", "TARGET_EMBEDDINGS_MODEL",
	"QDRANT_URL", "QDRANT_API_KEY", "QDRANT_COLLECTION", "QDRANT_VECTOR_SIZE",
	"KB_FIELDS_SOURCEFILE", "KB_FIELDS_CONTENT", "KB_FIELDS_PAGENUMBER", "KB_FIELDS_CHUNKFILE",
	"AZURE_BLOB_STORAGE_ENDPOINT", "AZURE_BLOB_STORAGE_CONTAINER", "DB_PATH",
	"QUERY_TERM_LANGUAGE", "TARGET_TRANSLATION_LANGUAGE",
	"ENRICHMENT_APPSERVICE_NAME", "ENRICHMENT_ENDPOINT", "ENRICHMENT_KEY",
	"IS_GOV_CLOUD_DEPLOYMENT", "API_PORT", "LOG_LEVEL", "LOG_FORMAT",
}

// isolateEnv clears every config variable and moves into a directory without a .env file.
func isolateEnv(t *testing.T) {
	t.Helper()

	originalEnv := make(map[string]string)
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		unsetEnv(key)
	}

	originalWd, _ := os.Getwd()
	_ = os.Chdir(t.TempDir())

	t.Cleanup(func() {
		_ = os.Chdir(originalWd)
		for key, value := range originalEnv {
			if value != "" {
				setEnv(key, value)
			} else {
				unsetEnv(key)
			}
		}
	})
}

func setRequired() {
	setEnv("AZURE_OPENAI_SERVICE", "contoso")
	setEnv("AZURE_OPENAI_CHATGPT_DEPLOYMENT", "chat")
	setEnv("QDRANT_VECTOR_SIZE", "1536")
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name:     "valid config with all required fields",
			setupEnv: func(t *testing.T) { setRequired() },
			checkConfig: func(cfg *Config) bool {
				return cfg.ChatDeployment == "chat" &&
					cfg.SearchVectorSize == 1536 &&
					cfg.LLMBaseURL == "https://contoso.openai.azure.com"
			},
		},
		{
			name: "missing QDRANT_VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				setRequired()
				unsetEnv("QDRANT_VECTOR_SIZE")
			},
			wantErr: true,
		},
		{
			name: "invalid QDRANT_VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				setRequired()
				setEnv("QDRANT_VECTOR_SIZE", "invalid")
			},
			wantErr: true,
		},
		{
			name: "zero QDRANT_VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				setRequired()
				setEnv("QDRANT_VECTOR_SIZE", "0")
			},
			wantErr: true,
		},
		{
			name: "missing chat deployment",
			setupEnv: func(t *testing.T) {
				setRequired()
				unsetEnv("AZURE_OPENAI_CHATGPT_DEPLOYMENT")
			},
			wantErr: true,
		},
		{
			name: "missing service name and base URL",
			setupEnv: func(t *testing.T) {
				setRequired()
				unsetEnv("AZURE_OPENAI_SERVICE")
			},
			wantErr: true,
		},
		{
			name: "enrichment endpoint without key",
			setupEnv: func(t *testing.T) {
				setRequired()
				setEnv("ENRICHMENT_ENDPOINT", "https://translator.example")
			},
			wantErr: true,
		},
		{
			name: "invalid gov cloud flag",
			setupEnv: func(t *testing.T) {
				setRequired()
				setEnv("IS_GOV_CLOUD_DEPLOYMENT", "maybe")
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			setupEnv: func(t *testing.T) {
				setRequired()
				setEnv("LOG_LEVEL", "loud")
			},
			wantErr: true,
		},
		{
			name:     "default values for optional fields",
			setupEnv: func(t *testing.T) { setRequired() },
			checkConfig: func(cfg *Config) bool {
				return cfg.ModelName == "gpt-35-turbo" &&
					cfg.QueryTermLanguage == "English" &&
					cfg.TargetTranslationLanguage == "en" &&
					cfg.SearchURL == "http://localhost:6333" &&
					cfg.SearchCollection == "vector-index" &&
					cfg.Fields.Content == "content" &&
					cfg.Fields.ChunkFile == "chunk_file" &&
					cfg.EmbeddingBaseURL == cfg.LLMBaseURL &&
					cfg.LogLevel == slog.LevelInfo &&
					cfg.APIPort == "9000" &&
					!cfg.EnrichmentEnabled()
			},
		},
		{
			name: "gov cloud domains",
			setupEnv: func(t *testing.T) {
				setRequired()
				setEnv("IS_GOV_CLOUD_DEPLOYMENT", "true")
				setEnv("ENRICHMENT_APPSERVICE_NAME", "enrich")
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.LLMBaseURL == "https://contoso.openai.azure.us" &&
					cfg.EmbeddingBaseURL == "https://enrich.azurewebsites.us"
			},
		},
		{
			name: "explicit base URL wins",
			setupEnv: func(t *testing.T) {
				setRequired()
				unsetEnv("AZURE_OPENAI_SERVICE")
				setEnv("LLM_BASE_URL", "http://localhost:8080/")
				setEnv("LOG_LEVEL", "debug")
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.LLMBaseURL == "http://localhost:8080" &&
					cfg.LogLevel == slog.LevelDebug
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			tt.setupEnv(t)

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("Load() config validation failed: %+v", cfg)
			}
		})
	}
}

func TestLoad_CreatesDataDirectory(t *testing.T) {
	isolateEnv(t)
	setRequired()

	dbPath := filepath.Join(t.TempDir(), "test", "db.db")
	setEnv("DB_PATH", dbPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
		t.Errorf("Load() should create data directory: %v", err)
	}
	if cfg.DBPath != dbPath {
		t.Errorf("Load() DBPath = %v, want %v", cfg.DBPath, dbPath)
	}
}

func TestEscapedEmbeddingModel(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"azure-openai_text-embedding-ada-002", "azure-openai_text-embedding-ada-002"},
		{"BAAI/bge-small-en-v1.5", "BAAI_bge-small-en-v1.5"},
		{"sentence transformers:mini", "sentence_transformers_mini"},
	}

	for _, tt := range tests {
		cfg := &Config{TargetEmbeddingModel: tt.model}
		if got := cfg.EscapedEmbeddingModel(); got != tt.want {
			t.Errorf("EscapedEmbeddingModel(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestGetEnv(t *testing.T) {
	isolateEnv(t)

	setEnv("AZURE_OPENAI_SERVICE", "set-value")
	if got := getEnv("AZURE_OPENAI_SERVICE", "default"); got != "set-value" {
		t.Errorf("getEnv() = %q, want set-value", got)
	}

	setEnv("AZURE_OPENAI_SERVICE", "")
	if got := getEnv("AZURE_OPENAI_SERVICE", "default"); got != "default" {
		t.Errorf("getEnv() with empty value = %q, want default", got)
	}
}
