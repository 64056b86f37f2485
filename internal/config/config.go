package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// FieldNames maps logical document fields to the payload keys used by the search index.
type FieldNames struct {
	SourceFile string
	Content    string
	PageNumber string
	ChunkFile  string
}

// Config holds all configuration for the application.
// It is built once by Load and shared read-only by every approach.
type Config struct {
	OpenAIServiceName string
	OpenAIServiceKey  string
	OpenAIAPIVersion  string
	ChatDeployment    string
	ModelName         string
	ModelVersion      string
	LLMBaseURL        string

	EmbeddingBaseURL     string
	TargetEmbeddingModel string

	SearchURL        string
	SearchAPIKey     string
	SearchCollection string
	SearchVectorSize int
	Fields           FieldNames

	ContentStorageURL       string
	ContentStorageContainer string
	DBPath                  string

	QueryTermLanguage         string
	TargetTranslationLanguage string

	EnrichmentAppServiceName string
	EnrichmentEndpoint       string
	EnrichmentKey            string

	IsGovCloudDeployment bool

	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

var unsafeModelChars = regexp.MustCompile(`[^a-zA-Z0-9_\-.]`)

// EscapedEmbeddingModel returns the target embedding model name with every
// character outside [a-zA-Z0-9_-.] replaced by an underscore.
func (c *Config) EscapedEmbeddingModel() string {
	return unsafeModelChars.ReplaceAllString(c.TargetEmbeddingModel, "_")
}

// EnrichmentEnabled reports whether query translation can be used.
func (c *Config) EnrichmentEnabled() bool {
	return c.EnrichmentEndpoint != "" && c.EnrichmentKey != ""
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	isGov, err := strconv.ParseBool(getEnv("IS_GOV_CLOUD_DEPLOYMENT", "false"))
	if err != nil {
		return nil, fmt.Errorf("IS_GOV_CLOUD_DEPLOYMENT must be a boolean: %w", err)
	}

	cfg := &Config{
		OpenAIServiceName: getEnv("AZURE_OPENAI_SERVICE", ""),
		OpenAIServiceKey:  getEnv("AZURE_OPENAI_SERVICE_KEY", ""),
		OpenAIAPIVersion:  getEnv("AZURE_OPENAI_API_VERSION", "2024-02-01"),
		ChatDeployment:    getEnv("AZURE_OPENAI_CHATGPT_DEPLOYMENT", ""),
		ModelName:         getEnv("AZURE_OPENAI_CHATGPT_MODEL_NAME", "gpt-35-turbo"),
		ModelVersion:      getEnv("AZURE_OPENAI_CHATGPT_MODEL_VERSION", "0613"),
		LLMBaseURL:        getEnv("LLM_BASE_URL", ""),

		EmbeddingBaseURL:     getEnv("EMBEDDING_BASE_URL", ""),
		TargetEmbeddingModel: getEnv("TARGET_EMBEDDINGS_MODEL", "azure-openai_text-embedding-ada-002"),

		SearchURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		SearchAPIKey:     getEnv("QDRANT_API_KEY", ""),
		SearchCollection: getEnv("QDRANT_COLLECTION", "vector-index"),
		Fields: FieldNames{
			SourceFile: getEnv("KB_FIELDS_SOURCEFILE", "file_uri"),
			Content:    getEnv("KB_FIELDS_CONTENT", "content"),
			PageNumber: getEnv("KB_FIELDS_PAGENUMBER", "pages"),
			ChunkFile:  getEnv("KB_FIELDS_CHUNKFILE", "chunk_file"),
		},

		ContentStorageURL:       getEnv("AZURE_BLOB_STORAGE_ENDPOINT", "http://localhost:10000/devstoreaccount1"),
		ContentStorageContainer: getEnv("AZURE_BLOB_STORAGE_CONTAINER", "content"),
		DBPath:                  getEnv("DB_PATH", "./data/compare-ai.db"),

		QueryTermLanguage:         getEnv("QUERY_TERM_LANGUAGE", "English"),
		TargetTranslationLanguage: getEnv("TARGET_TRANSLATION_LANGUAGE", "en"),

		EnrichmentAppServiceName: getEnv("ENRICHMENT_APPSERVICE_NAME", ""),
		EnrichmentEndpoint:       getEnv("ENRICHMENT_ENDPOINT", ""),
		EnrichmentKey:            getEnv("ENRICHMENT_KEY", ""),

		IsGovCloudDeployment: isGov,

		APIPort:   getEnv("API_PORT", "9000"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}

	// Derive service URLs the same way the hosted deployment names them
	if cfg.LLMBaseURL == "" {
		if cfg.OpenAIServiceName == "" {
			return nil, fmt.Errorf("AZURE_OPENAI_SERVICE or LLM_BASE_URL is required")
		}
		cfg.LLMBaseURL = fmt.Sprintf("https://%s.%s", cfg.OpenAIServiceName, cfg.openAIDomain())
	}
	if cfg.EmbeddingBaseURL == "" {
		if cfg.EnrichmentAppServiceName != "" {
			cfg.EmbeddingBaseURL = fmt.Sprintf("https://%s.%s", cfg.EnrichmentAppServiceName, cfg.appServiceDomain())
		} else {
			cfg.EmbeddingBaseURL = cfg.LLMBaseURL
		}
	}
	cfg.LLMBaseURL = strings.TrimRight(cfg.LLMBaseURL, "/")
	cfg.EmbeddingBaseURL = strings.TrimRight(cfg.EmbeddingBaseURL, "/")

	// Note: this must match the output size of the target embedding model,
	// otherwise every search fails with a dimension mismatch.
	vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.SearchVectorSize = vectorSize

	if cfg.ChatDeployment == "" {
		return nil, fmt.Errorf("AZURE_OPENAI_CHATGPT_DEPLOYMENT is required")
	}
	if cfg.EnrichmentEndpoint != "" && cfg.EnrichmentKey == "" {
		return nil, fmt.Errorf("ENRICHMENT_KEY is required when ENRICHMENT_ENDPOINT is set")
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

func (c *Config) openAIDomain() string {
	if c.IsGovCloudDeployment {
		return "openai.azure.us"
	}
	return "openai.azure.com"
}

func (c *Config) appServiceDomain() string {
	if c.IsGovCloudDeployment {
		return "azurewebsites.us"
	}
	return "azurewebsites.net"
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
