package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"compare-ai/internal/approach"
	"compare-ai/internal/compare"
	"compare-ai/internal/config"
	"compare-ai/internal/enrichment"
	"compare-ai/internal/handlers"
	"compare-ai/internal/http"
	"compare-ai/internal/llm"
	"compare-ai/internal/messagebuilder"
	"compare-ai/internal/rag"
	"compare-ai/internal/service"
	"compare-ai/internal/storage"
	"compare-ai/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers questions from indexed enterprise documents and explains
// how those answers differ from a web chat answer.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Compare AI API
//   description: |
//     Retrieval-augmented chat over indexed documents, plus a comparative
//     approach that contrasts the internal answer with a Bing Chat answer.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Chunk database backs citations when the index payload lacks content
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)
	chunkRepo := storage.NewChunkRepo(db)

	vectorStore, err := vectorstore.NewQdrantStore(cfg.SearchURL, cfg.SearchAPIKey)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	if err := vectorStore.ValidateCollection(ctx, cfg.SearchCollection, cfg.SearchVectorSize); err != nil {
		// The index is populated out of band; serve anyway and let health report it.
		slog.Warn("Search collection not ready", "collection", cfg.SearchCollection, "error", err)
	} else {
		slog.Info("Search collection ready", "collection", cfg.SearchCollection, "vector_size", cfg.SearchVectorSize)
	}

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.OpenAIServiceKey, cfg.ModelName, cfg.OpenAIAPIVersion)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.OpenAIServiceKey, cfg.EscapedEmbeddingModel(), cfg.SearchVectorSize)

	deps := rag.Dependencies{
		Embedder:  embedder,
		Store:     vectorStore,
		Chunks:    chunkRepo,
		Completer: llmClient,
		Tokens:    messagebuilder.NewTiktokenCounter(),
	}
	if cfg.EnrichmentEnabled() {
		deps.Translator = enrichment.NewClient(cfg.EnrichmentEndpoint, cfg.EnrichmentKey)
		slog.Info("Query translation enabled", "endpoint", cfg.EnrichmentEndpoint, "target", cfg.TargetTranslationLanguage)
	}

	newRRR := rag.NewFactory(deps)
	rrr, err := newRRR(cfg)
	if err != nil {
		log.Fatalf("Failed to create read-retrieve-read approach: %v", err)
	}
	comparative := compare.NewCompare(cfg, newRRR, llmClient, deps.Tokens)

	chatService := service.NewChatService(map[string]approach.Approach{
		"rrr":     rrr,
		"compare": comparative,
	})
	slog.Info("Approaches registered", "approaches", []string{"rrr", "compare"})

	router := http.NewRouter(&http.Deps{
		ChatService:   chatService,
		HealthHandler: handlers.NewHealthHandler(vectorStore, db, cfg.SearchCollection),
	})

	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting API server", "addr", addr)
		slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.ModelName, "deployment", cfg.ChatDeployment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("API server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
