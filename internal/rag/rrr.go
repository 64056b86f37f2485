// Package rag answers questions from the internal document index with a
// read-retrieve-read flow: search the index, then ground the completion in
// the retrieved chunks.
package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_rag.go -package=mocks compare-ai/internal/rag Embedder,Completer,Translator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"

	"compare-ai/internal/approach"
	"compare-ai/internal/config"
	"compare-ai/internal/contextutil"
	"compare-ai/internal/llm"
	"compare-ai/internal/messagebuilder"
	"compare-ai/internal/storage"
	"compare-ai/internal/vectorstore"
)

const (
	defaultTop            = 5
	maxTop                = 20
	defaultResponseLength = 1024
	temperature           = 0.3
)

// Embedder turns a search query into a vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// Completer generates the grounded answer.
type Completer interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Translator brings queries into the language of the index.
type Translator interface {
	Detect(ctx context.Context, text string) (string, error)
	Translate(ctx context.Context, text, to string) (string, error)
}

// Dependencies are the collaborators of ReadRetrieveRead.
// Chunks and Translator are optional; Tokens defaults to an estimate.
type Dependencies struct {
	Embedder   Embedder
	Store      vectorstore.VectorStore
	Chunks     storage.ChunkStore
	Completer  Completer
	Translator Translator
	Tokens     messagebuilder.TokenCounter
}

// ReadRetrieveRead implements approach.Approach over the internal index.
type ReadRetrieveRead struct {
	cfg  *config.Config
	deps Dependencies
}

// NewReadRetrieveRead creates the approach.
func NewReadRetrieveRead(cfg *config.Config, deps Dependencies) (*ReadRetrieveRead, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if deps.Embedder == nil || deps.Store == nil || deps.Completer == nil {
		return nil, errors.New("embedder, vector store and completer are required")
	}
	if deps.Tokens == nil {
		deps.Tokens = messagebuilder.ApproxCounter{}
	}
	return &ReadRetrieveRead{cfg: cfg, deps: deps}, nil
}

// NewFactory binds deps so the approach can be built from configuration alone.
func NewFactory(deps Dependencies) approach.Factory {
	return func(cfg *config.Config) (approach.Approach, error) {
		rrr, err := NewReadRetrieveRead(cfg, deps)
		if err != nil {
			return nil, err
		}
		return rrr, nil
	}
}

// Run implements approach.Approach.
func (r *ReadRetrieveRead) Run(ctx context.Context, history approach.History, overrides approach.Overrides) (approach.Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	query, err := history.LastUser()
	if err != nil {
		return approach.Result{}, err
	}
	top, err := overrides.Int(approach.OverrideTop, defaultTop)
	if err != nil {
		return approach.Result{}, err
	}
	if top < 0 {
		return approach.Result{}, &approach.ValidationError{Field: approach.OverrideTop, Message: "must be positive"}
	}
	if top > maxTop {
		top = maxTop
	}
	responseLength, err := overrides.Int(approach.OverrideResponseLength, defaultResponseLength)
	if err != nil {
		return approach.Result{}, err
	}
	if responseLength < 0 {
		return approach.Result{}, &approach.ValidationError{Field: approach.OverrideResponseLength, Message: "must be positive"}
	}
	budget, err := llm.PromptBudget(r.cfg.ModelName, responseLength)
	if err != nil {
		logger.WarnContext(ctx, "using default token limit", "model", r.cfg.ModelName, "error", err)
	}
	if budget < llm.CompletionReserve {
		return approach.Result{}, &approach.ValidationError{
			Field:   approach.OverrideResponseLength,
			Message: fmt.Sprintf("%d leaves no room for the prompt in the %s context window", responseLength, r.cfg.ModelName),
		}
	}
	userPersona, err := overrides.String(approach.OverrideUserPersona, "")
	if err != nil {
		return approach.Result{}, err
	}
	systemPersona, err := overrides.String(approach.OverrideSystemPersona, "")
	if err != nil {
		return approach.Result{}, err
	}

	searchQuery := r.searchQuery(ctx, query)
	logger.InfoContext(ctx, "RAG query started", "query_length", len(query), "translated", searchQuery != query, "top", top)

	vector, err := r.deps.Embedder.EmbedQuery(ctx, searchQuery)
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return approach.Result{}, approach.ExternalError(err, "failed to embed query")
	}

	results, err := r.deps.Store.Search(ctx, r.cfg.SearchCollection, vector, top, nil)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search vector store", "error", err)
		return approach.Result{}, approach.ExternalError(err, "failed to search index")
	}

	chunks := r.loadChunks(ctx, results)
	logger.InfoContext(ctx, "chunks retrieved", "search_results", len(results), "chunks", len(chunks))
	if len(chunks) == 0 {
		return approach.Result{
			DataPoints:     []string{},
			Answer:         noResultsAnswer,
			Thoughts:       thoughtsLabel(searchQuery),
			CitationLookup: approach.NewCitationLookup(),
		}, nil
	}

	rerank(searchQuery, chunks)

	citations := approach.NewCitationLookup()
	dataPoints := make([]string, 0, len(chunks))
	for _, c := range chunks {
		citations.Set(c.citationKey(), approach.Citation{
			Citation:   r.citationURL(c.citationKey()),
			SourcePath: c.SourceFile,
			PageNumber: c.PageNumber,
		})
		dataPoints = append(dataPoints, dataPoint(c))
	}

	messages := r.buildMessages(
		renderSystemPrompt(systemPersona, userPersona, r.cfg.QueryTermLanguage),
		history,
		userPrompt(query, dataPoints),
		budget,
	)

	answer, err := r.deps.Completer.ChatWithMessages(ctx, messages, llm.ChatParams{
		Model:        r.cfg.ModelName,
		DeploymentID: r.cfg.ChatDeployment,
		MaxTokens:    responseLength,
		Temperature:  temperature,
		N:            1,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		return approach.Result{}, approach.ExternalError(err, "failed to get answer from LLM")
	}

	logger.InfoContext(ctx, "RAG query completed", "chunks_used", len(chunks), "answer_length", len(answer))

	return approach.Result{
		DataPoints:     dataPoints,
		Answer:         answer,
		Thoughts:       thoughtsLabel(searchQuery) + llm.FormatTranscript(messages),
		CitationLookup: citations,
	}, nil
}

// searchQuery translates query into the index language when a translator is
// configured. Translation failures fall back to the original query.
func (r *ReadRetrieveRead) searchQuery(ctx context.Context, query string) string {
	target := r.cfg.TargetTranslationLanguage
	if r.deps.Translator == nil || target == "" {
		return query
	}
	logger := contextutil.LoggerFromContext(ctx)

	lang, err := r.deps.Translator.Detect(ctx, query)
	if err != nil {
		logger.WarnContext(ctx, "language detection failed, searching untranslated", "error", err)
		return query
	}
	if sameLanguage(lang, target) {
		return query
	}

	translated, err := r.deps.Translator.Translate(ctx, query, target)
	if err != nil {
		logger.WarnContext(ctx, "translation failed, searching untranslated", "from", lang, "to", target, "error", err)
		return query
	}
	logger.DebugContext(ctx, "query translated", "from", lang, "to", target)
	return translated
}

// sameLanguage compares primary language subtags, so "en" matches "en-US".
func sameLanguage(a, b string) bool {
	primary := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		if i := strings.IndexAny(s, "-_"); i >= 0 {
			s = s[:i]
		}
		return s
	}
	return primary(a) == primary(b)
}

// loadChunks reads the mapped payload fields of each hit. Content missing
// from the payload is loaded from the chunk store; hits without content
// are skipped.
func (r *ReadRetrieveRead) loadChunks(ctx context.Context, results []vectorstore.SearchResult) []RetrievedChunk {
	logger := contextutil.LoggerFromContext(ctx)
	fields := r.cfg.Fields

	chunks := make([]RetrievedChunk, 0, len(results))
	for i, result := range results {
		chunk := RetrievedChunk{
			PointID:     result.PointID,
			SourceFile:  payloadString(result.Meta[fields.SourceFile]),
			ChunkFile:   payloadString(result.Meta[fields.ChunkFile]),
			PageNumber:  payloadString(result.Meta[fields.PageNumber]),
			Content:     payloadString(result.Meta[fields.Content]),
			ScoreVector: result.Score,
		}

		if chunk.Content == "" && r.deps.Chunks != nil {
			stored, err := r.deps.Chunks.GetByID(ctx, result.PointID)
			if err != nil {
				logger.WarnContext(ctx, "failed to fetch chunk text", "chunk_id", result.PointID, "error", err)
				continue
			}
			chunk.Content = stored.Content
			if chunk.SourceFile == "" {
				chunk.SourceFile = stored.SourceFile
			}
			if chunk.ChunkFile == "" {
				chunk.ChunkFile = stored.ChunkFile
			}
			if chunk.PageNumber == "" {
				chunk.PageNumber = stored.PageNumber
			}
		}
		if chunk.Content == "" {
			logger.WarnContext(ctx, "search hit has no content", "chunk_id", result.PointID)
			continue
		}

		logger.DebugContext(ctx, "retrieved chunk",
			"rank", i+1,
			"score", result.Score,
			"source_file", chunk.SourceFile,
			"chunk_file", chunk.ChunkFile,
			"text_length", len(chunk.Content),
		)
		chunks = append(chunks, chunk)
	}
	return chunks
}

// payloadString flattens a payload value. Lists contribute their first element.
func payloadString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		if len(val) == 0 {
			return ""
		}
		return payloadString(val[0])
	default:
		return fmt.Sprint(val)
	}
}

// citationURL points at the chunk blob in content storage.
func (r *ReadRetrieveRead) citationURL(chunkFile string) string {
	if r.cfg.ContentStorageURL == "" {
		return path.Join(r.cfg.ContentStorageContainer, chunkFile)
	}
	u, err := url.JoinPath(r.cfg.ContentStorageURL, r.cfg.ContentStorageContainer, chunkFile)
	if err != nil {
		return path.Join(r.cfg.ContentStorageContainer, chunkFile)
	}
	return u
}

// buildMessages lays out the system prompt, the earlier turns oldest first and
// the sourced question, dropping the oldest turns to fit budget. The sources
// are last in the prompt, so any further cut loses sources before the question.
func (r *ReadRetrieveRead) buildMessages(systemPrompt string, history approach.History, prompt string, budget int) []llm.Message {
	builder := messagebuilder.New(systemPrompt, r.cfg.ModelName, r.deps.Tokens)
	for _, turn := range history[:len(history)-1] {
		if turn.User != "" {
			builder.AppendMessage(llm.RoleUser, turn.User)
		}
		if turn.Bot != "" {
			builder.AppendMessage(llm.RoleAssistant, turn.Bot)
		}
	}
	builder.AppendMessage(llm.RoleUser, prompt)
	return builder.Fit(budget)
}
