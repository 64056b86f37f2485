package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks compare-ai/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// Insert stores a chunk. chunk.ID must match the search index point id.
	Insert(ctx context.Context, chunk *ChunkRecord) error
	// GetByID gets a chunk by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*ChunkRecord, error)
}

// ChunkRepo implements ChunkStore on SQLite.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// Insert stores a chunk. chunk.ID must be set.
func (r *ChunkRepo) Insert(ctx context.Context, chunk *ChunkRecord) error {
	if chunk.ID == "" {
		return fmt.Errorf("chunk id is required")
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO chunks (id, source_file, chunk_file, page_number, content) VALUES (?, ?, ?, ?, ?)",
		chunk.ID, chunk.SourceFile, chunk.ChunkFile, chunk.PageNumber, chunk.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

// GetByID gets a chunk by its ID. Returns ErrNotFound if not found.
func (r *ChunkRepo) GetByID(ctx context.Context, id string) (*ChunkRecord, error) {
	var (
		chunk ChunkRecord
		page  sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, source_file, chunk_file, page_number, content FROM chunks WHERE id = ?",
		id,
	).Scan(&chunk.ID, &chunk.SourceFile, &chunk.ChunkFile, &page, &chunk.Content)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk: %w", err)
	}
	chunk.PageNumber = page.String

	return &chunk, nil
}
