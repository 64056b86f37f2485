package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestRepo(t *testing.T) *ChunkRepo {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewChunkRepo(db)
}

func TestChunkRepo_InsertAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	chunk := &ChunkRecord{
		ID:         "5c56c793-69f3-4fbf-87e6-c4bf54c28c26",
		SourceFile: "handbook.pdf",
		ChunkFile:  "handbook-3.json",
		PageNumber: "3",
		Content:    "Employees accrue leave monthly.",
	}
	if err := repo.Insert(ctx, chunk); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := repo.GetByID(ctx, chunk.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if *got != *chunk {
		t.Errorf("GetByID() = %+v, want %+v", got, chunk)
	}
}

func TestChunkRepo_Insert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		chunk   *ChunkRecord
		wantErr bool
	}{
		{
			name:  "without page number",
			chunk: &ChunkRecord{ID: "a", SourceFile: "a.txt", ChunkFile: "a-0.json", Content: "x"},
		},
		{
			name:    "duplicate id",
			chunk:   &ChunkRecord{ID: "a", SourceFile: "a.txt", ChunkFile: "a-0.json", Content: "x"},
			wantErr: true,
		},
		{
			name:    "missing id",
			chunk:   &ChunkRecord{SourceFile: "b.txt", ChunkFile: "b-0.json", Content: "y"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Insert(ctx, tt.chunk)
			if (err != nil) != tt.wantErr {
				t.Errorf("Insert() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChunkRepo_GetByID_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}
