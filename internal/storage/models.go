package storage

import "errors"

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// ChunkRecord is the stored text of one indexed chunk.
type ChunkRecord struct {
	ID         string // search index point id
	SourceFile string // original document, e.g. "handbook.pdf"
	ChunkFile  string // chunk blob name, e.g. "handbook-3.json"
	PageNumber string
	Content    string
}
