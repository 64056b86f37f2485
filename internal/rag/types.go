package rag

// RetrievedChunk is one search hit with the fields the prompt and the
// citations need.
type RetrievedChunk struct {
	// PointID is the search index point id.
	PointID string
	// SourceFile is the original document, e.g. "handbook.pdf".
	SourceFile string
	// ChunkFile names the chunk blob and keys its citation.
	ChunkFile string
	// PageNumber is empty when the document has no pages.
	PageNumber string
	// Content is the chunk text.
	Content string
	// ScoreVector is the vector similarity score.
	ScoreVector float32
	// ScoreLexical is the query term overlap score.
	ScoreLexical float32
	// ScoreFinal is the combined score used for ranking.
	ScoreFinal float32
}

// citationKey names the chunk in the prompt and in the citation lookup.
func (c RetrievedChunk) citationKey() string {
	switch {
	case c.ChunkFile != "":
		return c.ChunkFile
	case c.SourceFile != "":
		return c.SourceFile
	default:
		return c.PointID
	}
}
