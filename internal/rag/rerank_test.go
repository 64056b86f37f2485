package rag

import (
	"math"
	"strings"
	"testing"
)

func TestLexicalScoreBasicMatch(t *testing.T) {
	query := "Project updates"
	chunk := "The project timeline lists recent updates for the project. These updates cover scope."
	score := lexicalScore(query, chunk, "planning-updates.pdf")

	if score <= 0 {
		t.Fatalf("expected score to be positive, got %f", score)
	}
	if score > maxLexicalScore {
		t.Fatalf("score should be clamped to maxLexicalScore, got %f", score)
	}
}

func TestLexicalScoreTitleBonus(t *testing.T) {
	query := "database"
	chunk := "General context without the keyword."
	score := lexicalScore(query, chunk, "architecture/database-layer.pdf")

	if math.Abs(float64(score-titleMatchBonus)) > 0.0001 {
		t.Fatalf("expected title bonus only (%f), got %f", titleMatchBonus, score)
	}
}

func TestLexicalScoreStopwordsRemoved(t *testing.T) {
	score := lexicalScore("the and of", "the and of", "")
	if score != 0 {
		t.Fatalf("expected score 0 when query tokens are only stopwords, got %f", score)
	}
}

func TestLexicalScoreNormalization(t *testing.T) {
	chunk := "project " + strings.Repeat(" filler", 200)
	score := lexicalScore("project", chunk, "")

	if score <= 0 {
		t.Fatalf("expected normalized score to stay positive, got %f", score)
	}
	if score > maxLexicalScore {
		t.Fatalf("expected score to be clamped to %f, got %f", maxLexicalScore, score)
	}
}

func TestRerank(t *testing.T) {
	chunks := []RetrievedChunk{
		{PointID: "a", Content: "Unrelated text about lunch menus.", ScoreVector: 0.80},
		{PointID: "b", Content: "Leave policy: employees accrue leave monthly.", ScoreVector: 0.78},
		{PointID: "c", Content: "Unrelated text about parking.", ScoreVector: 0.80},
	}

	rerank("leave policy", chunks)

	if chunks[0].PointID != "b" {
		t.Fatalf("expected lexical match to rank first, got %q", chunks[0].PointID)
	}
	if chunks[1].PointID != "a" || chunks[2].PointID != "c" {
		t.Errorf("ties should keep search order, got %q then %q", chunks[1].PointID, chunks[2].PointID)
	}
	for _, c := range chunks {
		if c.ScoreFinal != c.ScoreVector+c.ScoreLexical {
			t.Errorf("chunk %s: final %f != vector %f + lexical %f", c.PointID, c.ScoreFinal, c.ScoreVector, c.ScoreLexical)
		}
	}
}
