package rag

import (
	"sort"
	"strings"
	"unicode"
)

const (
	lexicalLengthScale = float32(10.0)
	maxLexicalScore    = float32(0.4)
	titleMatchBonus    = float32(0.1)
)

var lexicalStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {},
	"or": {}, "the": {}, "to": {}, "was": {}, "were": {}, "with": {}, "what": {}, "which": {},
}

// rerank scores each chunk against the query and sorts best first.
// Chunks with equal scores keep their search order.
func rerank(query string, chunks []RetrievedChunk) {
	for i := range chunks {
		chunks[i].ScoreLexical = lexicalScore(query, chunks[i].Content, chunks[i].SourceFile)
		chunks[i].ScoreFinal = chunks[i].ScoreVector + chunks[i].ScoreLexical
	}
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].ScoreFinal > chunks[j].ScoreFinal
	})
}

// lexicalScore computes a lightweight lexical relevance score for a chunk relative to a query.
// The score is normalized to remain in a predictable range so it can be blended with vector scores.
// Query terms found in the source file name earn a small bonus.
func lexicalScore(query, content, sourceFile string) float32 {
	queryTokens := filterStopwords(tokenize(query))
	if len(queryTokens) == 0 {
		return 0
	}

	chunkTokens := tokenize(content)
	if len(chunkTokens) == 0 {
		return 0
	}

	chunkFreq := make(map[string]int, len(chunkTokens))
	for _, token := range chunkTokens {
		chunkFreq[token]++
	}

	var rawMatches int
	for _, token := range queryTokens {
		rawMatches += chunkFreq[token]
	}

	score := (float32(rawMatches) / (1 + float32(len(chunkTokens)))) * lexicalLengthScale

	if titleTokens := tokenize(sourceFile); len(titleTokens) > 0 {
		titleSet := make(map[string]struct{}, len(titleTokens))
		for _, token := range titleTokens {
			titleSet[token] = struct{}{}
		}
		var titleMatches int
		for _, token := range queryTokens {
			if _, ok := titleSet[token]; ok {
				titleMatches++
			}
		}
		score += float32(titleMatches) * titleMatchBonus
	}

	if score > maxLexicalScore {
		return maxLexicalScore
	}
	return score
}

func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	tokens := strings.Fields(builder.String())
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

func filterStopwords(tokens []string) []string {
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, isStop := lexicalStopwords[token]; isStop {
			continue
		}
		result = append(result, token)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
