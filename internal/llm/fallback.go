package llm

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// ExtractiveAnswerer answers by lifting the context sentences that share
// the most terms with the question. Used when no completion provider is
// configured; the output is deterministic.
type ExtractiveAnswerer struct {
	maxSentences int
}

func NewExtractiveAnswerer() *ExtractiveAnswerer {
	return &ExtractiveAnswerer{maxSentences: 4}
}

var wordRe = regexp.MustCompile(`[a-zA-Z0-9]+`)

func (e *ExtractiveAnswerer) Answer(_ context.Context, req AnswerRequest) (string, error) {
	questionTerms := termSet(req.Question)
	if len(questionTerms) == 0 || strings.TrimSpace(req.Context) == "" {
		return "I don't have information about this in my knowledge base.", nil
	}

	type scored struct {
		index    int
		sentence string
		score    int
	}

	var candidates []scored
	for i, sentence := range splitSentences(req.Context) {
		score := 0
		for term := range termSet(sentence) {
			if questionTerms[term] {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{index: i, sentence: sentence, score: score})
		}
	}

	if len(candidates) == 0 {
		return "I don't have information about this in my knowledge base.", nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > e.maxSentences {
		candidates = candidates[:e.maxSentences]
	}

	// Present the picked sentences in document order.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].index < candidates[j].index
	})

	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		parts = append(parts, strings.TrimSpace(c.sentence))
	}
	return "Based on your documents: " + strings.Join(parts, " "), nil
}

func termSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len(w) > 2 {
			set[w] = true
		}
	}
	return set
}

func splitSentences(text string) []string {
	var out []string
	for _, s := range regexp.MustCompile(`[.!?\n]+`).Split(text, -1) {
		s = strings.TrimSpace(s)
		if len(s) > 10 {
			out = append(out, s)
		}
	}
	return out
}
