// Package chunking splits extracted document text into overlapping pieces
// sized for the embedding model. Chunk size scales with document length
// and paragraph boundaries are preserved where possible.
package chunking

import (
	"regexp"
	"strings"
)

// Chunk is one embeddable piece of a document.
type Chunk struct {
	Text     string
	Metadata map[string]interface{}
}

var (
	paragraphRe   = regexp.MustCompile(`\n\s*\n`)
	spaceRunRe    = regexp.MustCompile(` +`)
	sentenceEndRe = regexp.MustCompile(`[.!?]+`)
)

type Chunker struct {
	baseChunkSize    int
	baseChunkOverlap int
}

func NewChunker() *Chunker {
	return &Chunker{
		baseChunkSize:    1200,
		baseChunkOverlap: 120,
	}
}

// Split chunks the text using paragraph-aware splitting with sentence
// overlap between neighbours. Metadata is copied onto every chunk.
func (c *Chunker) Split(text string, metadata map[string]interface{}) []Chunk {
	cleaned := cleanText(text)
	if len(strings.TrimSpace(cleaned)) < 50 {
		limit := len(cleaned)
		if limit > 4000 {
			limit = 4000
		}
		return []Chunk{{Text: cleaned[:limit], Metadata: copyMetadata(metadata)}}
	}

	chunkSize, overlap := c.sizeFor(len(cleaned))
	chunks := c.semanticSplit(cleaned, metadata, chunkSize, overlap)
	if len(chunks) == 0 {
		return c.wordSplit(cleaned, metadata)
	}
	return chunks
}

// sizeFor scales chunk size with the document so huge files produce a
// manageable chunk count.
func (c *Chunker) sizeFor(textLength int) (size, overlap int) {
	switch {
	case textLength > 2_000_000:
		return 3500, 300
	case textLength > 1_000_000:
		return 2500, 250
	case textLength > 500_000:
		return 1800, 180
	default:
		return c.baseChunkSize, c.baseChunkOverlap
	}
}

func (c *Chunker) semanticSplit(text string, metadata map[string]interface{}, chunkSize, overlap int) []Chunk {
	paragraphs := paragraphRe.Split(text, -1)

	var chunks []Chunk
	var current string

	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		// A paragraph bigger than the chunk itself gets word-windowed.
		if len(paragraph) > chunkSize {
			if current != "" {
				chunks = append(chunks, Chunk{Text: strings.TrimSpace(current), Metadata: copyMetadata(metadata)})
				current = ""
			}
			chunks = append(chunks, windowWords(paragraph, metadata, chunkSize, overlap)...)
			continue
		}

		if len(current)+len(paragraph) > chunkSize && current != "" {
			chunks = append(chunks, Chunk{Text: strings.TrimSpace(current), Metadata: copyMetadata(metadata)})

			if tail := overlapText(current, overlap); tail != "" {
				current = tail + "\n\n" + paragraph
			} else {
				current = paragraph
			}
			continue
		}

		if current != "" {
			current += "\n\n" + paragraph
		} else {
			current = paragraph
		}
	}

	if current != "" {
		chunks = append(chunks, Chunk{Text: strings.TrimSpace(current), Metadata: copyMetadata(metadata)})
	}
	return chunks
}

// overlapText takes whole trailing sentences up to roughly overlapSize
// characters, so the next chunk starts with familiar context.
func overlapText(text string, overlapSize int) string {
	words := strings.Fields(text)
	if len(words) <= overlapSize/5 {
		return text
	}

	sentences := sentenceEndRe.Split(text, -1)
	var picked []string
	currentLength := 0

	for i := len(sentences) - 1; i >= 0; i-- {
		sentence := strings.TrimSpace(sentences[i])
		if sentence == "" {
			continue
		}
		if currentLength+len(sentence) > overlapSize && len(picked) > 0 {
			break
		}
		picked = append([]string{sentence}, picked...)
		currentLength += len(sentence)
	}

	if len(picked) == 0 {
		return ""
	}
	return strings.Join(picked, ". ") + "."
}

// windowWords slides a character-budgeted window over the words of one
// oversized paragraph, carrying overlap words between windows.
func windowWords(text string, metadata map[string]interface{}, chunkSize, overlap int) []Chunk {
	words := strings.Fields(text)

	var chunks []Chunk
	var current []string
	currentLength := 0

	for _, word := range words {
		wordLength := len(word) + 1
		if currentLength+wordLength > chunkSize && len(current) > 0 {
			chunks = append(chunks, Chunk{Text: strings.Join(current, " "), Metadata: copyMetadata(metadata)})

			overlapCount := overlap / 10
			if overlapCount > len(current) {
				overlapCount = len(current)
			}
			current = append([]string(nil), current[len(current)-overlapCount:]...)
			currentLength = 0
			for _, w := range current {
				currentLength += len(w) + 1
			}
		}
		current = append(current, word)
		currentLength += wordLength
	}

	if len(current) > 0 {
		chunks = append(chunks, Chunk{Text: strings.Join(current, " "), Metadata: copyMetadata(metadata)})
	}
	return chunks
}

// wordSplit is the structure-free fallback: fixed word windows.
func (c *Chunker) wordSplit(text string, metadata map[string]interface{}) []Chunk {
	words := strings.Fields(text)
	const chunkWords = 200

	var chunks []Chunk
	for i := 0; i < len(words); i += chunkWords {
		end := i + chunkWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, Chunk{
			Text:     strings.Join(words[i:end], " "),
			Metadata: copyMetadata(metadata),
		})
	}
	return chunks
}

func cleanText(text string) string {
	text = paragraphRe.ReplaceAllString(text, "\n\n")
	text = spaceRunRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func copyMetadata(metadata map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
