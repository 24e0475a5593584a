package chunking

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	c := NewChunker()

	t.Run("short text returned as single chunk", func(t *testing.T) {
		chunks := c.Split("tiny", map[string]interface{}{"source": "a.txt"})
		require.Len(t, chunks, 1)
		assert.Equal(t, "tiny", chunks[0].Text)
		assert.Equal(t, "a.txt", chunks[0].Metadata["source"])
	})

	t.Run("paragraphs kept intact where they fit", func(t *testing.T) {
		var paragraphs []string
		for i := 0; i < 10; i++ {
			paragraphs = append(paragraphs, fmt.Sprintf("Paragraph %d. %s", i,
				strings.Repeat("Sentence content fills out this body. ", 8)))
		}
		text := strings.Join(paragraphs, "\n\n")

		chunks := c.Split(text, nil)
		require.Greater(t, len(chunks), 1)

		for _, chunk := range chunks {
			assert.NotEmpty(t, strings.TrimSpace(chunk.Text))
			// A chunk may exceed the target by a single paragraph but
			// never unboundedly.
			assert.Less(t, len(chunk.Text), 3*1200)
		}
	})

	t.Run("neighbouring chunks share overlap", func(t *testing.T) {
		var paragraphs []string
		for i := 0; i < 8; i++ {
			paragraphs = append(paragraphs, fmt.Sprintf("Topic %d intro. %s", i,
				strings.Repeat("More detail about this topic follows here. ", 10)))
		}
		chunks := c.Split(strings.Join(paragraphs, "\n\n"), nil)
		require.Greater(t, len(chunks), 1)

		// The second chunk should begin with text carried over from
		// the first.
		firstTail := chunks[0].Text[len(chunks[0].Text)/2:]
		overlapFound := false
		for _, sentence := range strings.Split(firstTail, ".") {
			sentence = strings.TrimSpace(sentence)
			if len(sentence) > 20 && strings.Contains(chunks[1].Text, sentence) {
				overlapFound = true
				break
			}
		}
		assert.True(t, overlapFound, "expected sentence overlap between chunks")
	})

	t.Run("metadata copied per chunk", func(t *testing.T) {
		meta := map[string]interface{}{"source": "doc.pdf"}
		text := strings.Repeat("A sentence of filler text for chunking purposes. ", 100)
		chunks := c.Split(text, meta)
		require.Greater(t, len(chunks), 0)

		chunks[0].Metadata["source"] = "mutated"
		assert.Equal(t, "doc.pdf", meta["source"])
		if len(chunks) > 1 {
			assert.Equal(t, "doc.pdf", chunks[1].Metadata["source"])
		}
	})

	t.Run("larger documents use larger chunks", func(t *testing.T) {
		small := strings.Repeat("word ", 2000)
		big := strings.Repeat("word ", 300_000)

		smallChunks := c.Split(small, nil)
		bigChunks := c.Split(big, nil)

		require.Greater(t, len(smallChunks), 0)
		require.Greater(t, len(bigChunks), 0)

		// Per-chunk text should be larger for the big document.
		assert.Greater(t, avgLen(bigChunks), avgLen(smallChunks))
	})
}

func avgLen(chunks []Chunk) int {
	total := 0
	for _, ch := range chunks {
		total += len(ch.Text)
	}
	return total / len(chunks)
}
