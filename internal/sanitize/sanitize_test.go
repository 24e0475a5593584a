package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", Text(""))
	})

	t.Run("plain text survives escaped", func(t *testing.T) {
		got := Text("What is the refund policy?")
		assert.Equal(t, "What is the refund policy?", got)
	})

	t.Run("html is escaped", func(t *testing.T) {
		got := Text("a < b & c")
		assert.Equal(t, "a &lt; b &amp; c", got)
	})

	t.Run("javascript protocol removed", func(t *testing.T) {
		got := Text("click javascript:alert(1) here")
		assert.NotContains(t, got, "javascript:")
	})

	t.Run("whitespace collapsed", func(t *testing.T) {
		got := Text("  hello \n\t world  ")
		assert.Equal(t, "hello world", got)
	})

	t.Run("long input truncated", func(t *testing.T) {
		got := Text(strings.Repeat("a", MaxTextLength+500))
		assert.LessOrEqual(t, len(got), MaxTextLength)
	})

	t.Run("truncation lands on a rune boundary", func(t *testing.T) {
		// Three-byte runes make the byte cap fall mid-rune.
		got := Text(strings.Repeat("日", MaxTextLength))
		assert.True(t, utf8.ValidString(got))
		assert.LessOrEqual(t, len(got), MaxTextLength)
	})
}

func TestFilename(t *testing.T) {
	t.Run("empty becomes unknown", func(t *testing.T) {
		assert.Equal(t, "unknown", Filename(""))
	})

	t.Run("path traversal stripped", func(t *testing.T) {
		assert.Equal(t, "passwd.txt", Filename("../../etc/passwd.txt"))
		assert.Equal(t, "report.pdf", Filename(`C:\Users\me\report.pdf`))
	})

	t.Run("dangerous characters removed", func(t *testing.T) {
		assert.Equal(t, "notes.txt", Filename(`no<te>s.txt`))
	})

	t.Run("unsafe extension dropped", func(t *testing.T) {
		assert.Equal(t, "payload", Filename("payload.exe"))
	})

	t.Run("allowed extensions kept", func(t *testing.T) {
		for _, name := range []string{"a.pdf", "a.docx", "a.txt", "a.csv", "a.md"} {
			assert.Equal(t, name, Filename(name))
		}
	})
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "user-123_abc", Identifier("user-123_abc"))
	assert.Equal(t, "abc", Identifier("a'b;c"))
	assert.Equal(t, 100, len(Identifier(strings.Repeat("x", 200))))
}
