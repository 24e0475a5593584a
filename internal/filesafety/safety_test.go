package filesafety

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, extraEntries ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	entries := append([]string{
		"[Content_Types].xml",
		"_rels/.rels",
		"word/document.xml",
	}, extraEntries...)

	for _, name := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		// Pad the entries so the archive clears the bomb heuristic.
		_, err = f.Write([]byte(strings.Repeat("<w:p>hello</w:p>", 64)))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestCheck(t *testing.T) {
	c := NewChecker()

	t.Run("plain text accepted", func(t *testing.T) {
		res := c.Check([]byte("hello world, this is a note"), "notes.txt")
		assert.True(t, res.Safe)
		assert.NotEmpty(t, res.SHA256)
	})

	t.Run("empty file rejected", func(t *testing.T) {
		res := c.Check([]byte{}, "notes.txt")
		assert.False(t, res.Safe)
		assert.Contains(t, res.Reason, "empty")
	})

	t.Run("unsupported extension rejected", func(t *testing.T) {
		res := c.Check([]byte("binary"), "tool.exe")
		assert.False(t, res.Safe)
		assert.Contains(t, res.Reason, "not supported")
	})

	t.Run("oversized file rejected", func(t *testing.T) {
		big := bytes.Repeat([]byte("a"), 1*1024*1024+1)
		res := c.Check(big, "big.txt")
		assert.False(t, res.Safe)
		assert.Contains(t, res.Reason, "limit")
	})

	t.Run("executable disguised as document rejected", func(t *testing.T) {
		payload := append([]byte("MZ"), bytes.Repeat([]byte{0x90}, 64)...)
		res := c.Check(payload, "invoice.txt")
		assert.False(t, res.Safe)
	})

	t.Run("content extension mismatch rejected", func(t *testing.T) {
		res := c.Check([]byte("just some text, not a pdf at all"), "report.pdf")
		assert.False(t, res.Safe)
		assert.Contains(t, res.Reason, "does not match")
	})

	t.Run("pdf magic accepted", func(t *testing.T) {
		pdf := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF")
		res := c.Check(pdf, "report.pdf")
		assert.True(t, res.Safe)
		assert.Equal(t, "application/pdf", res.DetectedMIME)
	})

	t.Run("docx without macros accepted", func(t *testing.T) {
		res := c.Check(buildDocx(t), "letter.docx")
		assert.True(t, res.Safe, res.Reason)
	})

	t.Run("docx with macros rejected", func(t *testing.T) {
		res := c.Check(buildDocx(t, "word/vbaProject.bin"), "letter.docx")
		assert.False(t, res.Safe)
		assert.Contains(t, res.Reason, "macros")
	})

	t.Run("docx with embedded objects rejected", func(t *testing.T) {
		res := c.Check(buildDocx(t, "word/embeddings/oleObject1.bin"), "letter.docx")
		assert.False(t, res.Safe)
		assert.Contains(t, res.Reason, "embedded")
	})

	t.Run("tiny zip flagged as bomb", func(t *testing.T) {
		var buf bytes.Buffer
		w := zip.NewWriter(&buf)
		f, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, err = f.Write([]byte("x"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		res := c.Check(buf.Bytes(), "tiny.docx")
		assert.False(t, res.Safe)
	})

	t.Run("hash is stable", func(t *testing.T) {
		a := c.Check([]byte("same content"), "a.txt")
		b := c.Check([]byte("same content"), "b.txt")
		assert.Equal(t, a.SHA256, b.SHA256)
	})
}
