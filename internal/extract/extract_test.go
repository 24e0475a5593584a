package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocxWith(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractPlain(t *testing.T) {
	e := NewExtractor()

	t.Run("plain text with header", func(t *testing.T) {
		content := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 3)
		out, err := e.Text([]byte(content), "notes.txt")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "DOCUMENT: notes.txt\nCONTENT:\n"))
		assert.Contains(t, out, "quick brown fox")
	})

	t.Run("markdown passes through", func(t *testing.T) {
		content := "# Title\n\n" + strings.Repeat("Some body text here. ", 5)
		out, err := e.Text([]byte(content), "readme.md")
		require.NoError(t, err)
		assert.Contains(t, out, "# Title")
	})

	t.Run("nearly empty file rejected", func(t *testing.T) {
		_, err := e.Text([]byte("hi"), "notes.txt")
		assert.ErrorIs(t, err, ErrNoText)
	})

	t.Run("unsupported extension rejected", func(t *testing.T) {
		_, err := e.Text([]byte("data"), "image.png")
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})
}

func TestExtractCSV(t *testing.T) {
	e := NewExtractor()

	t.Run("renders markdown table", func(t *testing.T) {
		csvData := "name,age\nalice,30\nbob,25\n"
		out, err := e.Text([]byte(csvData), "people.csv")
		require.NoError(t, err)
		assert.Contains(t, out, "**Columns:** name, age")
		assert.Contains(t, out, "| alice | 30 |")
		assert.Contains(t, out, "| bob | 25 |")
		assert.NotContains(t, out, "more rows")
	})

	t.Run("caps rows at limit", func(t *testing.T) {
		var sb strings.Builder
		sb.WriteString("id,value\n")
		for i := 0; i < csvRowLimit+20; i++ {
			fmt.Fprintf(&sb, "%d,v%d\n", i, i)
		}
		out, err := e.Text([]byte(sb.String()), "big.csv")
		require.NoError(t, err)
		assert.Contains(t, out, "... and 20 more rows")
	})
}

func TestExtractDocx(t *testing.T) {
	e := NewExtractor()

	t.Run("headings and paragraphs", func(t *testing.T) {
		docXML := `<?xml version="1.0"?>
<document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <body>
    <p><pPr><pStyle val="Heading1"/></pPr><r><t>Quarterly Report</t></r></p>
    <p><r><t>Revenue grew steadily across all regions this quarter.</t></r></p>
    <p><r><t>Costs remained flat thanks to the new supplier contracts.</t></r></p>
  </body>
</document>`
		out, err := e.Text(buildDocxWith(t, docXML), "report.docx")
		require.NoError(t, err)
		assert.Contains(t, out, "# Quarterly Report")
		assert.Contains(t, out, "Revenue grew steadily")
	})

	t.Run("tables rendered with delimiters", func(t *testing.T) {
		docXML := `<?xml version="1.0"?>
<document>
  <body>
    <p><r><t>The table below lists regional results for this period.</t></r></p>
    <tbl>
      <tr><tc><p><r><t>Region</t></r></p></tc><tc><p><r><t>Result</t></r></p></tc></tr>
      <tr><tc><p><r><t>North</t></r></p></tc><tc><p><r><t>Up</t></r></p></tc></tr>
    </tbl>
  </body>
</document>`
		out, err := e.Text(buildDocxWith(t, docXML), "table.docx")
		require.NoError(t, err)
		assert.Contains(t, out, "[Table Start]")
		assert.Contains(t, out, "Region | Result")
		assert.Contains(t, out, "North | Up")
	})

	t.Run("missing body rejected", func(t *testing.T) {
		var buf bytes.Buffer
		w := zip.NewWriter(&buf)
		_, err := w.Create("other.xml")
		require.NoError(t, err)
		require.NoError(t, w.Close())

		_, err = e.Text(buf.Bytes(), "broken.docx")
		assert.Error(t, err)
	})
}
