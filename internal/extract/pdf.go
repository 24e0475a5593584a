package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

const maxPDFPages = 1000

// extractPDF walks every page and labels its text with the page number so
// retrieved chunks can cite where they came from.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	numPages := reader.NumPage()
	if numPages > maxPDFPages {
		return "", fmt.Errorf("PDF has too many pages (%d)", numPages)
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single broken page should not sink the document.
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(&sb, "Page %d:\n%s\n\n", i, text)
	}

	out := sb.String()
	if len(strings.TrimSpace(out)) < minExtractableText {
		return "", ErrNoText
	}
	return out, nil
}
