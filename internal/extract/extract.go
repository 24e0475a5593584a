// Package extract turns stored documents into plain text the chunker can
// work with. Each format keeps as much structure as plain text allows:
// PDF pages get page labels, Word headings become markdown headings and
// CSV files render as markdown tables.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"brainbin/internal/logger"
)

// ErrUnsupportedType is returned for extensions no extractor handles.
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrNoText is returned when a document parses but yields too little
// content to be useful.
var ErrNoText = errors.New("document appears to be empty or contains no extractable text")

const minExtractableText = 50

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Text extracts the document body and prefixes it with a header naming
// the source file, which helps retrieval attribute answers.
func (e *Extractor) Text(data []byte, filename string) (string, error) {
	body, err := e.extract(data, filename)
	if err != nil {
		logger.GetLogger().Error("Text extraction failed", "filename", filename, "error", err)
		return "", err
	}
	return fmt.Sprintf("DOCUMENT: %s\nCONTENT:\n%s", filename, strings.TrimSpace(body)), nil
}

func (e *Extractor) extract(data []byte, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDocx(data)
	case ".csv":
		return extractCSV(data, filename)
	case ".txt", ".md":
		return extractPlain(data)
	default:
		return "", ErrUnsupportedType
	}
}

func extractPlain(data []byte) (string, error) {
	// Replace invalid UTF-8 rather than failing the whole document.
	text := strings.ToValidUTF8(string(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})), "�")
	if len(strings.TrimSpace(text)) < minExtractableText {
		return "", ErrNoText
	}
	return text, nil
}
