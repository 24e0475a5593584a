// Package filesafety screens uploaded files before they enter the ingest
// pipeline. It sniffs the real content type from magic bytes and refuses
// anything whose detected type does not match the claimed extension.
package filesafety

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// allowedMIMETypes maps sniffed MIME types to the extensions they may
// legitimately carry.
var allowedMIMETypes = map[string][]string{
	"application/pdf": {".pdf"},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {".docx"},
	"text/plain":      {".txt", ".md", ".csv"},
	"text/markdown":   {".md"},
	"text/csv":        {".csv"},
	"application/csv": {".csv"},
}

// maxFileSizes caps each document type individually.
var maxFileSizes = map[string]int64{
	".pdf":  3 * 1024 * 1024,
	".docx": 3 * 1024 * 1024,
	".txt":  1 * 1024 * 1024,
	".md":   1 * 1024 * 1024,
	".csv":  5 * 1024 * 1024,
}

// Result is the outcome of a safety check on an upload.
type Result struct {
	Safe         bool
	Reason       string
	DetectedMIME string
	SHA256       string
}

type Checker struct{}

func NewChecker() *Checker {
	return &Checker{}
}

// AllowedExtensions reports the document types the checker accepts.
func (c *Checker) AllowedExtensions() []string {
	exts := make([]string, 0, len(maxFileSizes))
	for ext := range maxFileSizes {
		exts = append(exts, ext)
	}
	return exts
}

// Check runs the full screening pass over an upload held in memory.
// The returned Result always carries the detected MIME type and the
// content hash so the caller can deduplicate.
func (c *Checker) Check(data []byte, originalFilename string) Result {
	sum := sha256.Sum256(data)
	res := Result{SHA256: hex.EncodeToString(sum[:])}

	ext := strings.ToLower(filepath.Ext(originalFilename))
	maxSize, ok := maxFileSizes[ext]
	if !ok {
		res.Reason = fmt.Sprintf("file type %q is not supported; upload PDF, Word, CSV, Markdown or text files", ext)
		return res
	}

	if len(data) == 0 {
		res.Reason = "file is empty"
		return res
	}
	if int64(len(data)) > maxSize {
		res.Reason = fmt.Sprintf("file size exceeds the %dMB limit for %s files", maxSize/1024/1024, ext)
		return res
	}

	detected := mimetype.Detect(data)
	res.DetectedMIME = baseMIME(detected.String())

	if !mimeMatchesExtension(res.DetectedMIME, ext) {
		res.Reason = fmt.Sprintf("file content does not match its extension (detected %s)", res.DetectedMIME)
		return res
	}

	if ok, reason := checkSignature(data, ext); !ok {
		res.Reason = reason
		return res
	}

	if ext == ".docx" {
		if ok, reason := checkDocxArchive(data); !ok {
			res.Reason = reason
			return res
		}
	}

	res.Safe = true
	return res
}

func baseMIME(m string) string {
	if idx := strings.Index(m, ";"); idx >= 0 {
		m = m[:idx]
	}
	return strings.TrimSpace(m)
}

func mimeMatchesExtension(mime, ext string) bool {
	exts, ok := allowedMIMETypes[mime]
	if !ok {
		// Sniffers report plain CSV and Markdown as various text
		// subtypes; any text/* is fine for the text-based extensions.
		if strings.HasPrefix(mime, "text/") && (ext == ".txt" || ext == ".md" || ext == ".csv") {
			return true
		}
		return false
	}
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

func checkSignature(data []byte, ext string) (bool, string) {
	if bytes.HasPrefix(data, []byte("MZ")) {
		return false, "file appears to be an executable disguised as a document"
	}

	// A DOCX smaller than 1KB with a ZIP header is almost certainly a
	// decompression bomb or a truncated archive.
	if ext == ".docx" && bytes.HasPrefix(data, []byte("PK")) && len(data) < 1000 {
		return false, "file appears to be a compressed archive bomb"
	}

	return true, ""
}

// checkDocxArchive rejects documents carrying macros or embedded objects.
func checkDocxArchive(data []byte) (bool, string) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false, "document archive is corrupted"
	}
	for _, f := range r.File {
		name := strings.ToLower(f.Name)
		if strings.Contains(name, "macros") || strings.Contains(name, "vba") {
			return false, "document contains macros"
		}
		if strings.Contains(name, "embeddings") {
			return false, "document contains embedded files"
		}
	}
	return true, ""
}
