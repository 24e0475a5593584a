// Package sanitize normalizes untrusted text before it reaches the
// pipeline: question text, filenames and external identifiers.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxTextLength     = 5000
	MaxFilenameLength = 255
)

// Markup constructs that have no business inside a question or a filename.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script.*?>.*?</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)expression\s*\(`),
	regexp.MustCompile(`(?i)vbscript:`),
	regexp.MustCompile(`(?is)<iframe.*?>.*?</iframe>`),
	regexp.MustCompile(`(?is)<object.*?>.*?</object>`),
	regexp.MustCompile(`(?is)<embed.*?>.*?</embed>`),
	regexp.MustCompile(`(?is)<form.*?>.*?</form>`),
	regexp.MustCompile(`(?is)<link.*?>.*?</link>`),
	regexp.MustCompile(`(?i)meta\s+http-equiv`),
}

var (
	pathPrefixRe  = regexp.MustCompile(`.*[\\/]`)
	unsafeCharsRe = regexp.MustCompile(`[<>:"|?*\\/\x00]`)
	extensionRe   = regexp.MustCompile(`\.[^.]*$`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	identifierRe  = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)
)

var safeExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".csv":  true,
	".md":   true,
}

// Text trims, HTML-escapes and strips active markup from free-form input.
// Whitespace runs collapse to a single space.
func Text(text string) string {
	if text == "" {
		return ""
	}
	if len(text) > MaxTextLength {
		// Back up to a rune boundary so truncation never produces
		// invalid UTF-8.
		cut := MaxTextLength
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	text = html.EscapeString(text)
	for _, re := range suspiciousPatterns {
		text = re.ReplaceAllString(text, "")
	}

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// Filename strips path components and dangerous characters. An extension
// outside the allowed document set is removed entirely.
func Filename(filename string) string {
	if filename == "" {
		return "unknown"
	}

	filename = pathPrefixRe.ReplaceAllString(filename, "")
	filename = unsafeCharsRe.ReplaceAllString(filename, "")

	if len(filename) > MaxFilenameLength {
		filename = filename[:MaxFilenameLength]
	}

	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		ext := strings.ToLower(filename[idx:])
		if !safeExtensions[ext] {
			filename = extensionRe.ReplaceAllString(filename, "")
		}
	}

	if filename == "" {
		return "unknown"
	}
	return filename
}

// Identifier keeps only [a-zA-Z0-9-_], capped at 100 characters.
func Identifier(id string) string {
	id = identifierRe.ReplaceAllString(id, "")
	if len(id) > 100 {
		id = id[:100]
	}
	return id
}
