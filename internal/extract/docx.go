package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Minimal WordprocessingML model: paragraphs with an optional style and
// their text runs, plus tables of rows of cells.
type docxDocument struct {
	Body docxBody `xml:"body"`
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"p"`
	Tables     []docxTable     `xml:"tbl"`
}

type docxParagraph struct {
	Props docxParaProps `xml:"pPr"`
	Runs  []docxRun     `xml:"r"`
}

type docxParaProps struct {
	Style docxStyle `xml:"pStyle"`
}

type docxStyle struct {
	Val string `xml:"val,attr"`
}

type docxRun struct {
	Texts []string `xml:"t"`
}

type docxTable struct {
	Rows []docxRow `xml:"tr"`
}

type docxRow struct {
	Cells []docxCell `xml:"tc"`
}

type docxCell struct {
	Paragraphs []docxParagraph `xml:"p"`
}

// extractDocx parses word/document.xml out of the archive. Headings are
// rendered as markdown headings, tables as delimited rows.
func extractDocx(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open document archive: %w", err)
	}

	var docXML []byte
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", fmt.Errorf("failed to read document body: %w", err)
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return "", fmt.Errorf("failed to read document body: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return "", fmt.Errorf("document archive has no body")
	}

	var doc docxDocument
	if err := xml.Unmarshal(docXML, &doc); err != nil {
		return "", fmt.Errorf("failed to parse document body: %w", err)
	}

	var sb strings.Builder
	for _, p := range doc.Body.Paragraphs {
		text := strings.TrimSpace(paragraphText(p))
		if text == "" {
			continue
		}
		if level := headingLevel(p.Props.Style.Val); level > 0 {
			sb.WriteString("\n" + strings.Repeat("#", level) + " " + text + "\n")
			continue
		}
		sb.WriteString(text + "\n\n")
	}

	for _, tbl := range doc.Body.Tables {
		sb.WriteString("\n[Table Start]\n")
		for _, row := range tbl.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				var parts []string
				for _, p := range cell.Paragraphs {
					if t := strings.TrimSpace(paragraphText(p)); t != "" {
						parts = append(parts, t)
					}
				}
				cells = append(cells, strings.Join(parts, " "))
			}
			sb.WriteString(strings.Join(cells, " | ") + "\n")
		}
		sb.WriteString("[Table End]\n\n")
	}

	out := sb.String()
	if len(strings.TrimSpace(out)) < minExtractableText {
		return "", ErrNoText
	}
	return out, nil
}

func paragraphText(p docxParagraph) string {
	var sb strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Texts {
			sb.WriteString(t)
		}
	}
	return sb.String()
}

// headingLevel maps Word's Heading1..Heading9 styles to markdown depth,
// capped at 3.
func headingLevel(style string) int {
	if !strings.HasPrefix(style, "Heading") {
		return 0
	}
	level, err := strconv.Atoi(strings.TrimPrefix(style, "Heading"))
	if err != nil || level < 1 {
		return 1
	}
	if level > 3 {
		return 3
	}
	return level
}
