package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

const csvRowLimit = 500

// extractCSV renders the sheet as a markdown table, capped at 500 data
// rows so one huge spreadsheet cannot flood the knowledge base.
func extractCSV(data []byte, filename string) (string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := r.Read()
	if err != nil {
		return "", fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read CSV row: %w", err)
		}
		rows = append(rows, record)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Document: %s\n\n", filename)
	fmt.Fprintf(&sb, "**Dimensions:** %d rows × %d columns\n", len(rows), len(header))
	fmt.Fprintf(&sb, "**Columns:** %s\n\n", strings.Join(header, ", "))

	sb.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat("---|", len(header)) + "\n")

	limit := len(rows)
	if limit > csvRowLimit {
		limit = csvRowLimit
	}
	for _, row := range rows[:limit] {
		sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}

	if len(rows) > csvRowLimit {
		fmt.Fprintf(&sb, "\n... and %d more rows (showing %d of %d total rows)\n",
			len(rows)-csvRowLimit, csvRowLimit, len(rows))
	}

	return sb.String(), nil
}
