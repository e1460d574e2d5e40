// Package catalog turns raw spreadsheet text of unknown cleanliness into
// a validated product catalog. Parsing and validation never fail as a
// whole: malformed rows are excluded one at a time and the survivors keep
// their original positions, so product IDs stay stable across refetches.
package catalog

import "strings"

// Row is one non-blank data row of the sheet. Index is the row's 1-based
// position within the data section (the header is row 0 of the raw text
// and never becomes a Row). Blank lines keep their position, so indices
// can have gaps.
type Row struct {
	Index  int
	Fields []string
}

// ParseRow splits one line of comma-separated text into fields.
// A double quote toggles quoted mode; a doubled quote inside a quoted
// field emits a literal quote; commas inside quotes are field content.
// Unbalanced quotes never error, the open-quote state is simply discarded
// at end of line. Every non-empty line yields at least one field.
func ParseRow(line string) []string {
	var fields []string
	var buf strings.Builder

	inQuotes := false
	runes := []rune(line)

	for i := 0; i < len(runes); i++ {
		switch ch := runes[i]; {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				// Escaped quote: emit one literal " and skip the pair.
				buf.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, buf.String())
			buf.Reset()
		default:
			buf.WriteRune(ch)
		}
	}

	fields = append(fields, buf.String())
	return fields
}

// ParseRows splits raw sheet text into parsed data rows. The first line
// is the header and is discarded; blank and whitespace-only lines are
// dropped but still consume a row index, matching how the source sheet
// numbers its rows.
func ParseRows(text string) []Row {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return nil
	}
	lines = lines[1:] // header

	var rows []Row
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, Row{Index: i + 1, Fields: ParseRow(line)})
	}
	return rows
}
