package bench

import (
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"
)

// Named is an Encoder that identifies itself in comparison tables.
type Named interface {
	Encoder
	Name() string
}

// CompareRow is the compression of one tokenizer over a corpus.
type CompareRow struct {
	Name             string  `json:"name"`
	Tokens           int     `json:"tokens"`
	Chars            int     `json:"chars"`
	CompressionRatio float64 `json:"compression_ratio"`
	TokensPerLine    float64 `json:"tokens_per_line"`
}

// Compare encodes lines with every tokenizer and reports compression side
// by side. Empty lines are skipped.
func Compare(lines []string, encoders ...Named) []CompareRow {
	rows := make([]CompareRow, len(encoders))
	for i, e := range encoders {
		row := CompareRow{Name: e.Name()}
		n := 0
		for _, line := range lines {
			if line == "" {
				continue
			}
			n++
			row.Chars += utf8.RuneCountInString(line)
			row.Tokens += len(e.Encode(line))
		}
		if row.Tokens > 0 {
			row.CompressionRatio = float64(row.Chars) / float64(row.Tokens)
		}
		if n > 0 {
			row.TokensPerLine = float64(row.Tokens) / float64(n)
		}
		rows[i] = row
	}
	return rows
}

// FormatCompareTable writes comparison rows as a table.
func FormatCompareTable(rows []CompareRow, w io.Writer) {
	table := newTable(w, "Tokenizer", "Tokens", "Chars", "Chars/Token", "Tokens/Line")
	for _, r := range rows {
		table.Append([]string{
			r.Name,
			strconv.Itoa(r.Tokens),
			strconv.Itoa(r.Chars),
			fmt.Sprintf("%.2f", r.CompressionRatio),
			fmt.Sprintf("%.2f", r.TokensPerLine),
		})
	}
	table.Render()
}
