package bench

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/example/go-hindi-bpe/internal/text"
)

// Codec is the tokenizer surface the quality reports need.
type Codec interface {
	Encoder
	Decode(ids []int) string
	Normalize(s string) string
	Token(id int) string
}

// TokenCount is one entry of the frequency ranking.
type TokenCount struct {
	ID    int    `json:"id"`
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Report summarizes how a tokenizer compresses a corpus.
type Report struct {
	VocabSize         int          `json:"vocab_size"`
	Lines             int          `json:"lines"`
	Sentences         int          `json:"sentences"`
	Words             int          `json:"words"`
	Chars             int          `json:"chars"`
	TotalTokens       int          `json:"total_tokens"`
	UniqueTokens      int          `json:"unique_tokens"`
	UnknownTokens     int          `json:"unknown_tokens"`
	CompressionRatio  float64      `json:"compression_ratio"`
	TokensPerLine     float64      `json:"tokens_per_line"`
	TokensPerSentence float64      `json:"tokens_per_sentence"`
	AvgWordLength     float64      `json:"avg_word_length"`
	TopTokens         []TokenCount `json:"top_tokens"`
}

// Analyze encodes every line and aggregates compression statistics. The
// compression ratio is input codepoints per token. unknownID is counted
// separately so coverage gaps are visible.
func Analyze(c Codec, lines []string, vocabSize, unknownID, topN int) Report {
	rep := Report{VocabSize: vocabSize}
	freq := make(map[int]int)

	for _, line := range lines {
		norm := c.Normalize(line)
		if norm == "" {
			continue
		}
		rep.Lines++
		rep.Chars += utf8.RuneCountInString(line)
		rep.Sentences += len(text.SplitSentences(norm))
		for _, w := range text.Words(norm) {
			rep.Words++
			rep.AvgWordLength += float64(utf8.RuneCountInString(w))
		}

		for _, id := range c.Encode(line) {
			rep.TotalTokens++
			freq[id]++
			if id == unknownID {
				rep.UnknownTokens++
			}
		}
	}

	rep.UniqueTokens = len(freq)
	if rep.Words > 0 {
		rep.AvgWordLength /= float64(rep.Words)
	}
	if rep.TotalTokens > 0 {
		rep.CompressionRatio = float64(rep.Chars) / float64(rep.TotalTokens)
	}
	if rep.Lines > 0 {
		rep.TokensPerLine = float64(rep.TotalTokens) / float64(rep.Lines)
	}
	if rep.Sentences > 0 {
		rep.TokensPerSentence = float64(rep.TotalTokens) / float64(rep.Sentences)
	}

	ranked := make([]TokenCount, 0, len(freq))
	for id, n := range freq {
		ranked = append(ranked, TokenCount{ID: id, Token: c.Token(id), Count: n})
	}
	slices.SortFunc(ranked, func(a, b TokenCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if topN >= 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	rep.TopTokens = ranked
	return rep
}

// FormatReportTable writes the report as two tables: summary metrics and the
// top tokens.
func FormatReportTable(rep Report, w io.Writer) {
	summary := newTable(w, "Metric", "Value")
	summary.Append([]string{"vocab size", strconv.Itoa(rep.VocabSize)})
	summary.Append([]string{"lines", strconv.Itoa(rep.Lines)})
	summary.Append([]string{"sentences", strconv.Itoa(rep.Sentences)})
	summary.Append([]string{"words", strconv.Itoa(rep.Words)})
	summary.Append([]string{"chars", strconv.Itoa(rep.Chars)})
	summary.Append([]string{"total tokens", strconv.Itoa(rep.TotalTokens)})
	summary.Append([]string{"unique tokens", strconv.Itoa(rep.UniqueTokens)})
	summary.Append([]string{"unknown tokens", strconv.Itoa(rep.UnknownTokens)})
	summary.Append([]string{"compression ratio", fmt.Sprintf("%.2f", rep.CompressionRatio)})
	summary.Append([]string{"tokens per line", fmt.Sprintf("%.2f", rep.TokensPerLine)})
	summary.Append([]string{"tokens per sentence", fmt.Sprintf("%.2f", rep.TokensPerSentence)})
	summary.Append([]string{"avg word length", fmt.Sprintf("%.2f", rep.AvgWordLength)})
	summary.Render()

	if len(rep.TopTokens) == 0 {
		return
	}
	fmt.Fprintln(w)
	top := newTable(w, "Rank", "ID", "Token", "Count")
	for i, tc := range rep.TopTokens {
		top.Append([]string{strconv.Itoa(i + 1), strconv.Itoa(tc.ID), tc.Token, strconv.Itoa(tc.Count)})
	}
	top.Render()
}

// FormatReportJSON writes the report as indented JSON.
func FormatReportJSON(rep Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
