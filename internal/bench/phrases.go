package bench

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultPhrases are everyday Hindi phrases used for round-trip checks.
var DefaultPhrases = []string{
	"नमस्ते",
	"आप कैसे हैं?",
	"मैं ठीक हूं।",
	"धन्यवाद",
	"आपका नाम क्या है?",
	"मुझे हिंदी सीखना पसंद है।",
	"भारत एक विशाल देश है।",
	"क्या आप मेरी मदद कर सकते हैं?",
	"आज मौसम बहुत अच्छा है।",
	"फिर मिलेंगे",
}

// PhraseResult is the round trip of one phrase.
type PhraseResult struct {
	Phrase   string `json:"phrase"`
	IDs      []int  `json:"ids"`
	Decoded  string `json:"decoded"`
	Tokens   int    `json:"tokens"`
	Exact    bool   `json:"exact"`
	// Accuracy is the share of non-space characters of the normalized
	// phrase reproduced at the same position after decoding.
	Accuracy float64 `json:"accuracy"`
}

// CheckPhrases encodes and decodes each phrase. Whitespace differences are
// ignored by Accuracy because decode does not restore word boundaries.
func CheckPhrases(c Codec, phrases []string) []PhraseResult {
	out := make([]PhraseResult, 0, len(phrases))
	for _, p := range phrases {
		ids := c.Encode(p)
		dec := c.Decode(ids)
		want := c.Normalize(p)
		out = append(out, PhraseResult{
			Phrase:   p,
			IDs:      ids,
			Decoded:  dec,
			Tokens:   len(ids),
			Exact:    dec == want,
			Accuracy: charAccuracy(stripSpace(want), stripSpace(dec)),
		})
	}
	return out
}

// MeanAccuracy averages Accuracy over results.
func MeanAccuracy(results []PhraseResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Accuracy
	}
	return sum / float64(len(results))
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// charAccuracy compares codepoints position by position against want.
func charAccuracy(want, got string) float64 {
	w, g := []rune(want), []rune(got)
	if len(w) == 0 {
		if len(g) == 0 {
			return 1
		}
		return 0
	}
	match := 0
	for i := 0; i < min(len(w), len(g)); i++ {
		if w[i] == g[i] {
			match++
		}
	}
	return float64(match) / float64(max(len(w), len(g)))
}

// FormatPhrasesTable writes phrase results as a table.
func FormatPhrasesTable(results []PhraseResult, w io.Writer) {
	table := newTable(w, "Phrase", "Tokens", "Decoded", "Accuracy")
	for _, r := range results {
		table.Append([]string{
			r.Phrase,
			strconv.Itoa(r.Tokens),
			r.Decoded,
			fmt.Sprintf("%.1f%%", r.Accuracy*100),
		})
	}
	table.Render()
	fmt.Fprintf(w, "mean accuracy: %.1f%% over %d phrases (%d runes)\n",
		MeanAccuracy(results)*100, len(results), totalRunes(results))
}

func totalRunes(results []PhraseResult) int {
	n := 0
	for _, r := range results {
		n += utf8.RuneCountInString(r.Phrase)
	}
	return n
}
