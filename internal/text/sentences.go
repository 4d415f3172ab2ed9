package text

import "strings"

// IsSentenceEnd reports whether r terminates a sentence: the danda, the
// double danda, '?', '!' or '.'.
func IsSentenceEnd(r rune) bool {
	switch r {
	case '।', '॥', '?', '!', '.':
		return true
	}
	return false
}

// SplitSentences splits text on sentence terminators, keeping the terminator
// attached to its sentence. Empty segments are dropped. Runs of terminators
// such as "..." or "?!" stay with the sentence they close.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if !IsSentenceEnd(runes[i]) {
			continue
		}
		for i+1 < len(runes) && IsSentenceEnd(runes[i+1]) {
			i++
		}
		s := strings.TrimSpace(string(runes[start : i+1]))
		if s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}

	// Trailing text after the last terminator (if any).
	if start < len(runes) {
		s := strings.TrimSpace(string(runes[start:]))
		if s != "" {
			sentences = append(sentences, s)
		}
	}

	return sentences
}
