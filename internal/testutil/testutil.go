// Package testutil provides shared skip helpers and corpus fixtures for
// tests.
//
// Skip helpers call t.Skip with a clear human-readable reason when the named
// prerequisite is absent, so integration tests remain runnable in partial
// environments without failing noisily.
//
// Typical usage:
//
//	func TestCompare(t *testing.T) {
//	    path := testutil.RequireReferenceModel(t)
//	    corpus := testutil.WriteCorpus(t, testutil.SampleCorpus...)
//	    ...
//	}
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ReferenceModelEnv names the environment variable that points at a
// SentencePiece model used by comparison tests.
const ReferenceModelEnv = "HINDIBPE_REFERENCE_MODEL"

// RequireReferenceModel returns the path of a SentencePiece reference model.
// It checks ReferenceModelEnv first, then walks up from the working directory
// looking for models/reference.model, and skips the test if neither exists.
func RequireReferenceModel(tb testing.TB) string {
	tb.Helper()

	if p := os.Getenv(ReferenceModelEnv); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		tb.Skipf("reference model not found at %s=%q", ReferenceModelEnv, p)
		return ""
	}

	dir, err := filepath.Abs(".")
	if err != nil {
		tb.Fatalf("abs path: %v", err)
	}
	for {
		candidate := filepath.Join(dir, "models", "reference.model")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	tb.Skipf("models/reference.model not found; set %s to run comparison tests", ReferenceModelEnv)
	return ""
}

// SampleCorpus is a small Hindi corpus with repeated words, conjuncts and
// sentence punctuation.
var SampleCorpus = []string{
	"नमस्ते, आप कैसे हैं?",
	"मैं ठीक हूं। आप कैसे हैं?",
	"भारत एक विशाल देश है।",
	"भारत की संस्कृति बहुत प्राचीन है।",
	"प्रकाश ने प्रसाद बांटा और प्रधान ने धन्यवाद कहा।",
	"प्रकाश और प्रसाद स्कूल जाते हैं।",
	"हम सब प्रकाश के साथ काम करते हैं।",
	"मुझे हिंदी सीखना पसंद है।",
	"क्या आप मेरी मदद कर सकते हैं?",
	"आज मौसम बहुत अच्छा है।",
	"प्रधानमंत्री ने देश को संबोधित किया।",
	"विद्यालय में विद्यार्थी पढ़ते हैं।",
}

// WriteCorpus writes lines to a temporary corpus file and returns its path.
// With no lines it writes SampleCorpus.
func WriteCorpus(tb testing.TB, lines ...string) string {
	tb.Helper()

	if len(lines) == 0 {
		lines = SampleCorpus
	}
	path := filepath.Join(tb.TempDir(), "corpus.txt")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		tb.Fatalf("write corpus: %v", err)
	}
	return path
}

// AssertIDsInRange fails the test if any id is negative or not below size.
func AssertIDsInRange(tb testing.TB, ids []int, size int) {
	tb.Helper()

	for i, id := range ids {
		if id < 0 || id >= size {
			tb.Fatalf("id[%d] = %d out of range [0, %d)", i, id, size)
		}
	}
}
