package segment

import (
	"strings"
	"testing"

	"github.com/example/go-hindi-bpe/internal/lexicon"
	"github.com/example/go-hindi-bpe/internal/text"
	"github.com/example/go-hindi-bpe/internal/vocab"
)

// mapVocab is a fixed vocabulary for tests.
type mapVocab map[string]int

func (m mapVocab) Lookup(token string) (int, bool) {
	id, ok := m[token]
	return id, ok
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSegment_SeededVocabulary(t *testing.T) {
	tables := lexicon.Default()
	seg := New(tables, vocab.Seed(tables))

	tests := []struct {
		name string
		word string
		want []string
	}{
		{name: "common word is returned whole", word: "है", want: []string{"है"}},
		{name: "unseen word splits into letters", word: "घर", want: []string{"घ", "र"}},
		{name: "conjunct syllable stays together", word: "नमस्ते", want: []string{"न", "म", "स्त", "े"}},
		{name: "bare consonants split one by one", word: "कमल", want: []string{"क", "म", "ल"}},
		{name: "longer conjunct chain", word: "स्त्री", want: []string{"स्त्र", "ी"}},
		{name: "empty word", word: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := seg.Segment(tt.word)
			if !equalStrings(got, tt.want) {
				t.Errorf("Segment(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestSegmentPieces_Priority(t *testing.T) {
	tables := lexicon.Default()

	tests := []struct {
		name  string
		vocab mapVocab
		word  string
		want  []Piece
	}{
		{
			name:  "vocabulary beats common word",
			vocab: mapVocab{"का": 1},
			word:  "का",
			want:  []Piece{{Text: "का", Kind: KindVocab}},
		},
		{
			name:  "common word beats syllable",
			vocab: mapVocab{},
			word:  "काम",
			want:  []Piece{{Text: "काम", Kind: KindCommonWord}},
		},
		{
			name:  "syllable when nothing else matches",
			vocab: mapVocab{},
			word:  "खी",
			want:  []Piece{{Text: "खी", Kind: KindSyllable}},
		},
		{
			name:  "joiner chain of base letters",
			vocab: mapVocab{},
			word:  "स्त्र",
			want:  []Piece{{Text: "स्त्र", Kind: KindConjunct}},
		},
		{
			name:  "fallback keeps trailing marks attached",
			vocab: mapVocab{},
			word:  "ऋँ",
			want:  []Piece{{Text: "ऋँ", Kind: KindFallback}},
		},
		{
			name:  "fallback for symbols outside the script",
			vocab: mapVocab{},
			word:  "ab",
			want:  []Piece{{Text: "a", Kind: KindFallback}, {Text: "b", Kind: KindFallback}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tables, tt.vocab).SegmentPieces(tt.word)
			if len(got) != len(tt.want) {
				t.Fatalf("SegmentPieces(%q) = %+v, want %+v", tt.word, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("piece %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSegment_LongestMatchWins(t *testing.T) {
	tables := lexicon.Default()
	seg := New(tables, mapVocab{"नम": 1, "नमस्": 2})

	got := seg.Segment("नमस्ते")
	want := []string{"नमस्", "ते"}
	if !equalStrings(got, want) {
		t.Errorf("Segment = %q, want %q", got, want)
	}
}

func TestSegment_ConcatenationReproducesWord(t *testing.T) {
	tables := lexicon.Default()
	norm := text.NewNormalizer(tables)
	seg := New(tables, vocab.Seed(tables))

	words := []string{
		"मैं", "आपसे", "मिलकर", "खुश", "हूं", "कृपया", "धन्यवाद",
		"ज़िंदगी", "फ़िल्म", "प्रोफेसर", "डॉक्टर", "क्षत्रिय", "ज्ञान",
		"श्रीमान", "द्वारा", "उन्होंने", "स्त्रियाँ", "hello", "2024",
		"ॐ", "क्\u200dष", "अंग्रेज़ी", "…", "ऋषि", "😀नमस्ते",
	}

	for _, w := range words {
		n := norm.Normalize(w)
		got := strings.Join(seg.Segment(n), "")
		if got != n {
			t.Errorf("join(Segment(%q)) = %q, want %q", n, got, n)
		}
	}
}

func TestKind_String(t *testing.T) {
	if KindConjunct.String() != "conjunct" {
		t.Errorf("KindConjunct.String() = %q", KindConjunct.String())
	}
	if Kind(99).String() != "unknown" {
		t.Errorf("Kind(99).String() = %q", Kind(99).String())
	}
}
