// Package lexicon holds the fixed Devanagari tables shared by the
// normalizer, segmenter, trainer and codec.
//
// A Tables value is built once and never mutated afterwards; callers pass it
// around by pointer.
package lexicon

import "strings"

const (
	// Joiner is the virama (halant) that links consonants into conjuncts.
	Joiner = '्'
	// Nukta modifies a base consonant for borrowed sounds.
	Nukta = '़'
)

// Unknown, Pad, Begin and End are the reserved special tokens, in ID order.
const (
	Unknown = "[UNK]"
	Pad     = "[PAD]"
	Begin   = "[BOS]"
	End     = "[EOS]"
)

// Mapping replaces every occurrence of From with To during normalization.
type Mapping struct {
	From string
	To   string
}

// Tables is the immutable heuristic data for Hindi.
type Tables struct {
	SpecialTokens []string
	Punctuation   []string
	CommonWords   []string
	Vowels        []rune
	Consonants    []rune
	// Marks are the dependent signs seeded individually: vowel signs,
	// nasalization, visarga and the joiner.
	Marks []rune
	// SyllableMarks are combined with every consonant to precompute
	// consonant+matra syllables.
	SyllableMarks []rune
	VerbSuffixes  []string
	Suffixes      []string
	Prefixes      []string
	Mappings      []Mapping

	common     map[string]struct{}
	punct      map[string]struct{}
	consonants map[rune]struct{}
	vowels     map[rune]struct{}
	marks      map[rune]struct{}
}

// Default returns the Hindi tables.
func Default() *Tables {
	t := &Tables{
		SpecialTokens: []string{Unknown, Pad, Begin, End},
		Punctuation:   []string{"।", "?", "!", ","},
		CommonWords: []string{
			"में", "का", "की", "के", "है", "से", "को", "और", "ने", "पर",
			"कर", "था", "थी", "थे", "हैं", "गया", "गयी", "गये", "रहा", "रही",
			"एक", "यह", "वह", "कि", "जो", "तो", "भी", "हो", "कुछ", "अब",
			"लिए", "साथ", "बाद", "लिया", "दिया", "करने", "किया", "होता", "करते",
			"बात", "लोग", "काम", "देश", "समय", "दिन", "कहा", "होने", "बार", "जाता",
		},
		Vowels:        []rune("अआइईउऊऋएऐओऔ"),
		Consonants:    []rune("कखगघङचछजझञटठडढणतथदधनपफबभमयरलवशषसह"),
		Marks:         []rune("ािीुूृेैोौॅॉंःँ्"),
		SyllableMarks: []rune("ािीुूृेैोौं"),
		VerbSuffixes:  []string{"ना", "ता", "ते", "ती", "गा", "गी", "या", "ये", "कर"},
		Suffixes: []string{
			"ों", "ाएं", "ाओं", "ाता", "ाती", "ाते", "ाना", "ाने", "ेगा", "ेगी",
			"कर", "िया", "ियों", "वाला", "वाले", "वाली", "कार", "ता", "त्व", "मान",
		},
		Prefixes: []string{
			"अन", "अध", "उप", "प्र", "सम", "अभि", "परि", "विश", "सर्व",
			"महा", "अति", "सु", "कु", "नि", "दुर्", "स्व", "अनु",
		},
		Mappings: []Mapping{
			{From: "ऍ", To: "ए"},
			{From: "ॲ", To: "अ"},
			{From: "ॐ", To: "ओम्"},
			// NFKC leaves nukta consonants decomposed as base + U+093C.
			{From: "क\u093c", To: "क"},
			{From: "ख\u093c", To: "ख"},
			{From: "ग\u093c", To: "ग"},
			{From: "ज\u093c", To: "ज"},
			{From: "ड\u093c", To: "ड"},
			{From: "ढ\u093c", To: "ढ"},
			{From: "फ\u093c", To: "फ"},
			{From: "\u200b", To: " "},
			{From: "\u200c", To: ""},
			{From: "\u200d", To: ""},
			{From: "\u00a0", To: " "},
		},
	}
	t.index()
	return t
}

func (t *Tables) index() {
	t.common = toSet(t.CommonWords)
	t.punct = toSet(t.Punctuation)
	t.consonants = runeSet(t.Consonants)
	t.vowels = runeSet(t.Vowels)
	t.marks = runeSet(t.Marks)
	t.marks[Nukta] = struct{}{}
}

func toSet(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, s := range items {
		m[s] = struct{}{}
	}
	return m
}

func runeSet(items []rune) map[rune]struct{} {
	m := make(map[rune]struct{}, len(items))
	for _, r := range items {
		m[r] = struct{}{}
	}
	return m
}

// IsCommonWord reports whether s is one of the common whole words.
func (t *Tables) IsCommonWord(s string) bool {
	_, ok := t.common[s]
	return ok
}

// IsPunctuation reports whether s is a sentence punctuation token.
func (t *Tables) IsPunctuation(s string) bool {
	_, ok := t.punct[s]
	return ok
}

func (t *Tables) IsConsonant(r rune) bool {
	_, ok := t.consonants[r]
	return ok
}

func (t *Tables) IsVowel(r rune) bool {
	_, ok := t.vowels[r]
	return ok
}

// IsBase reports whether r can stand on its own: a vowel, a consonant or
// the nukta.
func (t *Tables) IsBase(r rune) bool {
	return t.IsConsonant(r) || t.IsVowel(r) || r == Nukta
}

// IsMark reports whether r is a dependent sign that attaches to the
// preceding character (vowel sign, nasalization, visarga, joiner, nukta).
func (t *Tables) IsMark(r rune) bool {
	_, ok := t.marks[r]
	return ok
}

// IsVowelSign reports whether r is a matra or nasalization sign. The joiner
// and nukta are excluded.
func (t *Tables) IsVowelSign(r rune) bool {
	return r != Joiner && r != Nukta && t.IsMark(r)
}

// HasVowelSign reports whether s contains at least one matra or
// nasalization sign.
func (t *Tables) HasVowelSign(s string) bool {
	return strings.IndexFunc(s, t.IsVowelSign) >= 0
}

// HasJoiner reports whether s contains the joiner.
func HasJoiner(s string) bool {
	return strings.ContainsRune(s, Joiner)
}

// EndsWithVerbSuffix reports whether s ends with a verbal inflection.
func (t *Tables) EndsWithVerbSuffix(s string) bool {
	return hasAnySuffix(s, t.VerbSuffixes)
}

// EndsWithSuffix reports whether s ends with a nominal or derivational
// suffix.
func (t *Tables) EndsWithSuffix(s string) bool {
	return hasAnySuffix(s, t.Suffixes)
}

// StartsWithPrefix reports whether s starts with a known prefix.
func (t *Tables) StartsWithPrefix(s string) bool {
	for _, p := range t.Prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

// Syllables returns the precomputed syllables in a stable order: for each
// consonant, the bare consonant, consonant+matra for every syllable mark,
// then consonant+joiner+consonant for every consonant.
func (t *Tables) Syllables() []string {
	out := make([]string, 0, len(t.Consonants)*(1+len(t.SyllableMarks)+len(t.Consonants)))
	for _, c := range t.Consonants {
		out = append(out, string(c))
		for _, m := range t.SyllableMarks {
			out = append(out, string([]rune{c, m}))
		}
		for _, c2 := range t.Consonants {
			out = append(out, string([]rune{c, Joiner, c2}))
		}
	}
	return out
}
