// Package text canonicalizes raw Hindi text before segmentation.
package text

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/example/go-hindi-bpe/internal/lexicon"
)

// maxCanonicalPasses bounds the NFKC + substitution fixpoint loop. Every
// substitution either shortens the text or removes a nukta, so real input
// settles after two passes.
const maxCanonicalPasses = 8

var (
	dashRun = regexp.MustCompile(`[-_]+`)
	dotRun  = regexp.MustCompile(`\.{2,}`)
	quotes  = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
		"‘", `"`, "’", `"`, "‚", `"`, "‛", `"`,
		"'", `"`,
	)
)

// Normalizer applies Unicode composition, the legacy character table and
// whitespace/punctuation cleanup. It is safe for concurrent use.
type Normalizer struct {
	mappings *strings.Replacer
}

// NewNormalizer builds a Normalizer from the substitution table in tables.
func NewNormalizer(tables *lexicon.Tables) *Normalizer {
	pairs := make([]string, 0, 2*len(tables.Mappings))
	for _, m := range tables.Mappings {
		if m.From == m.To {
			continue
		}
		pairs = append(pairs, m.From, m.To)
	}
	return &Normalizer{mappings: strings.NewReplacer(pairs...)}
}

// Normalize returns the canonical form of s:
//  1. trim surrounding whitespace
//  2. NFKC
//  3. legacy/alternate character substitutions
//  4. collapse whitespace runs to one space
//  5. collapse runs of '-' and '_' to '-'
//  6. map curly and straight quotes to '"'
//  7. collapse two or more periods to "..."
//
// Normalize(Normalize(s)) == Normalize(s) for every s.
func (n *Normalizer) Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	s = n.canonical(s)
	s = strings.Join(strings.Fields(s), " ")
	s = dashRun.ReplaceAllString(s, "-")
	s = quotes.Replace(s)
	s = dotRun.ReplaceAllString(s, "...")

	return s
}

// canonical runs NFKC and the substitution table until neither changes the
// text. Dropping a joiner can put a nukta or mark next to a new neighbour,
// which a single pass would leave for the next call to rewrite.
func (n *Normalizer) canonical(s string) string {
	for i := 0; i < maxCanonicalPasses; i++ {
		next := n.mappings.Replace(norm.NFKC.String(s))
		if next == s {
			break
		}
		s = next
	}
	return s
}

// Words splits normalized text into whitespace-delimited words.
func Words(s string) []string {
	return strings.Fields(s)
}
