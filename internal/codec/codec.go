// Package codec maps text to token IDs and back over a trained vocabulary.
package codec

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/example/go-hindi-bpe/internal/lexicon"
	"github.com/example/go-hindi-bpe/internal/segment"
	"github.com/example/go-hindi-bpe/internal/text"
	"github.com/example/go-hindi-bpe/internal/vocab"
)

// spaceBeforePunct matches whitespace directly ahead of sentence punctuation.
var spaceBeforePunct = regexp.MustCompile(`\s+([।?!,])`)

// Codec encodes and decodes against a vocabulary store. It never mutates the
// store, so one Codec can serve concurrent callers once training is done.
type Codec struct {
	tables *lexicon.Tables
	norm   *text.Normalizer
	store  *vocab.Store
	seg    *segment.Segmenter
}

// New returns a Codec over store.
func New(tables *lexicon.Tables, store *vocab.Store) *Codec {
	return &Codec{
		tables: tables,
		norm:   text.NewNormalizer(tables),
		store:  store,
		seg:    segment.New(tables, store),
	}
}

// Encode normalizes s and returns one ID per subword. Subwords missing from
// the vocabulary map to the unknown token's ID. The result is never longer
// than the number of codepoints in the normalized text, which can exceed
// that of s when normalization expands characters.
func (c *Codec) Encode(s string) []int {
	tokens := c.EncodeTokens(s)
	ids := make([]int, len(tokens))
	unk := c.store.UnknownID()
	for i, tok := range tokens {
		id, ok := c.store.Lookup(tok)
		if !ok {
			id = unk
		}
		ids[i] = id
	}
	return ids
}

// EncodeTokens is Encode without the final ID lookup: it returns the subword
// strings, including ones the vocabulary does not hold.
func (c *Codec) EncodeTokens(s string) []string {
	words := text.Words(c.norm.Normalize(s))
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := c.store.Lookup(w); ok {
			tokens = append(tokens, w)
			continue
		}
		tokens = append(tokens, c.seg.Segment(w)...)
	}
	return tokens
}

// Decode maps ids back to text. Unassigned IDs become the unknown token.
// Tokens beginning with a dependent mark and punctuation tokens attach to
// what precedes them; every other token is preceded by a space. Whitespace is
// then collapsed and spaces before sentence punctuation removed. Decode is a
// best-effort reconstruction and does not restore the original word
// boundaries.
func (c *Codec) Decode(ids []int) string {
	if len(ids) == 0 {
		return ""
	}
	var b strings.Builder
	for _, id := range ids {
		tok := c.store.ReverseLookup(id)
		if !c.attaches(tok) {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	return spaceBeforePunct.ReplaceAllString(out, "$1")
}

func (c *Codec) attaches(tok string) bool {
	if c.tables.IsPunctuation(tok) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(tok)
	return c.tables.IsMark(r)
}

// Vocab returns the underlying store.
func (c *Codec) Vocab() *vocab.Store { return c.store }

// Normalizer returns the normalizer applied by Encode.
func (c *Codec) Normalizer() *text.Normalizer { return c.norm }
