// Package segment splits a normalized Hindi word into its initial subword
// units using Devanagari structure: base letters, attached matras,
// joiner-linked conjuncts, known syllables and common words.
package segment

import (
	"strings"

	"github.com/derekparker/trie"

	"github.com/example/go-hindi-bpe/internal/lexicon"
)

// MaxMatch is the longest candidate, in codepoints, tried at each position.
const MaxMatch = 12

// Kind names the rule that produced a piece.
type Kind int

const (
	KindVocab Kind = iota
	KindCommonWord
	KindSyllable
	KindConjunct
	KindCluster
	KindFallback
)

func (k Kind) String() string {
	switch k {
	case KindVocab:
		return "vocab"
	case KindCommonWord:
		return "common-word"
	case KindSyllable:
		return "syllable"
	case KindConjunct:
		return "conjunct"
	case KindCluster:
		return "cluster"
	case KindFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Piece is one segment of a word together with the rule that emitted it.
type Piece struct {
	Text string
	Kind Kind
}

// Vocabulary is the read side of the token store the segmenter consults.
type Vocabulary interface {
	Lookup(token string) (int, bool)
}

// Segmenter performs longest-match-first segmentation. The vocabulary may
// keep growing between calls (as it does during training); the common word
// and syllable index is fixed at construction.
type Segmenter struct {
	tables *lexicon.Tables
	vocab  Vocabulary
	known  *trie.Trie
}

// New returns a Segmenter over the given tables and vocabulary.
func New(tables *lexicon.Tables, vocab Vocabulary) *Segmenter {
	known := trie.New()
	for _, syl := range tables.Syllables() {
		known.Add(syl, KindSyllable)
	}
	// Common words win over syllables that happen to spell the same string.
	for _, w := range tables.CommonWords {
		known.Add(w, KindCommonWord)
	}
	return &Segmenter{tables: tables, vocab: vocab, known: known}
}

// Segment returns the subword strings of word. Joining them yields word.
func (s *Segmenter) Segment(word string) []string {
	pieces := s.SegmentPieces(word)
	out := make([]string, len(pieces))
	for i, p := range pieces {
		out[i] = p.Text
	}
	return out
}

// SegmentPieces is Segment with the producing rule attached to each piece.
func (s *Segmenter) SegmentPieces(word string) []Piece {
	if word == "" {
		return nil
	}
	if _, ok := s.vocab.Lookup(word); ok {
		return []Piece{{Text: word, Kind: KindVocab}}
	}

	runes := []rune(word)
	pieces := make([]Piece, 0, len(runes))
	for i := 0; i < len(runes); {
		if p, n, ok := s.longestKnown(runes[i:]); ok {
			pieces = append(pieces, p)
			i += n
			continue
		}
		if p, n, ok := s.cluster(runes[i:]); ok {
			pieces = append(pieces, p)
			i += n
			continue
		}
		p, n := s.fallback(runes[i:])
		pieces = append(pieces, p)
		i += n
	}
	return pieces
}

// longestKnown tries candidate lengths from min(len(rest), MaxMatch) down to
// one and returns the first one that is known.
func (s *Segmenter) longestKnown(rest []rune) (Piece, int, bool) {
	for n := min(len(rest), MaxMatch); n > 0; n-- {
		sub := string(rest[:n])
		if kind, ok := s.classify(sub); ok {
			return Piece{Text: sub, Kind: kind}, n, true
		}
	}
	return Piece{}, 0, false
}

// classify checks sub against vocabulary, common words, syllables and the
// conjunct shape, in that order.
func (s *Segmenter) classify(sub string) (Kind, bool) {
	if _, ok := s.vocab.Lookup(sub); ok {
		return KindVocab, true
	}
	if node, ok := s.known.Find(sub); ok {
		if kind, isKind := node.Meta().(Kind); isKind {
			return kind, true
		}
	}
	if s.isConjunct(sub) {
		return KindConjunct, true
	}
	return 0, false
}

// isConjunct reports whether sub is at least three codepoints long, contains
// the joiner, and every joiner-separated part is a single base letter or
// mark.
func (s *Segmenter) isConjunct(sub string) bool {
	if len([]rune(sub)) < 3 || !lexicon.HasJoiner(sub) {
		return false
	}
	for _, part := range strings.Split(sub, string(lexicon.Joiner)) {
		r := []rune(part)
		if len(r) != 1 || !(s.tables.IsBase(r[0]) || s.tables.IsMark(r[0])) {
			return false
		}
	}
	return true
}

// cluster grows consonant (joiner consonant)* mark* from the start of rest
// and accepts it only when the result is known. Both the joiner chain and
// the trailing marks need at least one more codepoint after the consonant.
func (s *Segmenter) cluster(rest []rune) (Piece, int, bool) {
	if len(rest) < 2 {
		return Piece{}, 0, false
	}
	n := 1
	for n+1 < len(rest) && rest[n] == lexicon.Joiner && s.tables.IsConsonant(rest[n+1]) {
		n += 2
	}
	for n < len(rest) && s.tables.IsMark(rest[n]) {
		n++
	}

	sub := string(rest[:n])
	if _, ok := s.vocab.Lookup(sub); ok {
		return Piece{Text: sub, Kind: KindCluster}, n, true
	}
	if node, ok := s.known.Find(sub); ok && node.Meta() == KindSyllable {
		return Piece{Text: sub, Kind: KindCluster}, n, true
	}
	return Piece{}, 0, false
}

// fallback emits one character plus any marks that directly follow it. It
// always consumes at least one codepoint.
func (s *Segmenter) fallback(rest []rune) (Piece, int) {
	n := 1
	for n < len(rest) && s.tables.IsMark(rest[n]) {
		n++
	}
	return Piece{Text: string(rest[:n]), Kind: KindFallback}, n
}
