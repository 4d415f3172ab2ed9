// Package vocab owns the token↔ID bijection and the ordered merge rules.
package vocab

import (
	"errors"
	"fmt"

	"github.com/example/go-hindi-bpe/internal/lexicon"
)

// ErrNotBijective is returned by Restore when the entries do not form a
// one-to-one mapping between tokens and non-negative IDs.
var ErrNotBijective = errors.New("vocabulary is not a bijection")

// rawAlphabetSize is the number of leading codepoints (U+0000..U+00FF)
// seeded before anything else.
const rawAlphabetSize = 256

// Merge is one learned rule: Left followed by Right becomes Merged.
type Merge struct {
	Left   string
	Right  string
	Merged string
	Rank   int
}

// Store is a vocabulary arena: a hash map from token to ID and an indexed
// slice from ID to token. IDs are plain ints, dense from zero.
//
// A Store is not safe for concurrent mutation. Once training is finished it
// can be shared read-only.
type Store struct {
	ids     map[string]int
	tokens  []string
	merges  []Merge
	unknown string
}

// New returns an empty Store whose fallback token is unknown. capacity is a
// sizing hint.
func New(unknown string, capacity int) *Store {
	if capacity < 0 {
		capacity = 0
	}
	return &Store{
		ids:     make(map[string]int, capacity),
		tokens:  make([]string, 0, capacity),
		unknown: unknown,
	}
}

// Seed builds a Store populated in this order: raw codepoints U+0000..U+00FF,
// special tokens, punctuation, common words, independent vowels, consonants,
// the nukta, dependent marks and precomputed syllables. Strings already
// present are skipped, so IDs stay dense.
func Seed(tables *lexicon.Tables) *Store {
	syllables := tables.Syllables()
	s := New(lexicon.Unknown, rawAlphabetSize+len(syllables)+512)

	for r := rune(0); r < rune(rawAlphabetSize); r++ {
		s.Add(string(r))
	}
	for _, tok := range tables.SpecialTokens {
		s.Add(tok)
	}
	for _, p := range tables.Punctuation {
		s.Add(p)
	}
	for _, w := range tables.CommonWords {
		s.Add(w)
	}
	for _, r := range tables.Vowels {
		s.Add(string(r))
	}
	for _, r := range tables.Consonants {
		s.Add(string(r))
	}
	s.Add(string(lexicon.Nukta))
	for _, r := range tables.Marks {
		s.Add(string(r))
	}
	for _, syl := range syllables {
		s.Add(syl)
	}

	return s
}

// Add appends token with the next free ID, or returns the existing ID if the
// token is already present. The empty string is never stored; Add returns -1
// for it.
func (s *Store) Add(token string) int {
	if token == "" {
		return -1
	}
	if id, ok := s.ids[token]; ok {
		return id
	}
	id := len(s.tokens)
	s.ids[token] = id
	s.tokens = append(s.tokens, token)
	return id
}

// Lookup returns the ID of token.
func (s *Store) Lookup(token string) (int, bool) {
	id, ok := s.ids[token]
	return id, ok
}

// Token returns the token with the given ID. ok is false for IDs outside
// the assigned range.
func (s *Store) Token(id int) (string, bool) {
	if id < 0 || id >= len(s.tokens) {
		return "", false
	}
	tok := s.tokens[id]
	return tok, tok != ""
}

// ReverseLookup returns the token with the given ID, or the unknown token
// string when the ID is not assigned.
func (s *Store) ReverseLookup(id int) string {
	if tok, ok := s.Token(id); ok {
		return tok
	}
	return s.unknown
}

// Unknown returns the fallback token string.
func (s *Store) Unknown() string { return s.unknown }

// UnknownID returns the ID of the fallback token, or -1 if it has not been
// added.
func (s *Store) UnknownID() int {
	if id, ok := s.ids[s.unknown]; ok {
		return id
	}
	return -1
}

// Len returns the number of tokens.
func (s *Store) Len() int { return len(s.ids) }

// AddMerge registers left+right as a token and records the rule. The rule's
// rank is its position in learn order. It returns the merged token's ID.
func (s *Store) AddMerge(left, right string) int {
	merged := left + right
	id := s.Add(merged)
	s.merges = append(s.merges, Merge{
		Left:   left,
		Right:  right,
		Merged: merged,
		Rank:   len(s.merges),
	})
	return id
}

// Merges returns a copy of the rules in learn order.
func (s *Store) Merges() []Merge {
	return append([]Merge(nil), s.merges...)
}

// Entries returns a copy of the token→ID mapping.
func (s *Store) Entries() map[string]int {
	out := make(map[string]int, len(s.ids))
	for tok, id := range s.ids {
		out[tok] = id
	}
	return out
}

// Restore builds a Store from persisted entries and merges. It rejects
// empty tokens, IDs outside [0, len(entries)) and shared IDs, requires the unknown token to be
// present, and requires every merge's tokens to exist. On error nothing is
// returned, so callers never see a half-built vocabulary.
func Restore(unknown string, entries map[string]int, merges []Merge) (*Store, error) {
	for tok, id := range entries {
		if tok == "" {
			return nil, fmt.Errorf("%w: empty token", ErrNotBijective)
		}
		if id < 0 || id >= len(entries) {
			return nil, fmt.Errorf("%w: id %d for %q outside [0, %d)", ErrNotBijective, id, tok, len(entries))
		}
	}

	s := New(unknown, len(entries))
	s.tokens = make([]string, len(entries))
	for tok, id := range entries {
		if prev := s.tokens[id]; prev != "" {
			return nil, fmt.Errorf("%w: id %d shared by %q and %q", ErrNotBijective, id, prev, tok)
		}
		s.tokens[id] = tok
		s.ids[tok] = id
	}

	if _, ok := s.ids[unknown]; !ok {
		return nil, fmt.Errorf("unknown token %q missing from vocabulary", unknown)
	}

	for i, m := range merges {
		for _, tok := range []string{m.Left, m.Right, m.Left + m.Right} {
			if _, ok := s.ids[tok]; !ok {
				return nil, fmt.Errorf("merge %d (%q + %q): token %q not in vocabulary", i, m.Left, m.Right, tok)
			}
		}
		s.merges = append(s.merges, Merge{
			Left:   m.Left,
			Right:  m.Right,
			Merged: m.Left + m.Right,
			Rank:   i,
		})
	}

	return s, nil
}
