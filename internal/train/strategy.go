package train

import (
	"cmp"
	"fmt"
	"strings"
	"unicode/utf8"

	heap "github.com/emirpasic/gods/v2/trees/binaryheap"

	"github.com/example/go-hindi-bpe/internal/lexicon"
)

// Strategy selects which candidate pairs are merged in one iteration.
type Strategy string

const (
	// Boosted weights pairs with the boost rules and keeps only
	// linguistically plausible merges.
	Boosted Strategy = "boosted"
	// Baseline is plain frequency-max BPE: one best new pair per iteration.
	Baseline Strategy = "baseline"
)

const (
	// topCandidates bounds how many ranked pairs the boosted strategy looks at.
	topCandidates = 50
	// maxMergesPerIteration bounds how many plausible pairs are kept.
	maxMergesPerIteration = 10
	// minPlausibleLen is the exclusive lower bound, in codepoints, on a
	// plausible merged token.
	minPlausibleLen = 3
)

// ParseStrategy maps a name to a Strategy. Matching is case-insensitive and
// the empty string selects Boosted.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(name))) {
	case "", Boosted:
		return Boosted, nil
	case Baseline:
		return Baseline, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (want %q or %q)", name, Boosted, Baseline)
	}
}

// Pair is an ordered pair of adjacent tokens.
type Pair struct {
	Left  string
	Right string
}

// Merged returns the concatenation of the pair.
func (p Pair) Merged() string { return p.Left + p.Right }

// Candidate is a pair with its weighted score.
type Candidate struct {
	Pair
	Score int
}

// rank orders candidates by score descending, then lexicographically by left
// and right token so iteration order of the statistics map never matters.
func rank(stats map[Pair]int) *heap.Heap[Candidate] {
	h := heap.NewWith(func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := strings.Compare(a.Left, b.Left); c != 0 {
			return c
		}
		return strings.Compare(a.Right, b.Right)
	})
	for p, score := range stats {
		h.Push(Candidate{Pair: p, Score: score})
	}
	return h
}

// plausible reports whether merged is long enough and looks like a morpheme
// boundary: a known suffix, a known prefix or a conjunct.
func plausible(t *lexicon.Tables, merged string) bool {
	if utf8.RuneCountInString(merged) <= minPlausibleLen {
		return false
	}
	return t.EndsWithSuffix(merged) || t.StartsWithPrefix(merged) || lexicon.HasJoiner(merged)
}

// selectBoosted takes the top candidates and keeps the plausible ones.
func selectBoosted(t *lexicon.Tables, stats map[Pair]int) []Candidate {
	h := rank(stats)
	var out []Candidate
	for i := 0; i < topCandidates; i++ {
		c, ok := h.Pop()
		if !ok {
			break
		}
		if !plausible(t, c.Merged()) {
			continue
		}
		out = append(out, c)
		if len(out) == maxMergesPerIteration {
			break
		}
	}
	return out
}

// selectBaseline returns the best candidate whose merged token is not yet
// known.
func selectBaseline(stats map[Pair]int, known func(string) bool) []Candidate {
	h := rank(stats)
	for !h.Empty() {
		c, _ := h.Pop()
		if !known(c.Merged()) {
			return []Candidate{c}
		}
	}
	return nil
}
