// Package train learns merge rules from word frequencies and grows a
// vocabulary store toward a target size.
package train

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/example/go-hindi-bpe/internal/lexicon"
	"github.com/example/go-hindi-bpe/internal/segment"
	"github.com/example/go-hindi-bpe/internal/vocab"
)

// wholeWordFactor times the minimum frequency is the count above which a word
// is added to the vocabulary whole instead of being segmented.
const wholeWordFactor = 5

// Stop reasons reported in Result.
const (
	StopTargetReached = "target reached"
	StopNoPairs       = "no pairs"
	StopNoCandidates  = "no plausible pairs"
	StopNoProgress    = "no new tokens"
	StopCancelled     = "cancelled"
)

// Iteration records the outcome of one merge round.
type Iteration struct {
	Index     int
	Pairs     int
	Merges    int
	VocabSize int
	Best      Pair
	BestScore int
}

// Result summarizes a training run.
type Result struct {
	SeedSize   int
	WholeWords int
	Segmented  int
	Dropped    int
	Merges     int
	VocabSize  int
	StopReason string
	Iterations []Iteration
	Duration   time.Duration
}

// word is one distinct corpus word in its current segmentation.
type word struct {
	tokens []string
	freq   int
}

// Trainer runs the merge loop against a vocabulary store.
type Trainer struct {
	tables   *lexicon.Tables
	store    *vocab.Store
	seg      *segment.Segmenter
	strategy Strategy
	rules    []BoostRule
	logger   *slog.Logger
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithStrategy sets the pair selection strategy. Boosted is the default.
func WithStrategy(s Strategy) Option {
	return func(t *Trainer) {
		t.strategy = s
	}
}

// WithBoostRules replaces the boost precedence list.
func WithBoostRules(rules []BoostRule) Option {
	return func(t *Trainer) {
		t.rules = rules
	}
}

// WithLogger sets the logger used for progress reporting.
func WithLogger(l *slog.Logger) Option {
	return func(t *Trainer) {
		t.logger = l
	}
}

// New returns a Trainer that grows store. The segmenter reads the same store,
// so tokens learned earlier are visible when later words are segmented.
func New(tables *lexicon.Tables, store *vocab.Store, opts ...Option) *Trainer {
	t := &Trainer{
		tables:   tables,
		store:    store,
		seg:      segment.New(tables, store),
		strategy: Boosted,
		rules:    DefaultBoostRules(tables),
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Train grows the store from counts until it holds target tokens or no
// further merge is possible. Words rarer than minFreq are ignored. The
// context is checked between iterations; on cancellation the store keeps
// every merge completed so far and the context error is returned.
func (t *Trainer) Train(ctx context.Context, counts map[string]int, target, minFreq int) (Result, error) {
	start := time.Now()
	res := Result{SeedSize: t.store.Len()}

	words := t.prepare(counts, target, minFreq, &res)
	t.logger.Info("training prepared",
		slog.String("strategy", string(t.strategy)),
		slog.Int("seed_size", res.SeedSize),
		slog.Int("whole_words", res.WholeWords),
		slog.Int("segmented", res.Segmented),
		slog.Int("dropped", res.Dropped),
		slog.Int("target", target),
	)

	for {
		if t.store.Len() >= target {
			res.StopReason = StopTargetReached
			break
		}
		if err := ctx.Err(); err != nil {
			res.StopReason = StopCancelled
			t.finish(&res, start)
			return res, fmt.Errorf("training interrupted: %w", err)
		}

		stats := t.pairStats(words)
		if len(stats) == 0 {
			res.StopReason = StopNoPairs
			break
		}

		selected := t.selectPairs(stats)
		if len(selected) == 0 {
			res.StopReason = StopNoCandidates
			break
		}

		it := Iteration{Index: len(res.Iterations), Pairs: len(stats), Best: selected[0].Pair, BestScore: selected[0].Score}
		for _, c := range selected {
			if t.store.Len() >= target {
				break
			}
			merged := c.Merged()
			if _, ok := t.store.Lookup(merged); ok {
				continue
			}
			for _, w := range words {
				w.tokens = rewrite(w.tokens, c.Left, c.Right, merged)
			}
			t.store.AddMerge(c.Left, c.Right)
			it.Merges++
		}
		if it.Merges == 0 {
			res.StopReason = StopNoProgress
			break
		}

		it.VocabSize = t.store.Len()
		res.Merges += it.Merges
		res.Iterations = append(res.Iterations, it)

		rule, _ := match(t.rules, it.Best.Merged())
		t.logger.Debug("merge iteration",
			slog.Int("iteration", it.Index),
			slog.Int("merges", it.Merges),
			slog.Int("vocab_size", it.VocabSize),
			slog.String("best_pair", it.Best.Left+"+"+it.Best.Right),
			slog.Int("best_score", it.BestScore),
			slog.String("rule", rule),
		)
	}

	t.finish(&res, start)
	t.logger.Info("training finished",
		slog.String("stop_reason", res.StopReason),
		slog.Int("merges", res.Merges),
		slog.Int("vocab_size", res.VocabSize),
		slog.Int("iterations", len(res.Iterations)),
		slog.Int64("duration_ms", res.Duration.Milliseconds()),
	)
	return res, nil
}

func (t *Trainer) finish(res *Result, start time.Time) {
	res.VocabSize = t.store.Len()
	res.Duration = time.Since(start)
}

// prepare drops rare words, registers frequent and common words whole, and
// segments the rest. Words are visited by descending frequency so the most
// frequent whole words claim the remaining vocabulary room first.
func (t *Trainer) prepare(counts map[string]int, target, minFreq int, res *Result) []*word {
	type entry struct {
		text string
		freq int
	}
	entries := make([]entry, 0, len(counts))
	for w, f := range counts {
		entries = append(entries, entry{text: w, freq: f})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(b.freq, a.freq); c != 0 {
			return c
		}
		return cmp.Compare(a.text, b.text)
	})

	words := make([]*word, 0, len(entries))
	for _, e := range entries {
		switch {
		case e.text == "":
		case e.freq < minFreq:
			res.Dropped++
		case t.tables.IsCommonWord(e.text) || e.freq > wholeWordFactor*minFreq:
			if t.store.Len() < target {
				t.store.Add(e.text)
			}
			res.WholeWords++
		default:
			words = append(words, &word{tokens: t.seg.Segment(e.text), freq: e.freq})
			res.Segmented++
		}
	}
	return words
}

// pairStats counts adjacent pairs weighted by word frequency and, for the
// boosted strategy, the boost of the merged string.
func (t *Trainer) pairStats(words []*word) map[Pair]int {
	stats := make(map[Pair]int)
	boosts := make(map[string]int)
	for _, w := range words {
		for i := 0; i+1 < len(w.tokens); i++ {
			p := Pair{Left: w.tokens[i], Right: w.tokens[i+1]}
			weight := DefaultWeight
			if t.strategy == Boosted {
				merged := p.Merged()
				b, ok := boosts[merged]
				if !ok {
					b = Boost(t.rules, merged)
					boosts[merged] = b
				}
				weight = b
			}
			stats[p] += w.freq * weight
		}
	}
	return stats
}

func (t *Trainer) selectPairs(stats map[Pair]int) []Candidate {
	if t.strategy == Baseline {
		return selectBaseline(stats, func(s string) bool {
			_, ok := t.store.Lookup(s)
			return ok
		})
	}
	return selectBoosted(t.tables, stats)
}

// rewrite replaces adjacent left,right occurrences with merged in a single
// left-to-right non-overlapping scan. It reuses the tokens backing array.
func rewrite(tokens []string, left, right, merged string) []string {
	j := 0
	for i := 0; i < len(tokens); {
		if i+1 < len(tokens) && tokens[i] == left && tokens[i+1] == right {
			tokens[j] = merged
			i += 2
		} else {
			tokens[j] = tokens[i]
			i++
		}
		j++
	}
	return tokens[:j]
}
