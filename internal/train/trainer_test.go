package train

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"maps"
	"strings"
	"testing"

	"github.com/example/go-hindi-bpe/internal/lexicon"
	"github.com/example/go-hindi-bpe/internal/vocab"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// prefixCorpus segments into a shared prefix conjunct followed by a syllable
// and a consonant, so every first-round pair starting with the prefix is
// plausible.
var prefixCorpus = map[string]int{
	"प्रकाश": 5,
	"प्रसाद": 4,
	"प्रधान": 3,
}

// ---------------------------------------------------------------------------
// Boost rules
// ---------------------------------------------------------------------------

func TestBoost_Precedence(t *testing.T) {
	rules := DefaultBoostRules(lexicon.Default())

	tests := []struct {
		merged string
		want   int
	}{
		{merged: "है", want: 20},   // common word that also carries a matra
		{merged: "खा", want: 15},   // matra
		{merged: "पकर", want: 12},  // verbal suffix, no matra
		{merged: "मत्व", want: 10}, // nominal suffix beats the joiner rule
		{merged: "अनघ", want: 8},   // prefix only
		{merged: "क्ष", want: 6},   // joiner only
		{merged: "घट", want: DefaultWeight},
	}

	for _, tt := range tests {
		t.Run(tt.merged, func(t *testing.T) {
			if got := Boost(rules, tt.merged); got != tt.want {
				t.Errorf("Boost(%q) = %d, want %d", tt.merged, got, tt.want)
			}
		})
	}
}

func TestBoost_CustomRules(t *testing.T) {
	rules := []BoostRule{
		{Name: "first", Weight: 3, Match: func(s string) bool { return strings.HasPrefix(s, "a") }},
		{Name: "second", Weight: 9, Match: func(s string) bool { return strings.HasSuffix(s, "z") }},
	}
	if got := Boost(rules, "az"); got != 3 {
		t.Errorf("first matching rule should win, got %d", got)
	}
	if got := Boost(rules, "bz"); got != 9 {
		t.Errorf("Boost(bz) = %d, want 9", got)
	}
	if got := Boost(nil, "az"); got != DefaultWeight {
		t.Errorf("Boost with no rules = %d, want %d", got, DefaultWeight)
	}
}

// ---------------------------------------------------------------------------
// Strategy parsing and rewrite
// ---------------------------------------------------------------------------

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{in: "", want: Boosted},
		{in: "boosted", want: Boosted},
		{in: " Baseline ", want: Baseline},
		{in: "greedy", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseStrategy(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStrategy(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   []string
	}{
		{name: "every occurrence", tokens: []string{"a", "b", "a", "b"}, want: []string{"ab", "ab"}},
		{name: "non-overlapping left to right", tokens: []string{"a", "a", "a"}, want: []string{"aa", "a"}},
		{name: "pair not adjacent", tokens: []string{"a", "c", "b"}, want: []string{"a", "c", "b"}},
		{name: "empty", tokens: nil, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := "a", "b"
			if tt.name == "non-overlapping left to right" {
				right = "a"
			}
			got := rewrite(tt.tokens, left, right, left+right)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("rewrite = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Training
// ---------------------------------------------------------------------------

func TestTrain_BelowMinFreqLeavesSeedUntouched(t *testing.T) {
	tables := lexicon.Default()
	store := vocab.Seed(tables)
	seeded := store.Entries()

	tr := New(tables, store, WithLogger(quietLogger()))
	res, err := tr.Train(context.Background(), map[string]int{"घर": 1, "कमल": 1, "प्रकाश": 1}, store.Len()+100, 2)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	if res.Merges != 0 {
		t.Errorf("Merges = %d, want 0", res.Merges)
	}
	if res.Dropped != 3 {
		t.Errorf("Dropped = %d, want 3", res.Dropped)
	}
	if !maps.Equal(store.Entries(), seeded) {
		t.Error("vocabulary changed although every word was below min frequency")
	}
	if res.StopReason != StopNoPairs {
		t.Errorf("StopReason = %q, want %q", res.StopReason, StopNoPairs)
	}
}

func TestTrain_BoostedMerges(t *testing.T) {
	tables := lexicon.Default()
	store := vocab.Seed(tables)

	tr := New(tables, store, WithLogger(quietLogger()))
	res, err := tr.Train(context.Background(), prefixCorpus, store.Len()+100, 1)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	if res.Merges != 6 {
		t.Fatalf("Merges = %d, want 6", res.Merges)
	}
	for _, w := range []string{"प्रका", "प्रकाश", "प्रसाद", "प्रधान"} {
		if _, ok := store.Lookup(w); !ok {
			t.Errorf("expected %q in vocabulary", w)
		}
	}

	merges := store.Merges()
	if merges[0].Left != "प्र" || merges[0].Right != "का" {
		t.Errorf("first merge = %+v, want प्र + का", merges[0])
	}
	if merges[3].Merged != "प्रकाश" {
		t.Errorf("fourth merge = %+v, want प्रकाश", merges[3])
	}
	if res.StopReason != StopNoPairs {
		t.Errorf("StopReason = %q, want %q", res.StopReason, StopNoPairs)
	}
}

func TestTrain_MonotonicAndCapped(t *testing.T) {
	tables := lexicon.Default()
	store := vocab.Seed(tables)
	target := store.Len() + 2

	tr := New(tables, store, WithLogger(quietLogger()))
	res, err := tr.Train(context.Background(), prefixCorpus, target, 1)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	if store.Len() != target {
		t.Errorf("vocab size = %d, want %d", store.Len(), target)
	}
	if res.StopReason != StopTargetReached {
		t.Errorf("StopReason = %q, want %q", res.StopReason, StopTargetReached)
	}

	prev := res.SeedSize
	for _, it := range res.Iterations {
		if it.VocabSize < prev {
			t.Errorf("iteration %d shrank vocabulary: %d < %d", it.Index, it.VocabSize, prev)
		}
		if it.VocabSize > target {
			t.Errorf("iteration %d exceeded target: %d > %d", it.Index, it.VocabSize, target)
		}
		prev = it.VocabSize
	}
	if len(store.Merges()) != res.Merges {
		t.Errorf("recorded %d merges, result says %d", len(store.Merges()), res.Merges)
	}
}

func TestTrain_BaselinePicksOneFrequentPair(t *testing.T) {
	tables := lexicon.Default()
	store := vocab.Seed(tables)
	target := store.Len() + 1

	tr := New(tables, store, WithStrategy(Baseline), WithLogger(quietLogger()))
	if _, err := tr.Train(context.Background(), prefixCorpus, target, 1); err != nil {
		t.Fatalf("Train: %v", err)
	}

	merges := store.Merges()
	if len(merges) != 1 {
		t.Fatalf("len(Merges) = %d, want 1", len(merges))
	}
	// Two pairs tie at frequency 5; the lexicographically smaller left token
	// wins, and baseline ignores plausibility.
	if merges[0].Merged != "काश" {
		t.Errorf("baseline merged %q, want %q", merges[0].Merged, "काश")
	}
}

func TestTrain_FrequentWordsAddedWhole(t *testing.T) {
	tables := lexicon.Default()

	t.Run("above threshold", func(t *testing.T) {
		store := vocab.Seed(tables)
		tr := New(tables, store, WithLogger(quietLogger()))
		res, err := tr.Train(context.Background(), map[string]int{"दुनिया": 11}, store.Len()+10, 2)
		if err != nil {
			t.Fatalf("Train: %v", err)
		}
		if res.WholeWords != 1 {
			t.Errorf("WholeWords = %d, want 1", res.WholeWords)
		}
		if _, ok := store.Lookup("दुनिया"); !ok {
			t.Error("frequent word not added whole")
		}
	})

	t.Run("vocabulary already full", func(t *testing.T) {
		store := vocab.Seed(tables)
		size := store.Len()
		tr := New(tables, store, WithLogger(quietLogger()))
		if _, err := tr.Train(context.Background(), map[string]int{"दुनिया": 11}, size, 2); err != nil {
			t.Fatalf("Train: %v", err)
		}
		if store.Len() != size {
			t.Errorf("vocab grew past target: %d > %d", store.Len(), size)
		}
	})
}

func TestTrain_Cancelled(t *testing.T) {
	tables := lexicon.Default()
	store := vocab.Seed(tables)
	seeded := store.Len()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := New(tables, store, WithLogger(quietLogger()))
	res, err := tr.Train(ctx, prefixCorpus, seeded+100, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if res.StopReason != StopCancelled {
		t.Errorf("StopReason = %q, want %q", res.StopReason, StopCancelled)
	}
	if res.Merges != 0 {
		t.Errorf("Merges = %d, want 0", res.Merges)
	}
}

func TestTrain_LogsProgress(t *testing.T) {
	tables := lexicon.Default()
	store := vocab.Seed(tables)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tr := New(tables, store, WithLogger(logger))
	if _, err := tr.Train(context.Background(), prefixCorpus, store.Len()+100, 1); err != nil {
		t.Fatalf("Train: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"training finished", "merge iteration", "best_pair=", "vocab_size="} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q", want)
		}
	}
}
