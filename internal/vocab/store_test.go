package vocab

import (
	"errors"
	"testing"

	"github.com/example/go-hindi-bpe/internal/lexicon"
)

func TestSeed_Layout(t *testing.T) {
	s := Seed(lexicon.Default())

	// Raw codepoints come first.
	if id, ok := s.Lookup("A"); !ok || id != 'A' {
		t.Errorf("Lookup(%q) = %d, %v; want %d, true", "A", id, ok, 'A')
	}

	// Special tokens follow the raw block in order.
	for i, tok := range []string{lexicon.Unknown, lexicon.Pad, lexicon.Begin, lexicon.End} {
		id, ok := s.Lookup(tok)
		if !ok || id != rawAlphabetSize+i {
			t.Errorf("Lookup(%q) = %d, %v; want %d", tok, id, ok, rawAlphabetSize+i)
		}
	}

	if got := s.UnknownID(); got != rawAlphabetSize {
		t.Errorf("UnknownID() = %d, want %d", got, rawAlphabetSize)
	}

	for _, tok := range []string{"।", "है", "क", "ा", "्", "़", "का", "क्ष"} {
		if _, ok := s.Lookup(tok); !ok {
			t.Errorf("seeded vocabulary is missing %q", tok)
		}
	}
}

func TestSeed_Bijective(t *testing.T) {
	s := Seed(lexicon.Default())

	entries := s.Entries()
	if len(entries) != s.Len() {
		t.Fatalf("Entries() has %d items, Len() = %d", len(entries), s.Len())
	}

	seen := make(map[int]string, len(entries))
	for tok, id := range entries {
		if prev, dup := seen[id]; dup {
			t.Fatalf("id %d shared by %q and %q", id, prev, tok)
		}
		seen[id] = tok

		if got := s.ReverseLookup(id); got != tok {
			t.Errorf("ReverseLookup(%d) = %q, want %q", id, got, tok)
		}
	}

	// IDs are dense from zero.
	for id := 0; id < s.Len(); id++ {
		if _, ok := seen[id]; !ok {
			t.Errorf("id %d not assigned", id)
		}
	}
}

func TestAdd_Idempotent(t *testing.T) {
	s := New(lexicon.Unknown, 0)
	s.Add(lexicon.Unknown)

	first := s.Add("घर")
	second := s.Add("घर")
	if first != second {
		t.Errorf("Add returned %d then %d for the same token", first, second)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if got := s.Add(""); got != -1 {
		t.Errorf("Add(\"\") = %d, want -1", got)
	}
}

func TestReverseLookup_FallsBackToUnknown(t *testing.T) {
	s := Seed(lexicon.Default())

	for _, id := range []int{-1, s.Len(), s.Len() + 1000} {
		if got := s.ReverseLookup(id); got != lexicon.Unknown {
			t.Errorf("ReverseLookup(%d) = %q, want %q", id, got, lexicon.Unknown)
		}
	}
}

func TestAddMerge_RecordsRuleAndToken(t *testing.T) {
	s := Seed(lexicon.Default())
	before := s.Len()

	id := s.AddMerge("नम", "स्ते")
	if got := s.ReverseLookup(id); got != "नमस्ते" {
		t.Errorf("merged token = %q, want %q", got, "नमस्ते")
	}
	if s.Len() != before+1 {
		t.Errorf("Len() = %d, want %d", s.Len(), before+1)
	}

	merges := s.Merges()
	if len(merges) != 1 {
		t.Fatalf("len(Merges()) = %d, want 1", len(merges))
	}
	want := Merge{Left: "नम", Right: "स्ते", Merged: "नमस्ते", Rank: 0}
	if merges[0] != want {
		t.Errorf("merge = %+v, want %+v", merges[0], want)
	}
}

func TestRestore(t *testing.T) {
	t.Run("round trips a seeded store", func(t *testing.T) {
		src := Seed(lexicon.Default())
		src.AddMerge("नम", "स्ते")

		got, err := Restore(lexicon.Unknown, src.Entries(), src.Merges())
		if err != nil {
			t.Fatalf("Restore: %v", err)
		}
		if got.Len() != src.Len() {
			t.Errorf("Len() = %d, want %d", got.Len(), src.Len())
		}
		if len(got.Merges()) != 1 {
			t.Errorf("len(Merges()) = %d, want 1", len(got.Merges()))
		}
	})

	t.Run("id beyond vocabulary is rejected", func(t *testing.T) {
		for _, id := range []int{2, 5, 4000000000000} {
			_, err := Restore(lexicon.Unknown, map[string]int{lexicon.Unknown: 0, "क": id}, nil)
			if !errors.Is(err, ErrNotBijective) {
				t.Fatalf("id %d: want ErrNotBijective, got %v", id, err)
			}
		}
	})

	t.Run("add continues after restore", func(t *testing.T) {
		got, err := Restore(lexicon.Unknown, map[string]int{lexicon.Unknown: 0, "क": 1}, nil)
		if err != nil {
			t.Fatalf("Restore: %v", err)
		}
		if tok := got.ReverseLookup(7); tok != lexicon.Unknown {
			t.Errorf("ReverseLookup(7) = %q, want %q", tok, lexicon.Unknown)
		}
		if id := got.Add("ख"); id != 2 {
			t.Errorf("Add after restore = %d, want 2", id)
		}
	})

	t.Run("shared id is rejected", func(t *testing.T) {
		_, err := Restore(lexicon.Unknown, map[string]int{lexicon.Unknown: 0, "क": 1, "ख": 1}, nil)
		if !errors.Is(err, ErrNotBijective) {
			t.Fatalf("want ErrNotBijective, got %v", err)
		}
	})

	t.Run("negative id is rejected", func(t *testing.T) {
		_, err := Restore(lexicon.Unknown, map[string]int{lexicon.Unknown: 0, "क": -2}, nil)
		if !errors.Is(err, ErrNotBijective) {
			t.Fatalf("want ErrNotBijective, got %v", err)
		}
	})

	t.Run("missing unknown token is rejected", func(t *testing.T) {
		_, err := Restore(lexicon.Unknown, map[string]int{"क": 0}, nil)
		if err == nil {
			t.Fatal("expected error when unknown token is missing")
		}
	})

	t.Run("merge referencing absent token is rejected", func(t *testing.T) {
		_, err := Restore(lexicon.Unknown, map[string]int{lexicon.Unknown: 0, "क": 1},
			[]Merge{{Left: "क", Right: "ा"}})
		if err == nil {
			t.Fatal("expected error for merge with unknown parts")
		}
	})
}
