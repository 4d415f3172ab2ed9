// Package model persists trained vocabularies as artifacts and restores
// them without ever exposing a partially initialized store.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/example/go-hindi-bpe/internal/vocab"
)

var (
	// ErrArtifactNotFound is returned when the artifact path does not exist.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrMalformedArtifact is returned for corrupt structure or missing
	// required fields.
	ErrMalformedArtifact = errors.New("malformed artifact")
)

// Format is the on-disk encoding of an artifact.
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// FormatFor picks the encoding from the file extension: ".cbor" selects
// CBOR, anything else JSON.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		return FormatCBOR
	}
	return FormatJSON
}

// MergeRecord is one persisted merge rule. Rank is its learn order.
type MergeRecord struct {
	Left  string `json:"left"`
	Right string `json:"right"`
	Rank  int    `json:"rank"`
}

// Artifact is the persisted vocabulary.
type Artifact struct {
	Vocabulary    map[string]int `json:"vocabulary"`
	Merges        []MergeRecord  `json:"merges"`
	SpecialTokens []string       `json:"special_tokens"`
	VocabSize     int            `json:"vocab_size"`
	MinFreq       int            `json:"min_freq"`
	Strategy      string         `json:"strategy,omitempty"`
}

// rawArtifact distinguishes absent fields from zero values while decoding.
type rawArtifact struct {
	Vocabulary    *map[string]int `json:"vocabulary"`
	Merges        *[]MergeRecord  `json:"merges"`
	SpecialTokens *[]string       `json:"special_tokens"`
	VocabSize     *int            `json:"vocab_size"`
	MinFreq       *int            `json:"min_freq"`
	Strategy      string          `json:"strategy,omitempty"`
}

// FromStore snapshots store into an artifact.
func FromStore(store *vocab.Store, specials []string, vocabSize, minFreq int, strategy string) *Artifact {
	merges := store.Merges()
	records := make([]MergeRecord, len(merges))
	for i, m := range merges {
		records[i] = MergeRecord{Left: m.Left, Right: m.Right, Rank: m.Rank}
	}
	return &Artifact{
		Vocabulary:    store.Entries(),
		Merges:        records,
		SpecialTokens: slices.Clone(specials),
		VocabSize:     vocabSize,
		MinFreq:       minFreq,
		Strategy:      strategy,
	}
}

// Store rebuilds the vocabulary store. The first special token is the
// unknown marker.
func (a *Artifact) Store() (*vocab.Store, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	merges := make([]vocab.Merge, len(a.Merges))
	for i, m := range a.Merges {
		merges[i] = vocab.Merge{Left: m.Left, Right: m.Right, Merged: m.Left + m.Right, Rank: m.Rank}
	}
	s, err := vocab.Restore(a.SpecialTokens[0], a.Vocabulary, merges)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedArtifact, err)
	}
	return s, nil
}

// Validate checks the rules a loadable artifact must satisfy.
func (a *Artifact) Validate() error {
	if len(a.Vocabulary) == 0 {
		return fmt.Errorf("%w: empty vocabulary", ErrMalformedArtifact)
	}
	for tok, id := range a.Vocabulary {
		if id < 0 || id >= len(a.Vocabulary) {
			return fmt.Errorf("%w: id %d for %q outside [0, %d)", ErrMalformedArtifact, id, tok, len(a.Vocabulary))
		}
	}
	if len(a.SpecialTokens) == 0 {
		return fmt.Errorf("%w: no special tokens", ErrMalformedArtifact)
	}
	for _, tok := range a.SpecialTokens {
		if _, ok := a.Vocabulary[tok]; !ok {
			return fmt.Errorf("%w: special token %q missing from vocabulary", ErrMalformedArtifact, tok)
		}
	}
	if a.VocabSize <= 0 {
		return fmt.Errorf("%w: vocab_size must be positive, got %d", ErrMalformedArtifact, a.VocabSize)
	}
	if a.MinFreq < 0 {
		return fmt.Errorf("%w: min_freq must not be negative, got %d", ErrMalformedArtifact, a.MinFreq)
	}
	for i, m := range a.Merges {
		if m.Rank != i {
			return fmt.Errorf("%w: merge %d has rank %d", ErrMalformedArtifact, i, m.Rank)
		}
	}
	return nil
}

// Marshal encodes a in the given format.
func Marshal(a *Artifact, f Format) ([]byte, error) {
	switch f {
	case FormatCBOR:
		return cbor.Marshal(a)
	case FormatJSON:
		return json.MarshalIndent(a, "", "  ")
	default:
		return nil, fmt.Errorf("unknown artifact format %q", f)
	}
}

// Unmarshal decodes and validates an artifact. Merges are put in rank order
// before validation so writers need not sort them.
func Unmarshal(data []byte, f Format) (*Artifact, error) {
	var raw rawArtifact
	var err error
	switch f {
	case FormatCBOR:
		err = cbor.Unmarshal(data, &raw)
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unknown artifact format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedArtifact, err)
	}

	var missing []string
	if raw.Vocabulary == nil {
		missing = append(missing, "vocabulary")
	}
	if raw.Merges == nil {
		missing = append(missing, "merges")
	}
	if raw.SpecialTokens == nil {
		missing = append(missing, "special_tokens")
	}
	if raw.VocabSize == nil {
		missing = append(missing, "vocab_size")
	}
	if raw.MinFreq == nil {
		missing = append(missing, "min_freq")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required field(s): %s", ErrMalformedArtifact, strings.Join(missing, ", "))
	}

	a := &Artifact{
		Vocabulary:    *raw.Vocabulary,
		Merges:        *raw.Merges,
		SpecialTokens: *raw.SpecialTokens,
		VocabSize:     *raw.VocabSize,
		MinFreq:       *raw.MinFreq,
		Strategy:      raw.Strategy,
	}
	slices.SortStableFunc(a.Merges, func(x, y MergeRecord) int { return x.Rank - y.Rank })
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}
