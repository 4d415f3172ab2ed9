// Package tokenizer is the public face of the Hindi BPE tokenizer: construct
// with a configuration, train or load a vocabulary, encode and decode.
package tokenizer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/example/go-hindi-bpe/internal/codec"
	"github.com/example/go-hindi-bpe/internal/lexicon"
	"github.com/example/go-hindi-bpe/internal/model"
	"github.com/example/go-hindi-bpe/internal/segment"
	"github.com/example/go-hindi-bpe/internal/text"
	"github.com/example/go-hindi-bpe/internal/train"
	"github.com/example/go-hindi-bpe/internal/vocab"
)

const (
	DefaultVocabSize = 5000
	DefaultMinFreq   = 2
)

// Tokenizer encodes text into token IDs.
type Tokenizer interface {
	Name() string
	Encode(text string) []int
}

// Options configures a BPE tokenizer.
type Options struct {
	VocabSize int
	MinFreq   int
	Strategy  train.Strategy
	// BatchSize and Workers bound corpus counting.
	BatchSize int
	Workers   int
	Logger    *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.VocabSize <= 0 {
		o.VocabSize = DefaultVocabSize
	}
	if o.MinFreq <= 0 {
		o.MinFreq = DefaultMinFreq
	}
	if o.Strategy == "" {
		o.Strategy = train.Boosted
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Info describes the loaded vocabulary.
type Info struct {
	VocabSize     int      `json:"vocab_size"`
	MinFreq       int      `json:"min_freq"`
	Strategy      string   `json:"strategy"`
	Tokens        int      `json:"tokens"`
	Merges        int      `json:"merges"`
	SpecialTokens []string `json:"special_tokens"`
}

// BPE is a Hindi subword tokenizer. Encode and Decode may be called
// concurrently; Train and Load replace state and must not overlap with them.
type BPE struct {
	opts   Options
	tables *lexicon.Tables
	store  *vocab.Store
	codec  *codec.Codec
}

// New returns a tokenizer with a freshly seeded vocabulary.
func New(opts Options) *BPE {
	opts = opts.withDefaults()
	tables := lexicon.Default()
	b := &BPE{opts: opts, tables: tables}
	b.install(vocab.Seed(tables))
	return b
}

// Open loads the artifact at path into a new tokenizer.
func Open(path string, logger *slog.Logger) (*BPE, error) {
	b := New(Options{Logger: logger})
	if err := b.Load(path); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *BPE) install(store *vocab.Store) {
	b.store = store
	b.codec = codec.New(b.tables, store)
}

// Name identifies the tokenizer in comparison reports.
func (b *BPE) Name() string { return "hindi-bpe" }

// Train counts the corpus at path and learns merges. A missing corpus fails
// with train.ErrCorpusNotFound before anything changes.
func (b *BPE) Train(ctx context.Context, path string) (train.Result, error) {
	counts, err := train.CountFile(ctx, path, b.codec.Normalizer(), b.countOptions())
	if err != nil {
		return train.Result{}, err
	}
	return b.TrainCounts(ctx, counts)
}

// TrainReader is Train for an already open corpus.
func (b *BPE) TrainReader(ctx context.Context, r io.Reader) (train.Result, error) {
	counts, err := train.CountReader(ctx, r, b.codec.Normalizer(), b.countOptions())
	if err != nil {
		return train.Result{}, err
	}
	return b.TrainCounts(ctx, counts)
}

// TrainCounts learns merges from precomputed word frequencies.
func (b *BPE) TrainCounts(ctx context.Context, counts map[string]int) (train.Result, error) {
	tr := train.New(b.tables, b.store,
		train.WithStrategy(b.opts.Strategy),
		train.WithLogger(b.opts.Logger),
	)
	return tr.Train(ctx, counts, b.opts.VocabSize, b.opts.MinFreq)
}

func (b *BPE) countOptions() train.CountOptions {
	return train.CountOptions{BatchSize: b.opts.BatchSize, Workers: b.opts.Workers}
}

// Save writes the vocabulary artifact to path and pins its checksum in a
// lock manifest beside it.
func (b *BPE) Save(path string) error {
	a := model.FromStore(b.store, b.tables.SpecialTokens, b.opts.VocabSize, b.opts.MinFreq, string(b.opts.Strategy))
	if err := model.Save(path, a); err != nil {
		return fmt.Errorf("save vocabulary: %w", err)
	}
	if _, err := model.WriteLock(path, a); err != nil {
		return fmt.Errorf("save vocabulary: %w", err)
	}
	b.opts.Logger.Info("vocabulary saved",
		slog.String("path", path),
		slog.Int("tokens", b.store.Len()),
		slog.Int("merges", len(a.Merges)),
	)
	return nil
}

// Load replaces the vocabulary with the artifact at path. On any error the
// current vocabulary is left untouched; errors wrap
// model.ErrArtifactNotFound or model.ErrMalformedArtifact.
func (b *BPE) Load(path string) error {
	a, err := model.Load(path)
	if err != nil {
		return err
	}
	store, err := a.Store()
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	strategy, err := train.ParseStrategy(a.Strategy)
	if err != nil {
		return fmt.Errorf("load %s: %w: %w", path, model.ErrMalformedArtifact, err)
	}

	b.opts.VocabSize = a.VocabSize
	b.opts.MinFreq = a.MinFreq
	b.opts.Strategy = strategy
	b.install(store)
	b.opts.Logger.Debug("vocabulary loaded",
		slog.String("path", path),
		slog.Int("tokens", store.Len()),
		slog.Int("merges", len(a.Merges)),
	)
	return nil
}

// Encode maps text to token IDs.
func (b *BPE) Encode(s string) []int { return b.codec.Encode(s) }

// EncodeTokens maps text to subword strings.
func (b *BPE) EncodeTokens(s string) []string { return b.codec.EncodeTokens(s) }

// Decode maps token IDs back to text on a best-effort basis.
func (b *BPE) Decode(ids []int) string { return b.codec.Decode(ids) }

// Normalize applies the normalizer used by Encode.
func (b *BPE) Normalize(s string) string { return b.codec.Normalizer().Normalize(s) }

// Segment normalizes s and returns the script segmentation of each word
// against the current vocabulary, with the rule behind every piece.
func (b *BPE) Segment(s string) [][]segment.Piece {
	seg := segment.New(b.tables, b.store)
	words := text.Words(b.Normalize(s))
	out := make([][]segment.Piece, len(words))
	for i, w := range words {
		out[i] = seg.SegmentPieces(w)
	}
	return out
}

// Token returns the token string for id, or the unknown marker.
func (b *BPE) Token(id int) string { return b.store.ReverseLookup(id) }

// UnknownID returns the ID that unmapped pieces encode to.
func (b *BPE) UnknownID() int { return b.store.UnknownID() }

// Lookup returns the ID of token.
func (b *BPE) Lookup(token string) (int, bool) { return b.store.Lookup(token) }

// Tables returns the lexicon the tokenizer was built with.
func (b *BPE) Tables() *lexicon.Tables { return b.tables }

// Info describes the current vocabulary.
func (b *BPE) Info() Info {
	return Info{
		VocabSize:     b.opts.VocabSize,
		MinFreq:       b.opts.MinFreq,
		Strategy:      string(b.opts.Strategy),
		Tokens:        b.store.Len(),
		Merges:        len(b.store.Merges()),
		SpecialTokens: append([]string(nil), b.tables.SpecialTokens...),
	}
}
