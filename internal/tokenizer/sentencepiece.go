package tokenizer

import (
	"errors"
	"fmt"

	gosp "github.com/vikesh-raj/go-sentencepiece-encoder/sentencepiece"
)

// ErrEmptyPath is returned when NewSentencePieceTokenizer is called with an empty path.
var ErrEmptyPath = errors.New("tokenizer model path must not be empty")

// SentencePieceTokenizer is an encode-only reference tokenizer backed by a
// pure-Go SentencePiece model. It is used to compare compression against the
// trained BPE vocabulary.
type SentencePieceTokenizer struct {
	proc gosp.Sentencepiece
}

// NewSentencePieceTokenizer loads a SentencePiece model from the given path.
func NewSentencePieceTokenizer(modelPath string) (*SentencePieceTokenizer, error) {
	if modelPath == "" {
		return nil, ErrEmptyPath
	}

	proc, err := gosp.NewSentencepieceFromFile(modelPath, false)
	if err != nil {
		return nil, fmt.Errorf("load sentencepiece model %q: %w", modelPath, err)
	}

	return &SentencePieceTokenizer{proc: proc}, nil
}

// Name identifies the tokenizer in comparison reports.
func (t *SentencePieceTokenizer) Name() string { return "sentencepiece" }

// Encode tokenizes text and returns SentencePiece token IDs.
func (t *SentencePieceTokenizer) Encode(text string) []int {
	if text == "" {
		return []int{}
	}

	ids := t.proc.TokenizeToIDs(text)

	result := make([]int, len(ids))
	for i, id := range ids {
		result[i] = int(id)
	}

	return result
}
