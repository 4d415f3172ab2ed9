package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/example/go-hindi-bpe/internal/config"
	"github.com/example/go-hindi-bpe/internal/tokenizer"
	"github.com/example/go-hindi-bpe/internal/train"
)

const maxLineBytes = 16 << 20

// readText returns text when set, otherwise the trimmed contents of stdin.
func readText(text string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	input := strings.TrimSpace(string(b))
	if input == "" {
		return "", fmt.Errorf("either provide --text or pipe text on stdin")
	}
	return input, nil
}

// readLines loads a corpus file line by line.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", train.ErrCorpusNotFound, path)
		}
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return lines, nil
}

// newTokenizer builds an untrained tokenizer from the training settings.
func newTokenizer(cfg config.Config) (*tokenizer.BPE, error) {
	strategy, err := train.ParseStrategy(cfg.Training.Strategy)
	if err != nil {
		return nil, err
	}
	return tokenizer.New(tokenizer.Options{
		VocabSize: cfg.Training.VocabSize,
		MinFreq:   cfg.Training.MinFreq,
		Strategy:  strategy,
		BatchSize: cfg.Training.BatchSize,
		Workers:   cfg.Training.Workers,
		Logger:    slog.Default(),
	}), nil
}

// openTokenizer loads the configured vocabulary artifact.
func openTokenizer(cfg config.Config) (*tokenizer.BPE, error) {
	tok, err := tokenizer.Open(cfg.Paths.VocabPath, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("load vocabulary (run 'hindibpe train' first?): %w", err)
	}
	return tok, nil
}

// formatIDs renders ids as "[1, 2, 3]", the form decode accepts.
func formatIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func checkFormat(format string) error {
	if format != "table" && format != "json" {
		return fmt.Errorf("--format must be 'table' or 'json'")
	}
	return nil
}
