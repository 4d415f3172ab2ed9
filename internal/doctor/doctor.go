// Package doctor provides preflight checks for hindibpe: the vocabulary
// artifact, the training corpus and the optional reference model.
package doctor

import (
	"fmt"
	"io"
	"os"
)

// PassMark, FailMark and SkipMark are the prefix symbols printed for each
// check result.
const (
	PassMark = "✓"
	FailMark = "✗"
	SkipMark = "-"
)

// VerifyFunc validates the artifact at path and returns a one-line summary.
type VerifyFunc func(path string) (string, error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// VocabPath is the vocabulary artifact checked with VerifyVocab.
	VocabPath   string
	VerifyVocab VerifyFunc
	// CorpusPath must be a readable, non-empty file unless SkipCorpus is set.
	CorpusPath string
	SkipCorpus bool
	// ReferenceModelPath is optional; a missing model is reported as skipped.
	ReferenceModelPath string
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark, FailMark or SkipMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- vocabulary artifact ----------------------------------------------
	if cfg.VerifyVocab == nil {
		fmt.Fprintf(w, "%s vocabulary: skipped\n", SkipMark)
	} else if summary, err := cfg.VerifyVocab(cfg.VocabPath); err != nil {
		res.fail(fmt.Sprintf("vocabulary %q: %v", cfg.VocabPath, err))
		fmt.Fprintf(w, "%s vocabulary %s: %v\n", FailMark, cfg.VocabPath, err)
	} else {
		fmt.Fprintf(w, "%s vocabulary %s: %s\n", PassMark, cfg.VocabPath, summary)
	}

	// ---- training corpus --------------------------------------------------
	if cfg.SkipCorpus {
		fmt.Fprintf(w, "%s corpus: skipped\n", SkipMark)
	} else if err := checkCorpus(cfg.CorpusPath); err != nil {
		res.fail(fmt.Sprintf("corpus %q: %v", cfg.CorpusPath, err))
		fmt.Fprintf(w, "%s corpus %s: %v\n", FailMark, cfg.CorpusPath, err)
	} else {
		fmt.Fprintf(w, "%s corpus: %s\n", PassMark, cfg.CorpusPath)
	}

	// ---- reference model --------------------------------------------------
	if cfg.ReferenceModelPath == "" {
		fmt.Fprintf(w, "%s reference model: skipped\n", SkipMark)
	} else if _, err := os.Stat(cfg.ReferenceModelPath); err != nil {
		fmt.Fprintf(w, "%s reference model %s: not found, compare unavailable\n", SkipMark, cfg.ReferenceModelPath)
	} else {
		fmt.Fprintf(w, "%s reference model: %s\n", PassMark, cfg.ReferenceModelPath)
	}

	return res
}

func checkCorpus(path string) error {
	if path == "" {
		return fmt.Errorf("no corpus path configured")
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("is a directory")
	}
	if info.Size() == 0 {
		return fmt.Errorf("file is empty")
	}
	return nil
}
