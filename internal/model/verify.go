package model

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ErrChecksumMismatch is returned when an artifact's SHA-256 differs from
// the expected value.
var ErrChecksumMismatch = errors.New("checksum mismatch")

var shaHexPattern = regexp.MustCompile(`(?i)^[a-f0-9]{64}$`)

type VerifyOptions struct {
	Path string
	// SHA256 overrides the checksum recorded in the lock manifest.
	SHA256 string
	Stdout io.Writer
}

// Report summarizes a verified artifact.
type Report struct {
	Path          string
	Format        Format
	SHA256        string
	Tokens        int
	Merges        int
	SpecialTokens int
	VocabSize     int
	MinFreq       int
	Strategy      string
	// Pinned is the checksum compared against, empty when none was available.
	Pinned string
}

// Verify loads the artifact, rebuilds its store to prove the vocabulary is a
// bijection with resolvable merges, and compares its checksum with the
// expected one (explicit option first, then the lock manifest).
func Verify(opts VerifyOptions) (Report, error) {
	if opts.Path == "" {
		return Report{}, errors.New("artifact path is required")
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}

	a, err := Load(opts.Path)
	if err != nil {
		return Report{}, err
	}
	if _, err := a.Store(); err != nil {
		return Report{}, err
	}
	_, _ = fmt.Fprintf(opts.Stdout, "PASS structure (%d tokens, %d merges)\n", len(a.Vocabulary), len(a.Merges))

	sum, err := fileSHA256(opts.Path)
	if err != nil {
		return Report{}, err
	}

	rep := Report{
		Path:          opts.Path,
		Format:        FormatFor(opts.Path),
		SHA256:        sum,
		Tokens:        len(a.Vocabulary),
		Merges:        len(a.Merges),
		SpecialTokens: len(a.SpecialTokens),
		VocabSize:     a.VocabSize,
		MinFreq:       a.MinFreq,
		Strategy:      a.Strategy,
	}

	expected := strings.ToLower(strings.TrimSpace(opts.SHA256))
	if expected == "" {
		lock, ok, err := ReadLock(opts.Path)
		if err != nil {
			return rep, err
		}
		if ok {
			expected = strings.ToLower(lock.SHA256)
		}
	}
	if expected == "" {
		_, _ = fmt.Fprintf(opts.Stdout, "SKIP checksum (sha256=%s, nothing pinned)\n", sum)
		return rep, nil
	}
	if !shaHexPattern.MatchString(expected) {
		return rep, fmt.Errorf("invalid expected sha256 %q", expected)
	}

	rep.Pinned = expected
	if sum != expected {
		return rep, fmt.Errorf("%w for %s: expected %s got %s", ErrChecksumMismatch, opts.Path, expected, sum)
	}
	_, _ = fmt.Fprintf(opts.Stdout, "PASS checksum (sha256=%s)\n", sum)
	return rep, nil
}
