package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/example/go-hindi-bpe/internal/doctor"
	"github.com/example/go-hindi-bpe/internal/model"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	var skipCorpus bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run preflight checks for the vocabulary, corpus and reference model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			result := doctor.Run(doctor.Config{
				VocabPath:          cfg.Paths.VocabPath,
				VerifyVocab:        verifyVocab,
				CorpusPath:         cfg.Paths.CorpusPath,
				SkipCorpus:         skipCorpus,
				ReferenceModelPath: cfg.Paths.ReferenceModelPath,
			}, cmd.OutOrStdout())

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %s\n", f)
				}
				return errors.New("doctor checks failed")
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "doctor checks passed")
			return err
		},
	}

	cmd.Flags().BoolVar(&skipCorpus, "skip-corpus", false, "Skip the training corpus check")

	return cmd
}

func verifyVocab(path string) (string, error) {
	rep, err := model.Verify(model.VerifyOptions{Path: path, Stdout: io.Discard})
	if err != nil {
		return "", err
	}
	pinned := "unpinned"
	if rep.Pinned != "" {
		pinned = "pinned"
	}
	return fmt.Sprintf("%d tokens, %d merges, sha256 %s", rep.Tokens, rep.Merges, pinned), nil
}
