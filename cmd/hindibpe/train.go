package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Learn a vocabulary from a corpus and save it",
		Long: "Counts the corpus (--corpus), learns merges until --vocab-size is reached " +
			"and writes the artifact to --vocab together with a .lock.json checksum manifest.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			tok, err := newTokenizer(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := tok.Train(ctx, cfg.Paths.CorpusPath)
			if err != nil {
				return err
			}
			if err := tok.Save(cfg.Paths.VocabPath); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "trained %d tokens (seed %d, %d whole words, %d merges) in %s\n",
				res.VocabSize, res.SeedSize, res.WholeWords, res.Merges, res.Duration.Round(time.Millisecond))
			_, _ = fmt.Fprintf(out, "stopped: %s after %d iterations\n", res.StopReason, len(res.Iterations))
			_, err = fmt.Fprintf(out, "saved %s\n", cfg.Paths.VocabPath)
			return err
		},
	}

	return cmd
}
