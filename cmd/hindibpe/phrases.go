package main

import (
	"encoding/json"
	"fmt"

	"github.com/example/go-hindi-bpe/internal/bench"
	"github.com/spf13/cobra"
)

func newPhrasesCmd() *cobra.Command {
	var (
		phrases     []string
		format      string
		minAccuracy float64
	)

	cmd := &cobra.Command{
		Use:   "phrases",
		Short: "Round-trip common phrases and report character accuracy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if err := checkFormat(format); err != nil {
				return err
			}
			tok, err := openTokenizer(cfg)
			if err != nil {
				return err
			}
			if len(phrases) == 0 {
				phrases = bench.DefaultPhrases
			}

			results := bench.CheckPhrases(tok, phrases)
			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else {
				bench.FormatPhrasesTable(results, out)
			}

			if mean := bench.MeanAccuracy(results); minAccuracy > 0 && mean < minAccuracy {
				return fmt.Errorf("mean accuracy %.3f below threshold %.3f", mean, minAccuracy)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&phrases, "phrase", nil, "Phrase to check (repeatable; default: built-in set)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")
	cmd.Flags().Float64Var(&minAccuracy, "min-accuracy", 0, "Exit non-zero if mean accuracy is below this value (0 = disabled)")

	return cmd
}
