package main

import (
	"encoding/json"

	"github.com/example/go-hindi-bpe/internal/bench"
	"github.com/example/go-hindi-bpe/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare corpus compression against a SentencePiece reference model",
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
			ref, err := tokenizer.NewSentencePieceTokenizer(cfg.Paths.ReferenceModelPath)
			if err != nil {
				return err
			}
			lines, err := readLines(cfg.Paths.CorpusPath)
			if err != nil {
				return err
			}

			rows := bench.Compare(lines, tok, ref)
			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			bench.FormatCompareTable(rows, cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")

	return cmd
}
