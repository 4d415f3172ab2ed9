package main

import (
	"github.com/example/go-hindi-bpe/internal/bench"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var (
		top    int
		format string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Report compression and token statistics over the corpus",
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
			lines, err := readLines(cfg.Paths.CorpusPath)
			if err != nil {
				return err
			}

			rep := bench.Analyze(tok, lines, tok.Info().Tokens, tok.UnknownID(), top)
			if format == "json" {
				return bench.FormatReportJSON(rep, cmd.OutOrStdout())
			}
			bench.FormatReportTable(rep, cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 20, "Number of most frequent tokens to list")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")

	return cmd
}

