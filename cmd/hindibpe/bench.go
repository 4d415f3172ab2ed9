package main

import (
	"fmt"
	"os"
	"time"

	"github.com/example/go-hindi-bpe/internal/bench"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var (
		text             string
		runs             int
		format           string
		includeCold      bool
		latencyThreshold time.Duration
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark encode latency and throughput",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1")
			}
			if err := checkFormat(format); err != nil {
				return err
			}
			input, err := readText(text, os.Stdin)
			if err != nil {
				return err
			}
			tok, err := openTokenizer(cfg)
			if err != nil {
				return err
			}

			results := bench.Run(tok, input, runs)
			stats := bench.ComputeStats(bench.Durations(results, !includeCold))

			switch format {
			case "json":
				bench.FormatJSON(results, stats, cmd.OutOrStdout())
			default:
				bench.FormatTable(results, stats, cmd.OutOrStdout())
			}

			return bench.CheckLatencyThreshold(stats.Mean, latencyThreshold)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to encode for each run (default: read stdin)")
	cmd.Flags().IntVar(&runs, "runs", 5, "Number of encode runs")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")
	cmd.Flags().BoolVar(&includeCold, "include-cold", false, "Include the first run in min/mean/max")
	cmd.Flags().DurationVar(&latencyThreshold, "latency-threshold", 0, "Exit non-zero if mean latency exceeds this value (0 = disabled)")

	return cmd
}
