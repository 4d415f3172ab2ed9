package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/go-hindi-bpe/internal/model"
	"github.com/example/go-hindi-bpe/internal/tokenizer"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newVocabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Vocabulary inspection and verification commands",
	}

	cmd.AddCommand(newVocabInspectCmd())
	cmd.AddCommand(newVocabVerifyCmd())
	return cmd
}

func newVocabInspectCmd() *cobra.Command {
	var sample int

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print vocabulary size, special tokens and sample entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			tok, err := openTokenizer(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			info := tok.Info()
			summary := tablewriter.NewWriter(out)
			summary.SetHeader([]string{"Metric", "Value"})
			summary.SetBorder(false)
			summary.SetAutoWrapText(false)
			summary.SetAlignment(tablewriter.ALIGN_LEFT)
			summary.Append([]string{"tokens", strconv.Itoa(info.Tokens)})
			summary.Append([]string{"merges", strconv.Itoa(info.Merges)})
			summary.Append([]string{"target size", strconv.Itoa(info.VocabSize)})
			summary.Append([]string{"min freq", strconv.Itoa(info.MinFreq)})
			summary.Append([]string{"strategy", info.Strategy})
			summary.Append([]string{"special tokens", strings.Join(info.SpecialTokens, " ")})
			summary.Render()

			if sample <= 0 {
				return nil
			}
			_, _ = fmt.Fprintln(out)
			samples := tablewriter.NewWriter(out)
			samples.SetHeader([]string{"Class", "Token", "ID"})
			samples.SetBorder(false)
			samples.SetAutoWrapText(false)
			samples.SetAlignment(tablewriter.ALIGN_LEFT)
			for _, row := range sampleEntries(tok, sample) {
				samples.Append(row)
			}
			samples.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&sample, "sample", 10, "Entries to show per class (0 = summary only)")

	return cmd
}

// sampleEntries lists up to n entries per class with their IDs.
func sampleEntries(tok *tokenizer.BPE, n int) [][]string {
	tables := tok.Tables()
	var rows [][]string
	add := func(class string, tokens []string) {
		for _, t := range tokens[:min(n, len(tokens))] {
			if id, ok := tok.Lookup(t); ok {
				rows = append(rows, []string{class, t, strconv.Itoa(id)})
			}
		}
	}

	add("common word", tables.CommonWords)
	add("consonant", runeStrings(tables.Consonants))
	add("vowel", runeStrings(tables.Vowels))

	// Tokens added by training occupy the tail of the ID space.
	var latest []string
	for id := tok.Info().Tokens - 1; id >= 0 && len(latest) < n; id-- {
		latest = append(latest, tok.Token(id))
	}
	add("latest", latest)
	return rows
}

func runeStrings(rs []rune) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}

func newVocabVerifyCmd() *cobra.Command {
	var sha string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Validate the vocabulary artifact and its checksum",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "verifying vocabulary: %s\n", cfg.Paths.VocabPath); err != nil {
				return fmt.Errorf("write status: %w", err)
			}
			if _, err := model.Verify(model.VerifyOptions{
				Path:   cfg.Paths.VocabPath,
				SHA256: sha,
				Stdout: out,
			}); err != nil {
				return fmt.Errorf("vocab verify failed: %w", err)
			}
			if _, err := fmt.Fprintln(out, "vocabulary verification passed"); err != nil {
				return fmt.Errorf("write status: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sha, "sha256", "", "Expected SHA-256 (default: the .lock.json manifest)")

	return cmd
}
