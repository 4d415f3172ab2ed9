package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/example/go-hindi-bpe/internal/server"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var (
		text       string
		showTokens bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode text to token IDs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
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

			ids := tok.Encode(input)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetEscapeHTML(false)
				return enc.Encode(map[string]any{
					"ids":    ids,
					"tokens": tok.EncodeTokens(input),
				})
			}

			if _, err := fmt.Fprintln(out, formatIDs(ids)); err != nil {
				return err
			}
			if showTokens {
				_, err = fmt.Fprintln(out, strings.Join(tok.EncodeTokens(input), " | "))
			}
			return err
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to encode (default: read stdin)")
	cmd.Flags().BoolVar(&showTokens, "tokens", false, "Also print the subword strings")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print ids and tokens as JSON")

	return cmd
}

func newDecodeCmd() *cobra.Command {
	var ids string

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode comma-separated token IDs to text",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			input, err := readText(ids, os.Stdin)
			if err != nil {
				return err
			}
			parsed, err := server.ParseIDs(input)
			if err != nil {
				return err
			}
			tok, err := openTokenizer(cfg)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok.Decode(parsed))
			return err
		},
	}

	cmd.Flags().StringVar(&ids, "ids", "", `Token IDs such as "[1, 2, 3]" (default: read stdin)`)

	return cmd
}

func newSegmentCmd() *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Show the script segmentation of each word and the rule behind every piece",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
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

			out := cmd.OutOrStdout()
			for _, pieces := range tok.Segment(input) {
				var word strings.Builder
				parts := make([]string, len(pieces))
				for i, p := range pieces {
					word.WriteString(p.Text)
					parts[i] = fmt.Sprintf("%s(%s)", p.Text, p.Kind)
				}
				if _, err := fmt.Fprintf(out, "%s\t%s\n", word.String(), strings.Join(parts, " ")); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to segment (default: read stdin)")

	return cmd
}
