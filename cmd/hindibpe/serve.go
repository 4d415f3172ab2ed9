package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/example/go-hindi-bpe/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the encode/decode HTTP server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			tok, err := openTokenizer(cfg)
			if err != nil {
				return err
			}

			srv := server.New(cfg, tok).WithLogger(slog.Default())

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	return cmd
}
