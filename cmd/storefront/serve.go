package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the cart, checkout and order views over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, log, err := loadApp(cmd)
			if err != nil {
				return err
			}

			// Create a context that is canceled on SIGINT or SIGTERM.
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			log.Info("starting storefront", slog.String("version", version))
			if err := a.Run(ctx); err != nil {
				return fmt.Errorf("run application: %w", err)
			}
			log.Info("storefront stopped")
			return nil
		},
	}
}
