package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/domino14/brassgrade/config"
	"github.com/domino14/brassgrade/worker"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Answer simulation requests over NATS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := worker.NewSimWorker(worker.DefaultWorkerConfig(cfg))

			ctx, cancel := signalContext()
			defer cancel()
			ctx = log.Logger.WithContext(ctx)

			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info().Msg("worker stopped")
			return nil
		},
	}
}
