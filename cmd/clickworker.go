/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qoolink/server/config"
	"github.com/qoolink/server/internal/clicks"
	"github.com/qoolink/server/internal/db"
	"github.com/qoolink/server/internal/mq"
	"github.com/qoolink/server/internal/store"
)

// clickworkerCmd represents the clickworker command
var clickworkerCmd = &cobra.Command{
	Use:   "clickworker",
	Short: "Consume click events and update link counters",
	Long: `Consumes click events from the configured message broker and folds
them into the links table. Requires MQ_BACKEND to be set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		log := newLogger(cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		backend, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if backend == nil {
			return errors.New("clickworker requires MQ_BACKEND to be set")
		}
		queue := mq.New(backend)
		defer queue.Close()

		dbConn, err := db.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		consumer := clicks.NewConsumer(queue, store.NewLinkRepository(dbConn), log)
		log.Info().Str("channel", clicks.Channel).Msg("click worker started")

		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clickworkerCmd)
}
