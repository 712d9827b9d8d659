/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/fittrack/apiserver/internal/archive"
	"github.com/fittrack/apiserver/internal/logger"
	"github.com/fittrack/apiserver/internal/mq"
	"github.com/fittrack/apiserver/internal/storage"
	"github.com/spf13/cobra"
)

// workerCmd archives fitness.recorded events to object storage.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Archives recorded fitness samples to object storage",
	Long: `Consumes fitness.recorded events from MQ_BACKEND and writes each sample to
STORAGE_BACKEND under fitness/<user_id>/<id>.json. Usage:

	fittrack worker
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyLogFlags(cmd, &cfg)
		log := logger.New(cfg.Log)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue, err := mq.NewFromConfig(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if queue == nil {
			return errors.New("worker requires MQ_BACKEND")
		}
		defer func() { _ = queue.Close() }()

		objects, err := storage.NewFromConfig(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		defer func() { _ = objects.Close() }()

		if err := objects.EnsureBucket(ctx); err != nil {
			log.Error("ensure bucket", "bucket", objects.Bucket(), "error", err)
			return err
		}

		return archive.New(queue, objects, log).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
