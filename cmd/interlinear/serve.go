package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/interlinear-backend/internal/adapter/postgres"
	"github.com/heartmarshall/interlinear-backend/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		migrate, _ := cmd.Flags().GetBool("migrate")
		if migrate {
			if err := postgres.Migrate(ctx, cfg.Database.DSN, logger); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}

		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		logger.Info("starting application",
			slog.String("version", app.BuildVersion()),
			slog.String("log_level", cfg.Log.Level),
			slog.Bool("redis_tracking", cfg.Tracking.Enabled()),
		)
		return a.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("migrate", false, "apply pending migrations before serving")
}
