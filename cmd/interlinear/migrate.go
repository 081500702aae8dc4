package main

import (
	"github.com/spf13/cobra"

	"github.com/heartmarshall/interlinear-backend/internal/adapter/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if err := postgres.Migrate(cmd.Context(), cfg.Database.DSN, logger); err != nil {
			return err
		}
		logger.Info("migrations up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
