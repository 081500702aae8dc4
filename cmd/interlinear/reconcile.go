package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/interlinear-backend/internal/adapter/postgres/word"
	"github.com/heartmarshall/interlinear-backend/internal/app"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [VERSE...]",
	Short: "Create singleton phrases for words no active phrase covers",
	Long: `Reconcile the given verses for one language. Without verse arguments
every verse of the catalog is reconciled, optionally narrowed by --prefix.
Safe to run while the API is serving.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		code, _ := cmd.Flags().GetString("lang")
		prefix, _ := cmd.Flags().GetString("prefix")

		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		lang, err := a.Languages.GetByCode(ctx, code)
		if err != nil {
			return fmt.Errorf("language %q: %w", code, err)
		}

		verses := args
		if len(verses) == 0 {
			verses, err = word.New(a.Pool).VerseIDs(ctx, prefix)
			if err != nil {
				return err
			}
		}

		start := time.Now()
		if err := a.Partition.ReconcileVerses(ctx, lang.ID, verses); err != nil {
			return err
		}

		logger.Info("reconcile completed",
			slog.String("language", lang.Code),
			slog.Int("verses", len(verses)),
			slog.Duration("duration", time.Since(start)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.Flags().String("lang", "", "language code (required)")
	reconcileCmd.Flags().String("prefix", "", "only verses whose id starts with this prefix")
	_ = reconcileCmd.MarkFlagRequired("lang")
}
