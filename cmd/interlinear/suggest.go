package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/interlinear-backend/internal/app"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest VERSE",
	Short: "Print ranked gloss suggestions for a verse as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		code, _ := cmd.Flags().GetString("lang")

		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		lang, err := a.Languages.GetByCode(ctx, code)
		if err != nil {
			return fmt.Errorf("language %q: %w", code, err)
		}

		suggestions, err := a.Suggestions.SuggestionsForVerse(ctx, lang.ID, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(suggestions)
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.Flags().String("lang", "", "language code (required)")
	_ = suggestCmd.MarkFlagRequired("lang")
}
