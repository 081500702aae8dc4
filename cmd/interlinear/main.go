// Command interlinear runs the interlinear translation service and its
// operator tasks.
//
//	interlinear serve                        start the HTTP API
//	interlinear migrate                      apply database migrations
//	interlinear reconcile --lang en [VERSE]  create singleton phrases for uncovered words
//	interlinear suggest --lang en VERSE      print gloss suggestions for a verse
//
// Configuration comes from --config (or CONFIG_PATH) and the environment.
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/interlinear-backend/internal/app"
	"github.com/heartmarshall/interlinear-backend/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "interlinear",
	Short:         "Interlinear translation service",
	Version:       app.BuildVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config YAML (default: $CONFIG_PATH or ./config.yaml)")
}

// loadConfig reads configuration and builds the process logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, app.NewLogger(cfg.Log), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
