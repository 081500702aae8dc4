package testhelper

import (
	"io"
	"log/slog"
	"time"

	"github.com/heartmarshall/interlinear-backend/internal/config"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TxConfig returns retry settings suitable for tests.
func TxConfig() config.TxConfig {
	return config.TxConfig{MaxAttempts: 3, RetryBackoff: time.Millisecond}
}
