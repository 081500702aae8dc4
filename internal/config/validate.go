package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) must not exceed max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}

	if err := c.Tx.validate(); err != nil {
		return fmt.Errorf("tx: %w", err)
	}

	if err := c.Partition.validate(); err != nil {
		return fmt.Errorf("partition: %w", err)
	}

	if c.RateLimit.WritesPerMinute < 0 {
		return fmt.Errorf("rate_limit.writes_per_minute must be >= 0 (got %d)", c.RateLimit.WritesPerMinute)
	}
	if c.RateLimit.WritesPerMinute > 0 && c.RateLimit.CleanupInterval <= 0 {
		return fmt.Errorf("rate_limit.cleanup_interval must be > 0 when the limit is enabled")
	}

	if c.Tracking.Enabled() && c.Tracking.Stream == "" {
		return fmt.Errorf("tracking.stream is required when tracking.redis_addr is set")
	}

	return nil
}

func (t *TxConfig) validate() error {
	if t.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1 (got %d)", t.MaxAttempts)
	}
	if t.RetryBackoff < 0 {
		return fmt.Errorf("retry_backoff must be >= 0 (got %v)", t.RetryBackoff)
	}
	return nil
}

func (p *PartitionConfig) validate() error {
	if p.MaxWordsPerPhrase < 2 {
		return fmt.Errorf("max_words_per_phrase must be >= 2 (got %d)", p.MaxWordsPerPhrase)
	}
	if p.ReconcileWorkers < 1 {
		return fmt.Errorf("reconcile_workers must be >= 1 (got %d)", p.ReconcileWorkers)
	}
	if p.ReconcileAttempts < 1 {
		return fmt.Errorf("reconcile_attempts must be >= 1 (got %d)", p.ReconcileAttempts)
	}
	return nil
}
