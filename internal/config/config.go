package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Database  DatabaseConfig  `yaml:"database"`
	Tx        TxConfig        `yaml:"tx"`
	Partition PartitionConfig `yaml:"partition"`
	Tracking  TrackingConfig  `yaml:"tracking"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PATCH,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-User-Id,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// RateLimitConfig bounds mutating requests per acting user. Zero disables it.
type RateLimitConfig struct {
	WritesPerMinute int           `yaml:"writes_per_minute" env:"RATE_LIMIT_WRITES_PER_MINUTE" env-default:"600"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"  env:"RATE_LIMIT_CLEANUP_INTERVAL"  env-default:"5m"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// TxConfig controls retries of transactions that fail with a serialization
// failure or a deadlock.
type TxConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"  env:"TX_MAX_ATTEMPTS"  env-default:"3"`
	RetryBackoff time.Duration `yaml:"retry_backoff" env:"TX_RETRY_BACKOFF" env-default:"20ms"`
}

// PartitionConfig holds phrase partitioning limits.
type PartitionConfig struct {
	MaxWordsPerPhrase int `yaml:"max_words_per_phrase" env:"PARTITION_MAX_WORDS_PER_PHRASE" env-default:"32"`
	ReconcileWorkers  int `yaml:"reconcile_workers"    env:"PARTITION_RECONCILE_WORKERS"    env-default:"4"`
	ReconcileAttempts int `yaml:"reconcile_attempts"   env:"PARTITION_RECONCILE_ATTEMPTS"   env-default:"3"`
}

// TrackingConfig holds analytics publisher settings. An empty RedisAddr
// selects the log publisher.
type TrackingConfig struct {
	RedisAddr     string        `yaml:"redis_addr"     env:"TRACKING_REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"TRACKING_REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db"       env:"TRACKING_REDIS_DB"       env-default:"0"`
	Stream        string        `yaml:"stream"         env:"TRACKING_STREAM"         env-default:"tracking_events"`
	MaxLen        int64         `yaml:"max_len"        env:"TRACKING_MAX_LEN"        env-default:"100000"`
	Timeout       time.Duration `yaml:"timeout"        env:"TRACKING_TIMEOUT"        env-default:"2s"`
}

// Enabled reports whether a Redis publisher is configured.
func (c TrackingConfig) Enabled() bool {
	return c.RedisAddr != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
