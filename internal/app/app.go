package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/interlinear-backend/internal/adapter/postgres"
	"github.com/heartmarshall/interlinear-backend/internal/adapter/postgres/gloss"
	"github.com/heartmarshall/interlinear-backend/internal/adapter/postgres/language"
	"github.com/heartmarshall/interlinear-backend/internal/adapter/postgres/phrase"
	"github.com/heartmarshall/interlinear-backend/internal/adapter/postgres/word"
	"github.com/heartmarshall/interlinear-backend/internal/adapter/tracking"
	"github.com/heartmarshall/interlinear-backend/internal/config"
	"github.com/heartmarshall/interlinear-backend/internal/domain"
	"github.com/heartmarshall/interlinear-backend/internal/service/glossing"
	"github.com/heartmarshall/interlinear-backend/internal/service/partition"
	"github.com/heartmarshall/interlinear-backend/internal/service/suggestion"
	"github.com/heartmarshall/interlinear-backend/internal/transport/middleware"
	"github.com/heartmarshall/interlinear-backend/internal/transport/rest"
)

// TrackingPublisher is the sink the gloss workflow reports approvals to.
type TrackingPublisher interface {
	PublishMany(ctx context.Context, events []domain.TrackingEvent) error
}

// App holds the wired application: the database pool, the repositories and
// the services built on top of them.
type App struct {
	Config *config.Config
	Log    *slog.Logger
	Pool   *pgxpool.Pool

	Languages   *language.Repo
	Partition   *partition.Service
	Glossing    *glossing.Service
	Suggestions *suggestion.Service

	redis   *tracking.RedisPublisher
	closers []func()
}

// New connects to Postgres (and Redis when tracking is configured) and wires
// all services. Call Close when done.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if !cfg.Tracking.Enabled() {
		a := Wire(cfg, logger, pool, tracking.NewLogPublisher(logger))
		a.closers = append(a.closers, pool.Close)
		return a, nil
	}

	redisPub, err := tracking.NewRedisPublisher(ctx, logger, cfg.Tracking)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to tracking redis: %w", err)
	}

	a := Wire(cfg, logger, pool, redisPub)
	a.redis = redisPub
	a.closers = append(a.closers, pool.Close, func() { _ = redisPub.Close() })
	return a, nil
}

// Wire builds repositories and services on an existing pool. The caller owns
// the pool and the publisher.
func Wire(cfg *config.Config, logger *slog.Logger, pool *pgxpool.Pool, publisher TrackingPublisher) *App {
	txm := postgres.NewTxManager(pool, logger, cfg.Tx)
	words := word.New(pool)
	phrases := phrase.New(pool)
	glosses := gloss.New(pool)

	a := &App{Config: cfg, Log: logger, Pool: pool}
	a.Languages = language.New(pool)
	a.Partition = partition.NewService(logger, words, phrases, txm, cfg.Partition)
	a.Glossing = glossing.NewService(logger, phrases, a.Partition, glosses, publisher, txm)
	a.Suggestions = suggestion.NewService(logger, words, glosses)
	return a
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Handler builds the HTTP handler with health checks, the REST API and
// the middleware chain.
func (a *App) Handler(limiter *middleware.RateLimiter) http.Handler {
	components := []rest.HealthComponent{{Name: "database", Pinger: a.Pool}}
	if a.redis != nil {
		components = append(components, rest.HealthComponent{Name: "tracking", Pinger: a.redis})
	}

	return NewRouter(a.Log, a.Config,
		rest.NewHealthHandler(BuildVersion(), components...),
		rest.NewInterlinearHandler(a.Languages, a.Partition, a.Glossing, a.Suggestions, a.Log),
		limiter,
	)
}

// NewRouter mounts the handlers and wraps them in the middleware chain:
// request id, logging, panic recovery, CORS, acting user, write limiting.
func NewRouter(
	logger *slog.Logger,
	cfg *config.Config,
	health *rest.HealthHandler,
	api *rest.InterlinearHandler,
	limiter *middleware.RateLimiter,
) http.Handler {
	mux := http.NewServeMux()
	health.Register(mux)
	api.Register(mux)

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
		middleware.ActingUser,
		limiter.LimitWrites(cfg.RateLimit.WritesPerMinute),
	)(mux)
}

// Serve runs the HTTP server until ctx is canceled, then shuts it down
// gracefully within cfg.Server.ShutdownTimeout.
func (a *App) Serve(ctx context.Context) error {
	limiter := middleware.NewRateLimiter(a.Config.RateLimit.CleanupInterval)
	defer limiter.Stop()

	srv := &http.Server{
		Addr:         net.JoinHostPort(a.Config.Server.Host, strconv.Itoa(a.Config.Server.Port)),
		Handler:      a.Handler(limiter),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("http server listening",
			slog.String("addr", srv.Addr),
			slog.String("version", BuildVersion()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.Log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
