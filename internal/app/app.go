// Package app wires configuration into a ready-to-run pipeline: stores,
// audit sinks, the model provider, agents, orchestrator and notifier.
package app

import (
	"context"
	"fmt"
	"time"

	"site-pipeline/internal/common/aws"
	"site-pipeline/internal/common/config"
	"site-pipeline/internal/common/database"
	"site-pipeline/internal/common/llm"
	"site-pipeline/internal/common/logger"
	"site-pipeline/internal/common/observability"
	"site-pipeline/internal/orchestrator"
	"site-pipeline/internal/store"
	"site-pipeline/internal/taskrunner"
)

// App holds the long-lived pipeline dependencies.
type App struct {
	Config       *config.Config
	Orchestrator *orchestrator.Orchestrator
	Notifier     *aws.Notifier
	Checks       map[string]func(context.Context) error

	closers []func() error
	logger  logger.Logger
}

// Options override pieces of the wiring.
type Options struct {
	Provider      llm.Provider
	Observability *observability.Observability
	// Retry controls backend connection attempts; zero means one attempt.
	Retry RetryPolicy
}

type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// New builds the pipeline. Backends without configuration are skipped; with
// no durable store at all the pack store is in-memory.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*App, error) {
	a := &App{
		Config: cfg,
		Checks: make(map[string]func(context.Context) error),
		logger: log,
	}

	packs, audit, err := a.stores(ctx, cfg, opts.Retry)
	if err != nil {
		a.Close()
		return nil, err
	}

	provider := opts.Provider
	if provider == nil {
		provider, err = llm.NewProvider(ctx, cfg.LLM)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("model provider: %w", err)
		}
	}

	exec := taskrunner.NewLocalExecutor(cfg.Pipeline.MaxConcurrency, config.GetDuration(cfg.Pipeline.TaskTimeout))
	agents := orchestrator.NewAgents(cfg, provider, exec, log)

	orchOpts := []orchestrator.Option{orchestrator.WithObservability(opts.Observability)}
	if len(audit) > 0 {
		orchOpts = append(orchOpts, orchestrator.WithAudit(audit))
	}
	a.Orchestrator = orchestrator.New(orchestrator.LoadConfig(cfg), agents, packs, log, orchOpts...)

	a.Notifier, err = aws.NewNotifierFromConfig(ctx, cfg.Notifications, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("notifier: %w", err)
	}
	return a, nil
}

func (a *App) stores(ctx context.Context, cfg *config.Config, retry RetryPolicy) (store.PackStore, store.AuditSinks, error) {
	var (
		durable store.PackStore
		cache   store.PackStore
		audit   store.AuditSinks
	)

	if cfg.Database.Postgres.Enabled() {
		var pg *database.PostgresClient
		err := retryWithBackoff(ctx, retry, a.logger, "PostgreSQL connection", func() error {
			var err error
			if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
				return err
			}
			if err = pg.Ping(ctx); err != nil {
				pg.Close()
			}
			return err
		})
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, pg.Close)
		if err := pg.Migrate(ctx); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		a.Checks["postgres"] = pg.Ping

		pgStore := store.NewPostgresPackStore(pg.DB)
		durable = pgStore
		audit = append(audit, pgStore)
		a.logger.Info("PostgreSQL connected", nil)
	}

	if cfg.Database.Redis.Address != "" {
		rdb := database.NewRedis(cfg.Database.Redis)
		if err := retryWithBackoff(ctx, retry, a.logger, "Redis connection", func() error {
			return rdb.Ping(ctx)
		}); err != nil {
			rdb.Close()
			return nil, nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		a.Checks["redis"] = rdb.Ping

		cache = store.NewRedisPackStore(rdb.Client, cfg.Database.Redis.KeyPrefix, config.GetDuration(cfg.Pipeline.CacheTTL))
		a.logger.Info("Redis connected", nil)
	}

	if cfg.Database.Elasticsearch.GetURL() != "" {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, nil, err
		}
		if err := retryWithBackoff(ctx, retry, a.logger, "Elasticsearch connection", func() error {
			return es.Ping(ctx)
		}); err != nil {
			return nil, nil, err
		}
		a.Checks["elasticsearch"] = es.Ping

		audit = append(audit, store.NewElasticsearchAudit(es.Client, cfg.Database.Elasticsearch.AuditIndex))
		a.logger.Info("Elasticsearch connected", nil)
	}

	switch {
	case cache != nil && durable != nil:
		return store.NewTieredPackStore(cache, durable, a.logger), audit, nil
	case durable != nil:
		return durable, audit, nil
	case cache != nil:
		return cache, audit, nil
	default:
		a.logger.Warn("no pack store configured, using in-memory store", nil)
		return store.NewMemoryStore(), audit, nil
	}
}

// Ready runs every backend check.
func (a *App) Ready(ctx context.Context) map[string]string {
	out := make(map[string]string, len(a.Checks))
	for name, check := range a.Checks {
		if err := check(ctx); err != nil {
			out[name] = err.Error()
			continue
		}
		out[name] = "ok"
	}
	return out
}

// Close releases backend connections in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	a.closers = nil
}

func retryWithBackoff(ctx context.Context, policy RetryPolicy, log logger.Logger, operation string, fn func() error) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := policy.Delay

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		log.Warn(operation+" failed, retrying", map[string]interface{}{
			"error":       err.Error(),
			"attempt":     i + 1,
			"maxRetries":  attempts,
			"nextRetryIn": delay.String(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, err)
}
