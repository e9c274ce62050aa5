package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	resultsservice "voteflow/contexts/voting/results-service"
	resultspostgres "voteflow/contexts/voting/results-service/adapters/postgres"
	voteintake "voteflow/contexts/voting/vote-intake"
	"voteflow/contexts/voting/vote-intake/adapters/identity"
	intakeredis "voteflow/contexts/voting/vote-intake/adapters/redis"
	intakeentities "voteflow/contexts/voting/vote-intake/domain/entities"
	voteworker "voteflow/contexts/voting/vote-worker"
	workerpostgres "voteflow/contexts/voting/vote-worker/adapters/postgres"
	workerredis "voteflow/contexts/voting/vote-worker/adapters/redis"
	"voteflow/internal/platform/broadcast"
	"voteflow/internal/platform/config"
	"voteflow/internal/platform/db"
	"voteflow/internal/platform/httpserver"
	"voteflow/internal/platform/messaging"
	"voteflow/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const shutdownTimeout = 5 * time.Second

type APIApp struct {
	server   *httpserver.Server
	results  resultsservice.Module
	hub      *broadcast.Hub
	database *db.Database
	redis    *redis.Client
	logger   *slog.Logger
}

type WorkerApp struct {
	worker  voteworker.Module
	metrics *metrics.Server
	logger  *slog.Logger
}

// BuildAPI waits for the vote store, then wires intake, results and the live
// channel onto one HTTP server.
func BuildAPI(ctx context.Context) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg, "api")
	registry, pipeline := newRegistry()

	database, err := db.ConnectWithRetry(ctx, cfg.StoreDriver, cfg.StoreDSN(), cfg.ReconnectDelay, logger)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	hub := broadcast.NewHub(broadcast.Options{
		Metrics: pipeline,
		Logger:  logger,
	})

	hostname, _ := os.Hostname()
	intake := voteintake.NewModule(voteintake.Dependencies{
		Queue:   intakeredis.NewQueue(redisClient, cfg.VoteQueueKey, logger),
		IDGen:   identity.UUIDGenerator{},
		Metrics: pipeline,
		Options: intakeentities.Options{
			OptionA:  cfg.OptionA,
			OptionB:  cfg.OptionB,
			Hostname: hostname,
		},
		Logger: logger,
	})

	results := resultsservice.NewModule(resultsservice.Dependencies{
		Votes:         resultspostgres.NewRepository(database, logger),
		Broadcaster:   hub,
		Clock:         systemClock{},
		Metrics:       pipeline,
		Topic:         cfg.ScoresTopic,
		TallyInterval: cfg.TallyInterval,
		Logger:        logger,
	})

	server := httpserver.New(httpserver.Options{
		Addr:               normalizeAddr(cfg.HTTPPort),
		Logger:             logger,
		Intake:             intake,
		Results:            results,
		Live:               broadcast.WebSocketHandler{Hub: hub, Logger: logger},
		Metrics:            metrics.Handler(registry),
		RefreshLimiter:     rate.NewLimiter(rate.Limit(cfg.RefreshRatePerSec), cfg.RefreshBurst),
		OnRefreshThrottled: pipeline.RefreshThrottled.Inc,
		EnableSwagger:      cfg.EnableSwagger,
	})

	return &APIApp{
		server:   server,
		results:  results,
		hub:      hub,
		database: database,
		redis:    redisClient,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg, "worker")
	registry, pipeline := newRegistry()

	worker := voteworker.NewModule(voteworker.Dependencies{
		Queues: workerredis.Connector{
			Options: messaging.RedisOptions{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			},
			Key: cfg.VoteQueueKey,
		},
		Stores: workerpostgres.Connector{
			Driver: cfg.StoreDriver,
			DSN:    cfg.StoreDSN(),
			Logger: logger,
		},
		PollInterval:   cfg.ConsumerPollInterval,
		ReconnectDelay: cfg.ReconnectDelay,
		Metrics:        pipeline,
		Logger:         logger,
	})

	return &WorkerApp{
		worker:  worker,
		metrics: metrics.NewServer(cfg.MetricsAddr, registry, logger),
		logger:  logger,
	}, nil
}

// Run serves HTTP and runs the tally loop until ctx is cancelled or the
// server fails.
func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return a.results.Aggregator.Run(ctx)
	})
	group.Go(a.server.Start)
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.hub.Close()
		return a.server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func (a *APIApp) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.database != nil {
		errs = append(errs, a.database.Close())
	}
	return errors.Join(errs...)
}

// Run drives the queue consumer and the metrics listener. A fatal
// persistence error from the consumer is returned unchanged.
func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		err := w.worker.Consumer.Run(ctx)
		if err != nil {
			return err
		}
		return context.Canceled
	})
	group.Go(w.metrics.Start)
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return w.metrics.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (w *WorkerApp) Close() error {
	return nil
}

// NewLogger builds the process logger: JSON on stdout at the configured level.
func NewLogger(cfg config.Config, process string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})
	logger := slog.New(handler).With("service", cfg.ServiceName, "process", process)
	slog.SetDefault(logger)
	return logger
}

func newRegistry() (*prometheus.Registry, *metrics.Metrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry, metrics.New(registry)
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
