package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TemirB/order-lookup/internal/application/handler"
	"github.com/TemirB/order-lookup/internal/application/service"
	"github.com/TemirB/order-lookup/internal/cache"
	"github.com/TemirB/order-lookup/internal/config"
	"github.com/TemirB/order-lookup/internal/database"
	"github.com/TemirB/order-lookup/internal/httpapi"
	"github.com/TemirB/order-lookup/internal/kafka"
	"github.com/TemirB/order-lookup/internal/observability"
	"github.com/TemirB/order-lookup/internal/pkg/breaker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("service stopped with error", zap.Error(err))
	}
	logger.Info("service stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" || os.Getenv("APP_ENV") == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	shutdownTracing, err := observability.SetupTracing(ctx, "order-lookup", cfg.OtelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	pool, err := database.NewPool(ctx, cfg.DSN(), cfg.Pg.MaxConns, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := database.NewStore(pool, cfg.Pg.Table, cfg.Pg.MaxConns)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	orders, err := cache.New(cfg.CacheCap)
	if err != nil {
		return err
	}

	metrics := observability.NewInmem(256)
	svc := service.NewService(orders, store, service.Options{
		Timeout:     cfg.RequestTimeout,
		WritePolicy: service.WritePolicy(cfg.WritePolicy),
	}, logger, metrics)

	server := httpapi.New(svc, logger, metrics, httpapi.WithDebugStats(orders, metrics))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.ListenAndServe(gctx, cfg.HTTPAddr)
	})

	if cfg.Kafka.Enabled() {
		if err := kafka.EnsureTopic(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions, 1, logger); err != nil {
			logger.Warn("could not ensure kafka topic", zap.Error(err))
		}

		reader := kafka.NewReader(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Group)
		h := handler.NewHandler(svc, breaker.New(cfg.Breaker), cfg.Retry, logger)
		consumer := kafka.NewConsumer(h, reader, kafka.Options{Workers: cfg.Kafka.Workers}, logger, metrics)

		g.Go(func() error {
			consumer.Start(gctx)
			if err := reader.Close(); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("kafka reader close", zap.Error(err))
			}
			return nil
		})
	} else {
		logger.Info("KAFKA_BROKERS not set, kafka ingestion disabled")
	}

	logger.Info("service started",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Int("cache_cap", cfg.CacheCap),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.String("write_policy", cfg.WritePolicy),
	)
	return g.Wait()
}
