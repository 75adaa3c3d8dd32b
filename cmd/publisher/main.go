// Command publisher generates mock orders and submits them to the service
// over HTTP or through Kafka.
package main

import (
	"context"
	"flag"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/TemirB/order-lookup/internal/config"
	"github.com/TemirB/order-lookup/internal/domain"
	"github.com/TemirB/order-lookup/internal/publisher"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		mode        string
		n           int
		addr        string
		sequential  bool
		concurrency int
	)
	flag.StringVar(&mode, "mode", "http", "transport: http or kafka")
	flag.IntVar(&n, "n", 10, "number of orders to publish")
	flag.StringVar(&addr, "addr", "localhost:8081", "service address for -mode http")
	flag.BoolVar(&sequential, "sequential", true, "use ids 1..n instead of random uuids")
	flag.IntVar(&concurrency, "c", 1, "parallel publishers")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sink publisher.Sink
	switch mode {
	case "http":
		sink = publisher.NewHTTPSink(addr)
	case "kafka":
		kcfg, err := config.LoadKafka()
		if err != nil {
			logger.Fatal("load kafka config", zap.Error(err))
		}
		if !kcfg.Enabled() {
			logger.Fatal("KAFKA_BROKERS must be set for -mode kafka")
		}
		ks, closeWriter := publisher.NewKafkaSink(kcfg.Brokers, kcfg.Topic)
		defer func() { _ = closeWriter() }()
		sink = ks
	default:
		logger.Fatal("unknown mode", zap.String("mode", mode))
	}

	r := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	now := time.Now()
	ids := publisher.IDs(n, sequential)
	orders := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		orders = append(orders, publisher.MockOrder(r, id, now))
	}

	start := time.Now()
	res := publisher.Run(ctx, sink, orders, concurrency, logger)
	logger.Info("publishing finished",
		zap.String("mode", mode),
		zap.Int64("published", res.Published),
		zap.Int64("duplicate", res.Duplicate),
		zap.Int64("failed", res.Failed),
		zap.Duration("elapsed", time.Since(start)),
	)
	if res.Failed > 0 {
		return 1
	}
	return 0
}
