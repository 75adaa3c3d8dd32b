package kafka

//go:generate mockgen -source consumer.go -destination=consumer_mock_test.go -package=kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TemirB/order-lookup/internal/observability"
)

// ErrPoison marks a message that can never be processed. The consumer logs
// and commits it instead of redelivering.
var ErrPoison = errors.New("poison message")

type MessageHandler interface {
	Handle(ctx context.Context, msg kafkago.Message) error
}

type Reader interface {
	Config() kafkago.ReaderConfig
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type Options struct {
	// Workers is the number of partition lanes. A partition always lands in
	// the same lane, so Workers above the partition count stay idle.
	Workers int
	// RetryDelay is the pause before a failed message is handed out again.
	RetryDelay time.Duration
	// IdleBackoff is the pause after a benign fetch timeout.
	IdleBackoff time.Duration
}

const laneBuffer = 16

type Consumer struct {
	handler MessageHandler
	reader  Reader
	zlogger *zap.Logger
	metrics observability.Metrics

	opts  Options
	lanes []chan kafkago.Message
	wg    sync.WaitGroup
}

func NewConsumer(handler MessageHandler, reader Reader, opts Options, logger *zap.Logger, metrics observability.Metrics) *Consumer {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 200 * time.Millisecond
	}
	if opts.IdleBackoff <= 0 {
		opts.IdleBackoff = 10 * time.Second
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	lanes := make([]chan kafkago.Message, opts.Workers)
	for i := range lanes {
		lanes[i] = make(chan kafkago.Message, laneBuffer)
	}
	return &Consumer{
		handler: handler,
		reader:  reader,
		zlogger: logger,
		metrics: metrics,
		opts:    opts,
		lanes:   lanes,
	}
}

// Start fetches messages until ctx is done and routes each one to the lane
// owning its partition. A lane settles its messages one at a time and
// commits each before taking the next, so offsets of a partition are
// committed in fetch order while different partitions progress in
// parallel. A failed message is redelivered until it succeeds, turns out to
// be poison, or ctx ends.
func (c *Consumer) Start(ctx context.Context) {
	rc := c.reader.Config()
	c.zlogger.Info("Starting Kafka consumer",
		zap.Strings("brokers", rc.Brokers),
		zap.String("group", rc.GroupID),
		zap.String("topic", rc.Topic),
		zap.Int("workers", c.opts.Workers),
	)

	for i, lane := range c.lanes {
		c.wg.Add(1)
		go c.worker(ctx, i, lane)
	}
	defer c.wg.Wait()

	for {
		if ctx.Err() != nil {
			return
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			if isBenignFetchTimeout(err) {
				c.zlogger.Debug("fetch timeout (idle), backing off", zap.Error(err))
				sleepWithContext(ctx, c.opts.IdleBackoff)
				continue
			}

			c.zlogger.Warn("FetchMessage error, backing off", zap.Error(err))
			sleepWithContext(ctx, 500*time.Millisecond)
			continue
		}

		select {
		case c.lanes[laneFor(msg.Partition, len(c.lanes))] <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func laneFor(partition, lanes int) int {
	if partition < 0 {
		partition = -partition
	}
	return partition % lanes
}

func (c *Consumer) worker(ctx context.Context, id int, lane <-chan kafkago.Message) {
	defer c.wg.Done()
	log := c.zlogger.With(zap.Int("worker", id))

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-lane:
			if !c.process(ctx, log, msg) {
				return
			}
			c.commit(ctx, msg)
		}
	}
}

// process returns false only when ctx ended before msg was settled.
func (c *Consumer) process(ctx context.Context, log *zap.Logger, msg kafkago.Message) bool {
	for attempt := 1; ; attempt++ {
		err := c.handle(ctx, log, msg)
		switch {
		case err == nil:
			return true
		case errors.Is(err, ErrPoison):
			log.Error("poison message skipped", zap.Error(err),
				zap.String("topic", msg.Topic), zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset))
			return true
		}

		log.Warn("handler failed; message will be redelivered", zap.Error(err),
			zap.String("topic", msg.Topic), zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt))
		sleepWithContext(ctx, c.opts.RetryDelay)
		if ctx.Err() != nil {
			return false
		}
	}
}

func (c *Consumer) handle(ctx context.Context, log *zap.Logger, msg kafkago.Message) error {
	start := time.Now()
	err := c.handler.Handle(ctx, msg)
	elapsed := time.Since(start)
	c.metrics.ObserveKafka(float64(elapsed.Microseconds())/1000.0, err == nil)

	if err != nil {
		log.Debug("message handling failed",
			zap.Error(err),
			zap.String("topic", msg.Topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Duration("elapsed", elapsed),
		)
		return err
	}
	log.Debug("message handled",
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.Int("value_bytes", len(msg.Value)),
		zap.Duration("elapsed", elapsed),
	)
	return nil
}

func (c *Consumer) commit(ctx context.Context, msg kafkago.Message) {
	for ctx.Err() == nil {
		err := c.reader.CommitMessages(ctx, msg)
		if err == nil {
			c.zlogger.Debug("message committed",
				zap.String("topic", msg.Topic), zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset))
			return
		}
		c.zlogger.Warn(
			"commit failed",
			zap.Error(err),
			zap.String("topic", msg.Topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
		)
		sleepWithContext(ctx, c.opts.RetryDelay)
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func isBenignFetchTimeout(err error) bool {
	if errors.Is(err, kafkago.RequestTimedOut) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "Request Timed Out") ||
		strings.Contains(s, "no messages received from kafka within the allocated time")
}

// NewReader builds a consumer-group reader that starts from the earliest
// offset for a new group.
func NewReader(brokers []string, topic, group string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     group,
		StartOffset: kafkago.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
}
