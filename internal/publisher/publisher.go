package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TemirB/order-lookup/internal/domain"
	"github.com/TemirB/order-lookup/internal/pkg/pool"
)

// ErrRejected is returned by a Sink when the service answered with a non-2xx,
// non-409 status.
var ErrRejected = errors.New("order rejected")

type Sink interface {
	Publish(ctx context.Context, order domain.Order) error
}

// HTTPSink posts orders to the service's POST /order endpoint. A 409 is
// reported as domain.ErrAlreadyExists.
type HTTPSink struct {
	URL    string
	Client *http.Client
}

func NewHTTPSink(addr string) *HTTPSink {
	url := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	return &HTTPSink{
		URL:    url + "/order",
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSink) Publish(ctx context.Context, order domain.Order) error {
	body, err := json.Marshal(order)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	switch {
	case resp.StatusCode == http.StatusConflict:
		return domain.ErrAlreadyExists
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	default:
		return fmt.Errorf("%w: %d %s", ErrRejected, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// KafkaSink writes orders to a topic keyed by order_uid.
type KafkaSink struct {
	writer messageWriter
}

func NewKafkaSink(brokers []string, topic string) (*KafkaSink, func() error) {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkago.RequireAll,
	}
	return &KafkaSink{writer: w}, w.Close
}

func (s *KafkaSink) Publish(ctx context.Context, order domain.Order) error {
	value, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(order.OrderUID),
		Value: value,
		Time:  time.Now(),
	})
}

type Result struct {
	Published int64
	Duplicate int64
	Failed    int64
}

// Run publishes orders through sink using up to concurrency goroutines.
func Run(ctx context.Context, sink Sink, orders []domain.Order, concurrency int, logger *zap.Logger) Result {
	var published, duplicate, failed atomic.Int64

	p := pool.New(concurrency)
	for _, o := range orders {
		err := p.Submit(ctx, func() {
			err := sink.Publish(ctx, o)
			switch {
			case err == nil:
				published.Add(1)
				logger.Debug("order published", zap.String("order_uid", o.OrderUID))
			case errors.Is(err, domain.ErrAlreadyExists):
				duplicate.Add(1)
				logger.Info("order already exists", zap.String("order_uid", o.OrderUID))
			default:
				failed.Add(1)
				logger.Error("failed to publish order", zap.String("order_uid", o.OrderUID), zap.Error(err))
			}
		})
		if err != nil {
			break
		}
	}
	p.Close()
	p.Wait()

	return Result{
		Published: published.Load(),
		Duplicate: duplicate.Load(),
		Failed:    failed.Load(),
	}
}
