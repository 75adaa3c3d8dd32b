package handler

//go:generate mockgen -source handler.go -destination=handler_mock_test.go -package=handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TemirB/order-lookup/internal/config"
	"github.com/TemirB/order-lookup/internal/domain"
	"github.com/TemirB/order-lookup/internal/kafka"
	"github.com/TemirB/order-lookup/internal/pkg/retry"
)

var (
	ErrBadJSON     = errors.New("bad json")
	ErrSubmit      = errors.New("submit failed")
	ErrCircuitOpen = errors.New("circuit breaker open")
)

type Service interface {
	SubmitOrder(ctx context.Context, order domain.Order) error
}

type brk interface {
	Allow() error
	Success()
	Failure()
}

type Handler struct {
	service     Service
	breaker     brk
	logger      *zap.Logger
	retryPolicy config.Retry
}

func NewHandler(service Service, breaker brk, retryPolicy config.Retry, logger *zap.Logger) *Handler {
	return &Handler{
		service:     service,
		breaker:     breaker,
		logger:      logger,
		retryPolicy: retryPolicy,
	}
}

// Handle processes one order message. A nil return lets the consumer commit
// the offset. An order that already exists counts as processed.
func (h *Handler) Handle(ctx context.Context, message kafkago.Message) error {
	fields := []zap.Field{
		zap.Int("partition", message.Partition),
		zap.Int64("offset", message.Offset),
	}

	var order domain.Order
	if err := json.Unmarshal(message.Value, &order); err != nil {
		h.logger.Error("bad json format", append(fields, zap.Error(err))...)
		return fmt.Errorf("%w: %w", ErrBadJSON, kafka.ErrPoison)
	}
	if err := order.Validate(); err != nil {
		h.logger.Error("invalid order", append(fields, zap.Error(err))...)
		return fmt.Errorf("%w: %v: %w", ErrBadJSON, err, kafka.ErrPoison)
	}
	fields = append(fields, zap.String("order_uid", order.OrderUID))

	if err := h.breaker.Allow(); err != nil {
		h.logger.Warn("circuit breaker is open", append(fields, zap.Error(err))...)
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}

	duplicate := false
	err := retry.Do(ctx, h.retryPolicy, func() error {
		err := h.service.SubmitOrder(ctx, order)
		if errors.Is(err, domain.ErrAlreadyExists) {
			duplicate = true
			return nil
		}
		return err
	})
	if err != nil {
		h.logger.Error("submit failed after retries", append(fields, zap.Error(err))...)
		h.breaker.Failure()
		return fmt.Errorf("%w: %v", ErrSubmit, err)
	}

	h.breaker.Success()
	h.logger.Info("successfully processed order",
		append(fields,
			zap.Bool("duplicate", duplicate),
			zap.Int("value_bytes", len(message.Value)),
		)...,
	)
	return nil
}
