package service

//go:generate mockgen -source service.go -destination=service_mock_test.go -package=service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/TemirB/order-lookup/internal/database"
	"github.com/TemirB/order-lookup/internal/domain"
	"github.com/TemirB/order-lookup/internal/observability"
	"go.uber.org/zap"
)

type Cache interface {
	Set(uid string, order domain.Order)
	Get(uid string) (domain.Order, bool)
}

type Storage interface {
	Insert(ctx context.Context, uid string, doc []byte) (int64, error)
	Lookup(ctx context.Context, uid string) ([]byte, bool, error)
}

type WritePolicy string

const (
	// WriteOptimistic puts the order into the cache before the store write
	// and keeps it there whatever the write outcome is.
	WriteOptimistic WritePolicy = "optimistic"
	// WriteAfterCommit puts the order into the cache only after a committed insert.
	WriteAfterCommit WritePolicy = "after-commit"
)

const DefaultTimeout = 3 * time.Second

type Options struct {
	Timeout     time.Duration
	WritePolicy WritePolicy
}

// Service owns the cache and the store handle. It is built once at startup
// and shared by the HTTP and Kafka entry points.
type Service struct {
	cache   Cache
	storage Storage
	opts    Options
	logger  *zap.Logger
	metrics observability.Metrics
}

func NewService(cache Cache, storage Storage, opts Options, logger *zap.Logger, metrics observability.Metrics) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.WritePolicy == "" {
		opts.WritePolicy = WriteOptimistic
	}
	return &Service{
		cache:   cache,
		storage: storage,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// SubmitOrder stores a new order. The store call runs detached from ctx and
// is waited for at most Options.Timeout. A ctx that ends first is reported
// as domain.ErrTimeout as well; the insert still runs to completion.
func (s *Service) SubmitOrder(ctx context.Context, order domain.Order) error {
	_, err := s.SubmitOrderWithStats(ctx, order)
	return err
}

func (s *Service) SubmitOrderWithStats(ctx context.Context, order domain.Order) (WriteStats, error) {
	var st WriteStats
	uid := order.OrderUID

	if s.opts.WritePolicy == WriteOptimistic {
		s.cache.Set(uid, order)
	}

	doc, err := json.Marshal(order)
	if err != nil {
		err = fmt.Errorf("%w: encode order: %v", domain.ErrInternal, err)
		s.finishSubmit(uid, st, err)
		return st, err
	}

	t0 := time.Now()
	_, err = runWithTimeout(ctx, s.opts.Timeout, func(ctx context.Context) (int64, error) {
		return s.storage.Insert(ctx, uid, doc)
	})
	st.DBWriteMs = msSince(t0)

	switch {
	case err == nil:
		if s.opts.WritePolicy == WriteAfterCommit {
			s.cache.Set(uid, order)
		}
		s.metrics.ObserveWrite(st.DBWriteMs)
	case isTimeout(err):
	case database.IsUniqueViolation(err):
		err = fmt.Errorf("%w: %v", domain.ErrAlreadyExists, err)
	default:
		err = fmt.Errorf("%w: insert order: %v", domain.ErrInternal, err)
	}

	s.finishSubmit(uid, st, err)
	return st, err
}

func (s *Service) finishSubmit(uid string, st WriteStats, err error) {
	outcome := domain.OutcomeOf(err, domain.OutcomeCreated)
	s.metrics.ObserveOutcome("submit", string(outcome))

	fields := []zap.Field{
		zap.String("order_uid", uid),
		zap.String("outcome", string(outcome)),
		zap.Float64("db_write_ms", st.DBWriteMs),
	}
	switch outcome {
	case domain.OutcomeCreated:
		s.logger.Info("Order stored", fields...)
	case domain.OutcomeConflict:
		s.logger.Warn("Order already exists", fields...)
	case domain.OutcomeTimeout:
		s.logger.Warn("Store insert timed out", append(fields, zap.Duration("timeout", s.opts.Timeout))...)
	default:
		s.logger.Error("Error while storing order", append(fields, zap.Error(err))...)
	}
}

// FetchOrder returns the order from the cache or, on a miss, from the store.
// Like SubmitOrder, both the expired timeout and an ended ctx are reported as
// domain.ErrTimeout.
func (s *Service) FetchOrder(ctx context.Context, uid string) (domain.Order, error) {
	o, _, err := s.FetchOrderWithStats(ctx, uid)
	return o, err
}

type lookupResult struct {
	doc   []byte
	found bool
}

func (s *Service) FetchOrderWithStats(ctx context.Context, uid string) (domain.Order, LookupStats, error) {
	st := LookupStats{Source: SourceNone}

	tCacheStart := time.Now()
	if order, ok := s.cache.Get(uid); ok {
		st.Source = SourceCache
		st.CacheMs = msSince(tCacheStart)
		s.metrics.IncCacheHit()
		s.metrics.ObserveLookup(string(st.Source), st.CacheMs, 0)
		s.finishFetch(uid, st, nil)
		return order, st, nil
	}
	s.metrics.IncCacheMiss()
	st.CacheMs = msSince(tCacheStart)

	tDbStart := time.Now()
	res, err := runWithTimeout(ctx, s.opts.Timeout, func(ctx context.Context) (lookupResult, error) {
		doc, found, err := s.storage.Lookup(ctx, uid)
		return lookupResult{doc: doc, found: found}, err
	})
	st.DBMs = msSince(tDbStart)

	var order domain.Order
	switch {
	case isTimeout(err):
	case err != nil:
		err = fmt.Errorf("%w: lookup order: %v", domain.ErrInternal, err)
	case !res.found:
		err = domain.ErrNotFound
	default:
		if uerr := json.Unmarshal(res.doc, &order); uerr != nil {
			err = fmt.Errorf("%w: decode stored order: %v", domain.ErrInternal, uerr)
			break
		}
		st.Source = SourceDB
		s.cache.Set(uid, order)
		s.metrics.ObserveLookup(string(st.Source), st.CacheMs, st.DBMs)
	}

	s.finishFetch(uid, st, err)
	if err != nil {
		return domain.Order{}, st, err
	}
	return order, st, nil
}

func (s *Service) finishFetch(uid string, st LookupStats, err error) {
	outcome := domain.OutcomeOf(err, domain.OutcomeFound)
	s.metrics.ObserveOutcome("fetch", string(outcome))

	fields := []zap.Field{
		zap.String("order_uid", uid),
		zap.String("outcome", string(outcome)),
		zap.String("source", string(st.Source)),
		zap.Float64("cache_ms", st.CacheMs),
		zap.Float64("db_ms", st.DBMs),
	}
	switch outcome {
	case domain.OutcomeFound:
		s.logger.Info("Order fetched", fields...)
	case domain.OutcomeNotFound:
		s.logger.Info("Order not found", fields...)
	case domain.OutcomeTimeout:
		s.logger.Warn("Store lookup timed out", append(fields, zap.Duration("timeout", s.opts.Timeout))...)
	default:
		s.logger.Error("Error while fetching order", append(fields, zap.Error(err))...)
	}
}
