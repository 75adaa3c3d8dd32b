package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/TemirB/order-lookup/internal/application/service"
	"github.com/TemirB/order-lookup/internal/domain"
	"github.com/TemirB/order-lookup/internal/observability"
)

//go:generate mockgen -source httpapi.go -destination=httpapi_mock_test.go -package=httpapi

const maxBodyBytes = 1 << 20

type OrderService interface {
	FetchOrderWithStats(ctx context.Context, uid string) (domain.Order, service.LookupStats, error)
	SubmitOrderWithStats(ctx context.Context, order domain.Order) (service.WriteStats, error)
}

// CacheStats is the read-only view of the cache shown on /debug/stats.
type CacheStats interface {
	Len() int
	Size() int
	Evictions() uint64
}

type Snapshotter interface {
	Snapshot() observability.Snapshot
}

type Option func(*Server)

// WithDebugStats mounts GET /debug/stats.
func WithDebugStats(c CacheStats, s Snapshotter) Option {
	return func(srv *Server) {
		srv.cacheStats = c
		srv.snapshots = s
	}
}

type Server struct {
	service OrderService
	router  chi.Router
	logger  *zap.Logger
	metrics observability.Metrics

	cacheStats CacheStats
	snapshots  Snapshotter
}

func New(service OrderService, logger *zap.Logger, metrics observability.Metrics, opts ...Option) *Server {
	s := &Server{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(ZapLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(ServerTimingApp(s.metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/order", s.submitOrder)
	r.Get("/order/", s.missingUID)
	r.Get("/order/{order_uid}", s.getOrder)

	if s.cacheStats != nil && s.snapshots != nil {
		r.Get("/debug/stats", s.debugStats)
	}

	s.router = r
}

func (s *Server) missingUID(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "order id required", http.StatusBadRequest)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "order_uid")
	if uid == "" {
		s.missingUID(w, r)
		return
	}

	order, st, err := s.service.FetchOrderWithStats(r.Context(), uid)

	observability.AppendServerTiming(w.Header(), "cache", st.CacheMs, "")
	observability.AppendServerTiming(w.Header(), "db", st.DBMs, "")
	observability.AppendServerTiming(w.Header(), "source", 0, string(st.Source))
	w.Header().Set("X-Source", string(st.Source))
	observability.SetIfPos(w.Header(), "X-Cache-Time", st.CacheMs)
	observability.SetIfPos(w.Header(), "X-DB-Time", st.DBMs)

	if err != nil {
		writeOutcome(w, domain.OutcomeOf(err, domain.OutcomeFound))
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) submitOrder(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return
	}

	var order domain.Order
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&order); err != nil {
		s.logger.Warn(
			"Error while decoding JSON",
			zap.Error(err),
		)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	if err := order.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	st, err := s.service.SubmitOrderWithStats(r.Context(), order)
	observability.AppendServerTiming(w.Header(), "db_write", st.DBWriteMs, "")
	writeOutcome(w, domain.OutcomeOf(err, domain.OutcomeCreated))
}

type statsResponse struct {
	Cache struct {
		Len       int    `json:"len"`
		Capacity  int    `json:"capacity"`
		Evictions uint64 `json:"evictions"`
	} `json:"cache"`
	Metrics observability.Snapshot `json:"metrics"`
}

func (s *Server) debugStats(w http.ResponseWriter, _ *http.Request) {
	var resp statsResponse
	resp.Cache.Len = s.cacheStats.Len()
	resp.Cache.Capacity = s.cacheStats.Size()
	resp.Cache.Evictions = s.cacheStats.Evictions()
	resp.Metrics = s.snapshots.Snapshot()
	writeJSON(w, http.StatusOK, resp)
}

// writeOutcome replies with the outcome's fixed message. Error causes never
// reach the client.
func writeOutcome(w http.ResponseWriter, o domain.Outcome) {
	http.Error(w, o.Message(), o.HTTPStatus())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Handler() http.Handler { return s.router }
