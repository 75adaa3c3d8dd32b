package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
)

// Conn is the subset of *pgxpool.Pool the store needs.
type Conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store keeps orders as JSONB documents in a single table. Every call runs in
// its own transaction and holds the store's exclusive region for its whole
// duration.
type Store struct {
	conn  Conn
	sem   *semaphore.Weighted
	table string

	insertSQL string
	lookupSQL string
	schemaSQL string
}

func NewStore(conn Conn, table string, maxConns int32) *Store {
	if maxConns < 1 {
		maxConns = 1
	}
	t := pgx.Identifier{table}.Sanitize()
	return &Store{
		conn:      conn,
		sem:       semaphore.NewWeighted(int64(maxConns)),
		table:     table,
		insertSQL: "INSERT INTO " + t + " (order_uid, data) VALUES ($1, $2)",
		lookupSQL: "SELECT data FROM " + t + " WHERE order_uid = $1",
		schemaSQL: "CREATE TABLE IF NOT EXISTS " + t + " (order_uid TEXT PRIMARY KEY, data JSONB NOT NULL)",
	}
}

var tracer = otel.Tracer("github.com/TemirB/order-lookup/internal/database")

func (s *Store) startSpan(ctx context.Context, name, uid string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.sql.table", s.table),
		attribute.String("order.uid", uid),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Insert writes a new document. A duplicate order_uid comes back as the
// driver's *pgconn.PgError, see IsUniqueViolation.
func (s *Store) Insert(ctx context.Context, uid string, doc []byte) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "store.insert", uid)
	defer func() { endSpan(span, err) }()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer s.sem.Release(1)

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}

	tag, err := tx.Exec(ctx, s.insertSQL, uid, doc)
	if err != nil {
		return 0, rollback(ctx, tx, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Lookup fetches the raw document. Absence is reported as found=false with a
// nil error.
func (s *Store) Lookup(ctx context.Context, uid string) (_ []byte, found bool, err error) {
	ctx, span := s.startSpan(ctx, "store.lookup", uid)
	defer func() {
		span.SetAttributes(attribute.Bool("order.found", found))
		endSpan(span, err)
	}()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, false, err
	}
	defer s.sem.Release(1)

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin: %w", err)
	}

	var doc []byte
	err = tx.QueryRow(ctx, s.lookupSQL, uid).Scan(&doc)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		found = false
	case err != nil:
		return nil, false, rollback(ctx, tx, err)
	default:
		found = true
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit: %w", err)
	}
	return doc, found, nil
}

// EnsureSchema creates the orders table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)

	if _, err := s.conn.Exec(ctx, s.schemaSQL); err != nil {
		return fmt.Errorf("ensure schema %s: %w", s.table, err)
	}
	return nil
}

// IsUniqueViolation reports whether err carries SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// rollback keeps the statement error as the primary cause.
func rollback(ctx context.Context, tx pgx.Tx, cause error) error {
	if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
		return errors.Join(cause, fmt.Errorf("rollback: %w", rbErr))
	}
	return cause
}
