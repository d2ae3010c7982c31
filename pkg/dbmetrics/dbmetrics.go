package dbmetrics

import (
	"context"
	"database/sql"
	"time"

	"github.com/m04kA/SMC-SpaceBookingService/pkg/metrics"
)

// DBExecutor минимальный интерфейс для выполнения запросов.
// Реализуется *sql.DB, *sql.Tx, *DB и *Tx.
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TxExecutor интерфейс транзакции
type TxExecutor interface {
	DBExecutor
	Commit() error
	Rollback() error
}

type ctxKey struct{}

// ContextWithExecutor кладет активную транзакцию в контекст.
// Репозитории достают её через GetExecutor.
func ContextWithExecutor(ctx context.Context, tx DBExecutor) context.Context {
	return context.WithValue(ctx, ctxKey{}, tx)
}

// GetExecutor возвращает активную транзакцию из контекста или fallback
func GetExecutor(ctx context.Context, fallback DBExecutor) DBExecutor {
	if tx, ok := ctx.Value(ctxKey{}).(DBExecutor); ok {
		return tx
	}
	return fallback
}

// IsInTransaction возвращает true, если в контексте есть активная транзакция
func IsInTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(ctxKey{}).(DBExecutor)
	return ok
}

// DB обёртка над *sql.DB, которая пишет метрики длительности запросов
type DB struct {
	db *sql.DB
	m  *metrics.Metrics
}

// Wrap оборачивает *sql.DB сбором метрик запросов
func Wrap(db *sql.DB, m *metrics.Metrics) *DB {
	return &DB{db: db, m: m}
}

// WrapWithDefault оборачивает *sql.DB и запускает периодический сбор
// состояния connection pool. Остановка через закрытие stopCh.
func WrapWithDefault(db *sql.DB, m *metrics.Metrics, serviceName string, stopCh chan struct{}) *DB {
	wrapped := Wrap(db, m)

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				stats := db.Stats()
				m.SetDBConnections(stats.OpenConnections, stats.Idle, stats.InUse)
			}
		}
	}()

	return wrapped
}

func (d *DB) observe(operation string, start time.Time) {
	if d.m != nil {
		d.m.ObserveDBQuery(operation, time.Since(start))
	}
}

// ExecContext выполняет запрос без результата
func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	defer d.observe("exec", time.Now())
	return d.db.ExecContext(ctx, query, args...)
}

// QueryContext выполняет запрос с результатом
func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	defer d.observe("query", time.Now())
	return d.db.QueryContext(ctx, query, args...)
}

// QueryRowContext выполняет запрос с одной строкой результата
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	defer d.observe("query_row", time.Now())
	return d.db.QueryRowContext(ctx, query, args...)
}

// BeginTx начинает транзакцию; запросы внутри неё тоже попадают в метрики
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, m: d.m}, nil
}

// Tx обёртка над *sql.Tx с метриками
type Tx struct {
	tx *sql.Tx
	m  *metrics.Metrics
}

func (t *Tx) observe(operation string, start time.Time) {
	if t.m != nil {
		t.m.ObserveDBQuery(operation, time.Since(start))
	}
}

// ExecContext выполняет запрос в транзакции
func (t *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	defer t.observe("tx_exec", time.Now())
	return t.tx.ExecContext(ctx, query, args...)
}

// QueryContext выполняет запрос с результатом в транзакции
func (t *Tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	defer t.observe("tx_query", time.Now())
	return t.tx.QueryContext(ctx, query, args...)
}

// QueryRowContext выполняет запрос с одной строкой в транзакции
func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	defer t.observe("tx_query_row", time.Now())
	return t.tx.QueryRowContext(ctx, query, args...)
}

// Commit фиксирует транзакцию
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback откатывает транзакцию
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
