package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор метрик сервиса (HTTP, БД, бизнес-события)
type Metrics struct {
	serviceName string

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbConnections   *prometheus.GaugeVec

	bookingsCreatedTotal   *prometheus.CounterVec
	conflictsDetectedTotal *prometheus.CounterVec
	icalSyncRunsTotal      *prometheus.CounterVec
}

// New создает и регистрирует метрики в дефолтном регистре prometheus
func New(serviceName string) *Metrics {
	return &Metrics{
		serviceName: serviceName,

		httpRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),

		httpRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),

		dbQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "operation"}),

		dbConnections: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections",
			Help: "Database connection pool state",
		}, []string{"service", "state"}),

		bookingsCreatedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total number of bookings created",
		}, []string{"service"}),

		conflictsDetectedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_conflicts_detected_total",
			Help: "Total number of bookings moved to conflict status",
		}, []string{"service"}),

		icalSyncRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ical_sync_runs_total",
			Help: "Total number of iCal sync runs by result status",
		}, []string{"service", "status"}),
	}
}

// ObserveHTTPRequest фиксирует выполненный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует выполненный запрос к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration) {
	m.dbQueryDuration.WithLabelValues(m.serviceName, operation).Observe(duration.Seconds())
}

// SetDBConnections обновляет состояние пула соединений
func (m *Metrics) SetDBConnections(open, idle, inUse int) {
	m.dbConnections.WithLabelValues(m.serviceName, "open").Set(float64(open))
	m.dbConnections.WithLabelValues(m.serviceName, "idle").Set(float64(idle))
	m.dbConnections.WithLabelValues(m.serviceName, "in_use").Set(float64(inUse))
}

// IncBookingsCreated увеличивает счетчик созданных бронирований
func (m *Metrics) IncBookingsCreated() {
	m.bookingsCreatedTotal.WithLabelValues(m.serviceName).Inc()
}

// AddConflictsDetected увеличивает счетчик обнаруженных конфликтов
func (m *Metrics) AddConflictsDetected(n int) {
	m.conflictsDetectedTotal.WithLabelValues(m.serviceName).Add(float64(n))
}

// IncIcalSyncRun фиксирует завершенный проход синхронизации календарей
func (m *Metrics) IncIcalSyncRun(status string) {
	m.icalSyncRunsTotal.WithLabelValues(m.serviceName, status).Inc()
}
