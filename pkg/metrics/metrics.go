// Package metrics содержит Prometheus метрики сервиса
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics коллектор Prometheus метрик сервиса
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueriesTotal  *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec

	dbPoolOpenConns  *prometheus.GaugeVec
	dbPoolIdleConns  *prometheus.GaugeVec
	dbPoolInUseConns *prometheus.GaugeVec

	cacheOperationsTotal *prometheus.CounterVec

	bookingsCreatedTotal  *prometheus.CounterVec
	bookingConflictsTotal *prometheus.CounterVec
	allocationFailedTotal *prometheus.CounterVec
}

// New создает и регистрирует метрики в default registry
func New(serviceName string) *Metrics {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests.",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "HTTP request duration in seconds.",
				ConstLabels: prometheus.Labels{"service": serviceName},
				Buckets:     prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		dbQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "db_queries_total",
				Help:        "Total number of database queries.",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"operation", "status"},
		),
		dbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "db_query_duration_seconds",
				Help:        "Database query duration in seconds.",
				ConstLabels: prometheus.Labels{"service": serviceName},
				Buckets:     []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"operation"},
		),
		dbPoolOpenConns: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "db_pool_open_connections",
				Help:        "Number of open database connections.",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"db"},
		),
		dbPoolIdleConns: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "db_pool_idle_connections",
				Help:        "Number of idle database connections.",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"db"},
		),
		dbPoolInUseConns: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "db_pool_in_use_connections",
				Help:        "Number of in-use database connections.",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"db"},
		),
		cacheOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "availability_cache_operations_total",
				Help:        "Availability cache operations by result (hit, miss, invalidate, error).",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"operation", "result"},
		),
		bookingsCreatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "bookings_created_total",
				Help:        "Total number of successfully created bookings.",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"status"},
		),
		bookingConflictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "booking_conflicts_total",
				Help:        "Bookings rejected because the slot was taken by a concurrent request.",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"resource"},
		),
		allocationFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "allocation_failures_total",
				Help:        "Allocation failures by missing resource (room, staff).",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"resource"},
		),
	}

	prometheus.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dbQueriesTotal,
		m.dbQueryDuration,
		m.dbPoolOpenConns,
		m.dbPoolIdleConns,
		m.dbPoolInUseConns,
		m.cacheOperationsTotal,
		m.bookingsCreatedTotal,
		m.bookingConflictsTotal,
		m.allocationFailedTotal,
	)

	return m
}

// ObserveHTTPRequest записывает метрики HTTP запроса
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery записывает метрики запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.dbQueriesTotal.WithLabelValues(operation, status).Inc()
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetDBPoolStats записывает состояние connection pool
func (m *Metrics) SetDBPoolStats(dbName string, open, idle, inUse int) {
	m.dbPoolOpenConns.WithLabelValues(dbName).Set(float64(open))
	m.dbPoolIdleConns.WithLabelValues(dbName).Set(float64(idle))
	m.dbPoolInUseConns.WithLabelValues(dbName).Set(float64(inUse))
}

// IncCacheOperation записывает результат операции с кешем доступности
func (m *Metrics) IncCacheOperation(operation, result string) {
	m.cacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// IncBookingCreated записывает успешное создание бронирования
func (m *Metrics) IncBookingCreated(status string) {
	m.bookingsCreatedTotal.WithLabelValues(status).Inc()
}

// IncBookingConflict записывает проигранную гонку за слот
func (m *Metrics) IncBookingConflict(resource string) {
	m.bookingConflictsTotal.WithLabelValues(resource).Inc()
}

// IncAllocationFailed записывает неудачный подбор ресурса
func (m *Metrics) IncAllocationFailed(resource string) {
	m.allocationFailedTotal.WithLabelValues(resource).Inc()
}
