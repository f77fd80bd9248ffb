package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shift_task_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shift_task_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shift_task_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"query_type", "table"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shift_task_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_type", "table"},
	)

	RedisOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shift_task_redis_operations_total",
			Help: "Total number of Redis operations",
		},
		[]string{"operation", "status"},
	)

	RedisOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shift_task_redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	TasksCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shift_task_tasks_created_total",
			Help: "Total number of shift tasks created",
		},
		[]string{"work_center"},
	)

	ProductsAggregatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shift_task_products_aggregated_total",
			Help: "Total number of product aggregation attempts",
		},
		[]string{"result"},
	)

	ServiceUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shift_task_service_uptime_seconds",
			Help: "Time since Shift Task Service started in seconds",
		},
	)

	ServiceInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shift_task_service_info",
			Help: "Shift Task Service information",
		},
		[]string{"version", "build_time"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordDBQuery(queryType, table string, duration float64) {
	DBQueriesTotal.WithLabelValues(queryType, table).Inc()
	DBQueryDuration.WithLabelValues(queryType, table).Observe(duration)
}

func RecordRedisOperation(operation, status string, duration float64) {
	RedisOperationsTotal.WithLabelValues(operation, status).Inc()
	RedisOperationDuration.WithLabelValues(operation).Observe(duration)
}

func RecordTaskCreated(workCenter string) {
	TasksCreatedTotal.WithLabelValues(workCenter).Inc()
}

func RecordProductAggregation(result string) {
	ProductsAggregatedTotal.WithLabelValues(result).Inc()
}
