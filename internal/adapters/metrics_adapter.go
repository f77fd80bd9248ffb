package adapters

import (
	"strings"
	"time"

	"github.com/promline/shift-task-service/internal/storage"
	"github.com/promline/shift-task-service/pkg/metrics"
)

// MetricsAdapter адаптирует pkg/metrics для storage.MetricsInterface
type MetricsAdapter struct{}

// NewMetricsAdapter создает новый адаптер метрик
func NewMetricsAdapter() storage.MetricsInterface {
	return &MetricsAdapter{}
}

func (a *MetricsAdapter) IncDBQuery(operation string) {
	metrics.DBQueriesTotal.WithLabelValues(operation, tableForOperation(operation)).Inc()
}

func (a *MetricsAdapter) IncCacheHit(cacheType string) {
	metrics.RedisOperationsTotal.WithLabelValues(cacheType, "hit").Inc()
}

func (a *MetricsAdapter) IncCacheMiss(cacheType string) {
	metrics.RedisOperationsTotal.WithLabelValues(cacheType, "miss").Inc()
}

func (a *MetricsAdapter) ObserveDBQueryDuration(operation string, duration time.Duration) {
	metrics.DBQueryDuration.WithLabelValues(operation, tableForOperation(operation)).Observe(duration.Seconds())
}

func tableForOperation(operation string) string {
	switch {
	case strings.HasPrefix(operation, "brigade_"):
		return "brigade"
	case strings.HasPrefix(operation, "work_center_"):
		return "work_centers"
	case strings.HasPrefix(operation, "product"):
		return "product"
	case strings.HasPrefix(operation, "task_products"):
		return "product"
	default:
		return "tasks"
	}
}
