package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/promline/shift-task-service/internal/models"
)

// workCenterRepository реализация WorkCenterRepository
type workCenterRepository struct {
	db      DatabaseInterface
	metrics MetricsInterface
}

// NewWorkCenterRepository создает новый репозиторий рабочих центров
func NewWorkCenterRepository(deps *RepositoryDependencies) WorkCenterRepository {
	return &workCenterRepository{
		db:      deps.DB,
		metrics: deps.MetricsCollector,
	}
}

func (r *workCenterRepository) GetOrCreate(ctx context.Context, q Querier, name string) (*models.WorkCenter, error) {
	start := time.Now()

	var workCenter models.WorkCenter
	err := inTx(ctx, r.db, q, func(q Querier) error {
		row := q.QueryRow(ctx, `SELECT id, name FROM work_centers WHERE name = $1`, name)
		err := row.Scan(&workCenter.ID, &workCenter.Name)
		if err == nil {
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to look up work center: %w", err)
		}

		row = q.QueryRow(ctx, `
			INSERT INTO work_centers (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id, name`, name)
		if err := row.Scan(&workCenter.ID, &workCenter.Name); err != nil {
			return fmt.Errorf("failed to insert work center: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, wrapOp("work_center_get_or_create", err)
	}

	r.metrics.IncDBQuery("work_center_get_or_create")
	r.metrics.ObserveDBQueryDuration("work_center_get_or_create", time.Since(start))

	return &workCenter, nil
}
