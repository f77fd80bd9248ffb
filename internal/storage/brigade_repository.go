package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/promline/shift-task-service/internal/models"
)

// brigadeRepository реализация BrigadeRepository
type brigadeRepository struct {
	db      DatabaseInterface
	metrics MetricsInterface
}

// NewBrigadeRepository создает новый репозиторий бригад
func NewBrigadeRepository(deps *RepositoryDependencies) BrigadeRepository {
	return &brigadeRepository{
		db:      deps.DB,
		metrics: deps.MetricsCollector,
	}
}

func (r *brigadeRepository) GetOrCreate(ctx context.Context, q Querier, name string) (*models.Brigade, error) {
	start := time.Now()

	var brigade models.Brigade
	err := inTx(ctx, r.db, q, func(q Querier) error {
		row := q.QueryRow(ctx, `SELECT id, name FROM brigade WHERE name = $1`, name)
		err := row.Scan(&brigade.ID, &brigade.Name)
		if err == nil {
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to look up brigade: %w", err)
		}

		// Гонка конкурентных вставок разрешается уникальным индексом по name:
		// DO UPDATE превращает проигравшую вставку в чтение существующей строки
		row = q.QueryRow(ctx, `
			INSERT INTO brigade (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id, name`, name)
		if err := row.Scan(&brigade.ID, &brigade.Name); err != nil {
			return fmt.Errorf("failed to insert brigade: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, wrapOp("brigade_get_or_create", err)
	}

	r.metrics.IncDBQuery("brigade_get_or_create")
	r.metrics.ObserveDBQueryDuration("brigade_get_or_create", time.Since(start))

	return &brigade, nil
}
