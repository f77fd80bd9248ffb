package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/promline/shift-task-service/internal/models"
	"github.com/promline/shift-task-service/pkg/logger"
)

// Поддерживаемые форматы даты партии в запросах привязки продукции
var batchDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// productRepository реализация ProductRepository
type productRepository struct {
	db             DatabaseInterface
	cache          CacheInterface
	metrics        MetricsInterface
	batchLookupTTL time.Duration
}

// NewProductRepository создает новый репозиторий продукции
func NewProductRepository(deps *RepositoryDependencies) ProductRepository {
	return &productRepository{
		db:             deps.DB,
		cache:          deps.Cache,
		metrics:        deps.MetricsCollector,
		batchLookupTTL: deps.BatchLookupTTL,
	}
}

const productSelectColumns = `id, nomenclature, ekn_code, is_aggregated, aggregated_at, task_id`

func (r *productRepository) CreateProduct(ctx context.Context, q Querier, product *models.ProductCreate, taskID int64) (*models.Product, error) {
	var created models.Product
	err := inTx(ctx, r.db, q, func(q Querier) error {
		row := q.QueryRow(ctx, `
			INSERT INTO product (nomenclature, ekn_code, is_aggregated, task_id)
			VALUES ($1, $2, $3, $4)
			RETURNING `+productSelectColumns,
			product.Nomenclature, product.EKNCode, product.IsAggregated, taskID)
		if err := row.Scan(&created.ID, &created.Nomenclature, &created.EKNCode,
			&created.IsAggregated, &created.AggregatedAt, &created.TaskID); err != nil {
			return fmt.Errorf("failed to insert product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, wrapOp("product_create", err)
	}

	r.metrics.IncDBQuery("product_create")

	return &created, nil
}

func (r *productRepository) ReplaceTaskProducts(ctx context.Context, q Querier, taskID int64, products []models.ProductCreate) ([]models.Product, error) {
	start := time.Now()

	replaced := make([]models.Product, 0, len(products))
	err := inTx(ctx, r.db, q, func(q Querier) error {
		if err := q.Exec(ctx, `DELETE FROM product WHERE task_id = $1`, taskID); err != nil {
			return fmt.Errorf("failed to delete task products: %w", err)
		}

		for i := range products {
			p := &products[i]
			// Неполные элементы пропускаются без ошибки
			if p.Nomenclature == "" || p.EKNCode == "" {
				continue
			}
			var created models.Product
			row := q.QueryRow(ctx, `
				INSERT INTO product (nomenclature, ekn_code, is_aggregated, task_id)
				VALUES ($1, $2, $3, $4)
				RETURNING `+productSelectColumns,
				p.Nomenclature, p.EKNCode, p.IsAggregated, taskID)
			if err := row.Scan(&created.ID, &created.Nomenclature, &created.EKNCode,
				&created.IsAggregated, &created.AggregatedAt, &created.TaskID); err != nil {
				return fmt.Errorf("failed to insert product: %w", err)
			}
			replaced = append(replaced, created)
		}
		return nil
	})
	if err != nil {
		return nil, wrapOp("task_products_replace", err)
	}

	r.metrics.IncDBQuery("task_products_replace")
	r.metrics.ObserveDBQueryDuration("task_products_replace", time.Since(start))

	return replaced, nil
}

func (r *productRepository) AddProductsToBatches(ctx context.Context, items []models.ProductBatchAttach) ([]models.ProductBatchResult, error) {
	start := time.Now()

	results := make([]models.ProductBatchResult, 0, len(items))
	err := inTx(ctx, r.db, nil, func(q Querier) error {
		for i := range items {
			item := &items[i]

			batchDate, err := parseBatchDate(item.BatchDate)
			if err != nil {
				logger.Warn("skipping product with unparsable batch date",
					zap.String("ekn_code", item.EKNCode),
					zap.String("batch_date", item.BatchDate))
				continue
			}

			taskID, found, err := r.findTaskIDByBatch(ctx, q, item.BatchNumber, batchDate)
			if err != nil {
				return err
			}
			if !found {
				logger.Warn("skipping product, batch not found",
					zap.String("ekn_code", item.EKNCode),
					zap.Int64("batch_number", item.BatchNumber),
					zap.Time("batch_date", batchDate))
				continue
			}

			var productID int64
			row := q.QueryRow(ctx, `SELECT id FROM product WHERE ekn_code = $1`, item.EKNCode)
			err = row.Scan(&productID)
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				if err := q.Exec(ctx, `
					INSERT INTO product (ekn_code, is_aggregated, task_id)
					VALUES ($1, FALSE, $2)`, item.EKNCode, taskID); err != nil {
					return fmt.Errorf("failed to insert product: %w", err)
				}
			case err != nil:
				return fmt.Errorf("failed to look up product: %w", err)
			default:
				// Существующая продукция переносится в найденную партию
				if err := q.Exec(ctx, `UPDATE product SET task_id = $2 WHERE id = $1`, productID, taskID); err != nil {
					return fmt.Errorf("failed to reassign product: %w", err)
				}
			}

			results = append(results, models.ProductBatchResult{EKNCode: item.EKNCode, TaskID: taskID})
		}
		return nil
	})
	if err != nil {
		return nil, wrapOp("products_add_to_batches", err)
	}

	r.metrics.IncDBQuery("products_add_to_batches")
	r.metrics.ObserveDBQueryDuration("products_add_to_batches", time.Since(start))

	return results, nil
}

// findTaskIDByBatch ищет задание по (номер партии, дата партии) через кеш.
// Кешируются только положительные результаты: отсутствие партии сейчас
// не означает ее отсутствия через минуту.
func (r *productRepository) findTaskIDByBatch(ctx context.Context, q Querier, batchNumber int64, batchDate time.Time) (int64, bool, error) {
	cacheKey := fmt.Sprintf("batch_task:%d:%s", batchNumber, batchDate.UTC().Format("2006-01-02T15:04:05"))

	if cached, err := r.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		if taskID, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil {
			r.metrics.IncCacheHit("batch_task")
			return taskID, true, nil
		}
	}
	r.metrics.IncCacheMiss("batch_task")

	var taskID int64
	row := q.QueryRow(ctx, `SELECT id FROM tasks WHERE batch_number = $1 AND batch_date = $2`, batchNumber, batchDate)
	err := row.Scan(&taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to find task by batch: %w", err)
	}

	if err := r.cache.Set(ctx, cacheKey, strconv.FormatInt(taskID, 10), r.batchLookupTTL); err != nil {
		logger.Warn("failed to cache batch lookup", zap.Error(err))
	}

	return taskID, true, nil
}

func (r *productRepository) AggregateProduct(ctx context.Context, taskID int64, eknCode string) (*models.Product, error) {
	start := time.Now()

	var product models.Product
	err := inTx(ctx, r.db, nil, func(q Querier) error {
		// FOR UPDATE защищает от конкурентной двойной агрегации
		row := q.QueryRow(ctx, `SELECT `+productSelectColumns+` FROM product WHERE ekn_code = $1 FOR UPDATE`, eknCode)
		err := row.Scan(&product.ID, &product.Nomenclature, &product.EKNCode,
			&product.IsAggregated, &product.AggregatedAt, &product.TaskID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &ProductNotFoundError{EKNCode: eknCode}
			}
			return fmt.Errorf("failed to look up product: %w", err)
		}

		if product.TaskID == nil || *product.TaskID != taskID {
			return &ProductWrongBatchError{
				EKNCode:        eknCode,
				CurrentTaskID:  product.TaskID,
				ExpectedTaskID: taskID,
			}
		}

		if product.IsAggregated {
			aggregatedAt := time.Time{}
			if product.AggregatedAt != nil {
				aggregatedAt = *product.AggregatedAt
			}
			return &ProductAlreadyAggregatedError{EKNCode: eknCode, AggregatedAt: aggregatedAt}
		}

		now := time.Now().UTC()
		if err := q.Exec(ctx, `UPDATE product SET is_aggregated = TRUE, aggregated_at = $2 WHERE id = $1`, product.ID, now); err != nil {
			return fmt.Errorf("failed to aggregate product: %w", err)
		}
		product.IsAggregated = true
		product.AggregatedAt = &now
		return nil
	})
	if err != nil {
		return nil, wrapOp("product_aggregate", err)
	}

	r.metrics.IncDBQuery("product_aggregate")
	r.metrics.ObserveDBQueryDuration("product_aggregate", time.Since(start))

	return &product, nil
}

func (r *productRepository) GetBatchNumbersByEKN(ctx context.Context, eknCode string) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.batch_number
		FROM product p
		JOIN tasks t ON t.id = p.task_id
		WHERE p.ekn_code = $1
		ORDER BY t.batch_number`, eknCode)
	if err != nil {
		return nil, wrapOp("product_batch_numbers", fmt.Errorf("failed to query batch numbers: %w", err))
	}
	defer rows.Close()

	numbers := make([]int64, 0)
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, wrapOp("product_batch_numbers", fmt.Errorf("failed to scan batch number: %w", err))
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapOp("product_batch_numbers", fmt.Errorf("failed to iterate batch numbers: %w", err))
	}

	r.metrics.IncDBQuery("product_batch_numbers")

	return numbers, nil
}

func parseBatchDate(value string) (time.Time, error) {
	for _, layout := range batchDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported batch date format: %q", value)
}
