package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/promline/shift-task-service/internal/models"
)

// taskRepository реализация TaskRepository
type taskRepository struct {
	db          DatabaseInterface
	metrics     MetricsInterface
	brigades    BrigadeRepository
	workCenters WorkCenterRepository
	products    ProductRepository
}

// NewTaskRepository создает новый репозиторий сменных заданий
func NewTaskRepository(deps *RepositoryDependencies, brigades BrigadeRepository, workCenters WorkCenterRepository, products ProductRepository) TaskRepository {
	return &taskRepository{
		db:          deps.DB,
		metrics:     deps.MetricsCollector,
		brigades:    brigades,
		workCenters: workCenters,
		products:    products,
	}
}

const taskSelectColumns = `
	t.id, t.status_close, t.closed_date, t.task_description, t.shift,
	t.shift_start, t.shift_end, t.batch_number, t.batch_date,
	t.brigade_id, t.work_center_id, b.name, w.name`

const taskSelectFrom = `
	FROM tasks t
	JOIN brigade b ON b.id = t.brigade_id
	JOIN work_centers w ON w.id = t.work_center_id`

func (r *taskRepository) CreateTask(ctx context.Context, data *models.TaskCreate) (*models.Task, error) {
	start := time.Now()

	var created *models.Task
	err := inTx(ctx, r.db, nil, func(q Querier) error {
		task, err := r.createTaskInTx(ctx, q, data)
		if err != nil {
			return err
		}
		created = task
		return nil
	})
	if err != nil {
		return nil, wrapOp("task_create", err)
	}

	r.metrics.IncDBQuery("task_create")
	r.metrics.ObserveDBQueryDuration("task_create", time.Since(start))

	return created, nil
}

func (r *taskRepository) CreateTasks(ctx context.Context, batch []models.TaskCreate) ([]models.Task, error) {
	start := time.Now()

	tasks := make([]models.Task, 0, len(batch))
	err := inTx(ctx, r.db, nil, func(q Querier) error {
		for i := range batch {
			task, err := r.createTaskInTx(ctx, q, &batch[i])
			if err != nil {
				return err
			}
			tasks = append(tasks, *task)
		}
		return nil
	})
	if err != nil {
		return nil, wrapOp("task_create_batch", err)
	}

	r.metrics.IncDBQuery("task_create_batch")
	r.metrics.ObserveDBQueryDuration("task_create_batch", time.Since(start))

	return tasks, nil
}

// createTaskInTx создает задание со связями внутри открытой транзакции.
// Повторные названия бригад и рабочих центров внутри одного пакета
// разрешаются в существующие строки через GetOrCreate.
func (r *taskRepository) createTaskInTx(ctx context.Context, q Querier, data *models.TaskCreate) (*models.Task, error) {
	brigade, err := r.brigades.GetOrCreate(ctx, q, data.Brigade.Name)
	if err != nil {
		return nil, err
	}
	workCenter, err := r.workCenters.GetOrCreate(ctx, q, data.WorkCenter.Name)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		StatusClose:     data.StatusClose,
		TaskDescription: data.TaskDescription,
		Shift:           data.Shift,
		ShiftStart:      data.ShiftStart,
		ShiftEnd:        data.ShiftEnd,
		BatchNumber:     data.BatchNumber,
		BatchDate:       data.BatchDate,
		BrigadeID:       brigade.ID,
		WorkCenterID:    workCenter.ID,
		Brigade:         brigade,
		WorkCenter:      workCenter,
	}

	row := q.QueryRow(ctx, `
		INSERT INTO tasks (status_close, task_description, shift, shift_start, shift_end,
			batch_number, batch_date, brigade_id, work_center_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		task.StatusClose, task.TaskDescription, task.Shift, task.ShiftStart, task.ShiftEnd,
		task.BatchNumber, task.BatchDate, task.BrigadeID, task.WorkCenterID)
	if err := row.Scan(&task.ID); err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	task.Products = make([]models.Product, 0, len(data.Products))
	for i := range data.Products {
		product, err := r.products.CreateProduct(ctx, q, &data.Products[i], task.ID)
		if err != nil {
			return nil, err
		}
		task.Products = append(task.Products, *product)
	}

	return task, nil
}

func (r *taskRepository) GetTaskByID(ctx context.Context, taskID int64) (*models.Task, error) {
	start := time.Now()

	task, err := r.getTask(ctx, r.db, taskID)
	if err != nil {
		return nil, wrapOp("task_get", err)
	}

	r.metrics.IncDBQuery("task_get")
	r.metrics.ObserveDBQueryDuration("task_get", time.Since(start))

	return task, nil
}

func (r *taskRepository) getTask(ctx context.Context, q Querier, taskID int64) (*models.Task, error) {
	var task models.Task
	var brigadeName, workCenterName string

	row := q.QueryRow(ctx, `SELECT`+taskSelectColumns+taskSelectFrom+` WHERE t.id = $1`, taskID)
	err := row.Scan(
		&task.ID, &task.StatusClose, &task.ClosedDate, &task.TaskDescription, &task.Shift,
		&task.ShiftStart, &task.ShiftEnd, &task.BatchNumber, &task.BatchDate,
		&task.BrigadeID, &task.WorkCenterID, &brigadeName, &workCenterName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &TaskNotFoundError{TaskID: taskID}
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	task.Brigade = &models.Brigade{ID: task.BrigadeID, Name: brigadeName}
	task.WorkCenter = &models.WorkCenter{ID: task.WorkCenterID, Name: workCenterName}

	products, err := r.loadProducts(ctx, q, task.ID)
	if err != nil {
		return nil, err
	}
	task.Products = products

	return &task, nil
}

func (r *taskRepository) loadProducts(ctx context.Context, q Querier, taskID int64) ([]models.Product, error) {
	rows, err := q.Query(ctx, `
		SELECT id, nomenclature, ekn_code, is_aggregated, aggregated_at, task_id
		FROM product WHERE task_id = $1 ORDER BY id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Nomenclature, &p.EKNCode, &p.IsAggregated, &p.AggregatedAt, &p.TaskID); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}

func (r *taskRepository) UpdateTask(ctx context.Context, taskID int64, update *models.TaskUpdate) (*models.Task, error) {
	start := time.Now()

	var updated *models.Task
	err := inTx(ctx, r.db, nil, func(q Querier) error {
		// Проверка существования до любых изменений
		if _, err := r.getTask(ctx, q, taskID); err != nil {
			return err
		}

		set := make([]string, 0, 8)
		args := make([]interface{}, 0, 8)

		addSet := func(column string, value interface{}) {
			args = append(args, value)
			set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
		}

		if update.StatusClose != nil {
			addSet("status_close", *update.StatusClose)
		}
		if update.SetClosedDate {
			addSet("closed_date", update.ClosedDate)
		}
		if update.TaskDescription != nil {
			addSet("task_description", *update.TaskDescription)
		}
		if update.Shift != nil {
			addSet("shift", *update.Shift)
		}
		if update.ShiftStart != nil {
			addSet("shift_start", *update.ShiftStart)
		}
		if update.ShiftEnd != nil {
			addSet("shift_end", *update.ShiftEnd)
		}
		if update.BatchNumber != nil {
			addSet("batch_number", *update.BatchNumber)
		}
		if update.BatchDate != nil {
			addSet("batch_date", *update.BatchDate)
		}

		if update.Brigade != nil {
			brigade, err := r.brigades.GetOrCreate(ctx, q, update.Brigade.Name)
			if err != nil {
				return err
			}
			addSet("brigade_id", brigade.ID)
		}
		if update.WorkCenter != nil {
			workCenter, err := r.workCenters.GetOrCreate(ctx, q, update.WorkCenter.Name)
			if err != nil {
				return err
			}
			addSet("work_center_id", workCenter.ID)
		}

		if len(set) > 0 {
			args = append(args, taskID)
			query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
			if err := q.Exec(ctx, query, args...); err != nil {
				return fmt.Errorf("failed to update task: %w", err)
			}
		}

		if update.Products != nil {
			if _, err := r.products.ReplaceTaskProducts(ctx, q, taskID, *update.Products); err != nil {
				return err
			}
		}

		task, err := r.getTask(ctx, q, taskID)
		if err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, wrapOp("task_update", err)
	}

	r.metrics.IncDBQuery("task_update")
	r.metrics.ObserveDBQueryDuration("task_update", time.Since(start))

	return updated, nil
}

func (r *taskRepository) GetTasksWithFilters(ctx context.Context, filters *models.TaskFilters) ([]models.Task, error) {
	start := time.Now()

	conds := make([]string, 0, 7)
	args := make([]interface{}, 0, 9)

	addCond := func(expr string, value interface{}) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(expr, len(args)))
	}

	if filters.StatusClose != nil {
		addCond("t.status_close = $%d", *filters.StatusClose)
	}
	if filters.BatchNumber != nil {
		addCond("t.batch_number = $%d", *filters.BatchNumber)
	}
	if filters.BatchDate != nil {
		addCond("t.batch_date = $%d", *filters.BatchDate)
	}
	if filters.WorkCenterID != nil {
		addCond("t.work_center_id = $%d", *filters.WorkCenterID)
	}
	if filters.BrigadeID != nil {
		addCond("t.brigade_id = $%d", *filters.BrigadeID)
	}
	if filters.ShiftStartFrom != nil {
		addCond("t.shift_start >= $%d", *filters.ShiftStartFrom)
	}
	if filters.ShiftStartTo != nil {
		addCond("t.shift_start <= $%d", *filters.ShiftStartTo)
	}

	query := `SELECT` + taskSelectColumns + taskSelectFrom
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, filters.Offset)
	query += fmt.Sprintf(" ORDER BY t.id OFFSET $%d", len(args))
	args = append(args, filters.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapOp("task_list", fmt.Errorf("failed to query tasks: %w", err))
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var task models.Task
		var brigadeName, workCenterName string
		if err := rows.Scan(
			&task.ID, &task.StatusClose, &task.ClosedDate, &task.TaskDescription, &task.Shift,
			&task.ShiftStart, &task.ShiftEnd, &task.BatchNumber, &task.BatchDate,
			&task.BrigadeID, &task.WorkCenterID, &brigadeName, &workCenterName); err != nil {
			return nil, wrapOp("task_list", fmt.Errorf("failed to scan task: %w", err))
		}
		task.Brigade = &models.Brigade{ID: task.BrigadeID, Name: brigadeName}
		task.WorkCenter = &models.WorkCenter{ID: task.WorkCenterID, Name: workCenterName}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapOp("task_list", fmt.Errorf("failed to iterate tasks: %w", err))
	}

	for i := range tasks {
		products, err := r.loadProducts(ctx, r.db, tasks[i].ID)
		if err != nil {
			return nil, wrapOp("task_list", err)
		}
		tasks[i].Products = products
	}

	r.metrics.IncDBQuery("task_list")
	r.metrics.ObserveDBQueryDuration("task_list", time.Since(start))

	return tasks, nil
}

func (r *taskRepository) FindTaskByBatch(ctx context.Context, batchNumber int64, batchDate time.Time) (*models.Task, error) {
	var task models.Task
	var brigadeName, workCenterName string

	row := r.db.QueryRow(ctx, `SELECT`+taskSelectColumns+taskSelectFrom+
		` WHERE t.batch_number = $1 AND t.batch_date = $2`, batchNumber, batchDate)
	err := row.Scan(
		&task.ID, &task.StatusClose, &task.ClosedDate, &task.TaskDescription, &task.Shift,
		&task.ShiftStart, &task.ShiftEnd, &task.BatchNumber, &task.BatchDate,
		&task.BrigadeID, &task.WorkCenterID, &brigadeName, &workCenterName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapOp("task_find_by_batch", fmt.Errorf("failed to find task by batch: %w", err))
	}

	task.Brigade = &models.Brigade{ID: task.BrigadeID, Name: brigadeName}
	task.WorkCenter = &models.WorkCenter{ID: task.WorkCenterID, Name: workCenterName}

	r.metrics.IncDBQuery("task_find_by_batch")

	return &task, nil
}
