package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/promline/shift-task-service/internal/models"
	"github.com/promline/shift-task-service/internal/storage"
	"github.com/promline/shift-task-service/pkg/metrics"
)

const (
	// Ограничения пагинации списка заданий
	defaultTaskListLimit = 100
	maxTaskListLimit     = 1000
)

// taskService реализация TaskService
type taskService struct {
	tasks  storage.TaskRepository
	logger *zap.Logger
}

// NewTaskService создает новый сервис сменных заданий
func NewTaskService(tasks storage.TaskRepository, logger *zap.Logger) TaskService {
	return &taskService{
		tasks:  tasks,
		logger: logger,
	}
}

func (s *taskService) Create(ctx context.Context, data *models.TaskCreate) (*models.Task, error) {
	if err := validateShiftWindow(data.ShiftStart, data.ShiftEnd); err != nil {
		return nil, err
	}

	task, err := s.tasks.CreateTask(ctx, data)
	if err != nil {
		s.logger.Error("failed to create task",
			zap.Int64("batch_number", data.BatchNumber),
			zap.Error(err))
		return nil, err
	}

	metrics.RecordTaskCreated(task.WorkCenter.Name)
	s.logger.Info("task created",
		zap.Int64("task_id", task.ID),
		zap.Int64("batch_number", task.BatchNumber),
		zap.String("work_center", task.WorkCenter.Name))

	return task, nil
}

func (s *taskService) CreateBatch(ctx context.Context, batch []models.TaskCreate) ([]models.Task, error) {
	if len(batch) == 0 {
		return nil, NewValidationError("tasks", "batch must contain at least one task")
	}
	for i := range batch {
		if err := validateShiftWindow(batch[i].ShiftStart, batch[i].ShiftEnd); err != nil {
			return nil, err
		}
	}

	tasks, err := s.tasks.CreateTasks(ctx, batch)
	if err != nil {
		s.logger.Error("failed to create task batch",
			zap.Int("count", len(batch)),
			zap.Error(err))
		return nil, err
	}

	for i := range tasks {
		metrics.RecordTaskCreated(tasks[i].WorkCenter.Name)
	}
	s.logger.Info("task batch created", zap.Int("count", len(tasks)))

	return tasks, nil
}

func (s *taskService) Get(ctx context.Context, taskID int64) (*models.Task, error) {
	return s.tasks.GetTaskByID(ctx, taskID)
}

func (s *taskService) Update(ctx context.Context, taskID int64, update *models.TaskUpdate) (*models.Task, error) {
	if update.ShiftStart != nil && update.ShiftEnd != nil {
		if err := validateShiftWindow(*update.ShiftStart, *update.ShiftEnd); err != nil {
			return nil, err
		}
	}

	if update.Products != nil {
		for i := range *update.Products {
			p := &(*update.Products)[i]
			if p.Nomenclature == "" {
				return nil, NewValidationError("products", "product nomenclature is required")
			}
			if p.EKNCode == "" {
				return nil, NewValidationError("products", "product ekn_code is required")
			}
		}
	}

	// closed_date ведется сервисом: закрытие задания ставит отметку времени,
	// повторное открытие сбрасывает ее
	if update.StatusClose != nil {
		update.SetClosedDate = true
		if *update.StatusClose {
			now := time.Now().UTC()
			update.ClosedDate = &now
		} else {
			update.ClosedDate = nil
		}
	}

	task, err := s.tasks.UpdateTask(ctx, taskID, update)
	if err != nil {
		s.logger.Error("failed to update task",
			zap.Int64("task_id", taskID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("task updated", zap.Int64("task_id", task.ID))

	return task, nil
}

func (s *taskService) GetFiltered(ctx context.Context, filters *models.TaskFilters) ([]models.Task, error) {
	if filters.Offset < 0 {
		return nil, NewValidationError("skip", "must be greater than or equal to 0")
	}
	if filters.Limit > maxTaskListLimit {
		return nil, NewValidationError("limit", "must be less than or equal to 1000")
	}
	if filters.Limit <= 0 {
		filters.Limit = defaultTaskListLimit
	}

	return s.tasks.GetTasksWithFilters(ctx, filters)
}

func validateShiftWindow(start, end time.Time) error {
	if !start.Before(end) {
		return NewValidationError("shift_start", "shift start must be before shift end")
	}
	return nil
}
