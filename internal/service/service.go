package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/promline/shift-task-service/internal/models"
	"github.com/promline/shift-task-service/internal/storage"
)

// TaskService определяет интерфейс бизнес-логики сменных заданий
type TaskService interface {
	Create(ctx context.Context, data *models.TaskCreate) (*models.Task, error)
	CreateBatch(ctx context.Context, batch []models.TaskCreate) ([]models.Task, error)
	Get(ctx context.Context, taskID int64) (*models.Task, error)
	Update(ctx context.Context, taskID int64, update *models.TaskUpdate) (*models.Task, error)
	GetFiltered(ctx context.Context, filters *models.TaskFilters) ([]models.Task, error)
}

// ProductService определяет интерфейс бизнес-логики продукции
type ProductService interface {
	AddProductsToBatches(ctx context.Context, items []models.ProductBatchAttach) ([]models.ProductBatchResult, error)
	AggregateProduct(ctx context.Context, taskID int64, eknCode string) (*models.AggregateResponse, error)
	GetBatchNumbersByEKN(ctx context.Context, eknCode string) ([]int64, error)
}

// ServiceDependencies содержит зависимости для создания сервисов
type ServiceDependencies struct {
	Repository *storage.Repository
	Logger     *zap.Logger
}

// Service объединяет все сервисы
type Service struct {
	Task    TaskService
	Product ProductService
}

// NewService создает сервисы с общими зависимостями
func NewService(deps *ServiceDependencies) *Service {
	return &Service{
		Task:    NewTaskService(deps.Repository.Task, deps.Logger),
		Product: NewProductService(deps.Repository.Product, deps.Logger),
	}
}

// ValidationError возникает при нарушении бизнес-правил входных данных
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %q: %s", e.Field, e.Message)
	}
	return e.Message
}

// NewValidationError создает ошибку валидации
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
