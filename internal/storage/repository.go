package storage

import (
	"context"
	"time"

	"github.com/promline/shift-task-service/internal/models"
)

// BrigadeRepository определяет интерфейс для работы с бригадами
type BrigadeRepository interface {
	// GetOrCreate возвращает бригаду по названию, создавая ее при отсутствии
	GetOrCreate(ctx context.Context, q Querier, name string) (*models.Brigade, error)
}

// WorkCenterRepository определяет интерфейс для работы с рабочими центрами
type WorkCenterRepository interface {
	// GetOrCreate возвращает рабочий центр по названию, создавая его при отсутствии
	GetOrCreate(ctx context.Context, q Querier, name string) (*models.WorkCenter, error)
}

// TaskRepository определяет интерфейс для работы со сменными заданиями
type TaskRepository interface {
	// CreateTask создает задание вместе с бригадой, рабочим центром и продукцией
	CreateTask(ctx context.Context, data *models.TaskCreate) (*models.Task, error)

	// CreateTasks создает пакет заданий в одной транзакции:
	// либо фиксируется весь пакет, либо ничего
	CreateTasks(ctx context.Context, batch []models.TaskCreate) ([]models.Task, error)

	// GetTaskByID возвращает задание со связанной бригадой, рабочим центром и продукцией
	GetTaskByID(ctx context.Context, taskID int64) (*models.Task, error)

	// UpdateTask обновляет скалярные поля, связи и (опционально) список продукции
	UpdateTask(ctx context.Context, taskID int64, update *models.TaskUpdate) (*models.Task, error)

	// GetTasksWithFilters возвращает задания по AND-комбинации заданных фильтров
	GetTasksWithFilters(ctx context.Context, filters *models.TaskFilters) ([]models.Task, error)

	// FindTaskByBatch ищет задание по номеру и дате партии; nil если не найдено
	FindTaskByBatch(ctx context.Context, batchNumber int64, batchDate time.Time) (*models.Task, error)
}

// ProductRepository определяет интерфейс для работы с продукцией
type ProductRepository interface {
	// CreateProduct создает одну единицу продукции, привязанную к заданию
	CreateProduct(ctx context.Context, q Querier, product *models.ProductCreate, taskID int64) (*models.Product, error)

	// ReplaceTaskProducts полностью заменяет продукцию задания:
	// старые строки удаляются, новые вставляются заново
	ReplaceTaskProducts(ctx context.Context, q Querier, taskID int64, products []models.ProductCreate) ([]models.Product, error)

	// AddProductsToBatches привязывает продукцию к существующим партиям;
	// элементы с нечитаемой датой или несуществующей партией пропускаются
	AddProductsToBatches(ctx context.Context, items []models.ProductBatchAttach) ([]models.ProductBatchResult, error)

	// AggregateProduct отмечает продукцию агрегированной (однонаправленный переход)
	AggregateProduct(ctx context.Context, taskID int64, eknCode string) (*models.Product, error)

	// GetBatchNumbersByEKN возвращает номера партий, к которым привязана продукция
	GetBatchNumbersByEKN(ctx context.Context, eknCode string) ([]int64, error)
}

// Repository объединяет все репозитории
type Repository struct {
	Brigade    BrigadeRepository
	WorkCenter WorkCenterRepository
	Task       TaskRepository
	Product    ProductRepository
}

// RepositoryDependencies содержит зависимости для создания репозиториев
type RepositoryDependencies struct {
	DB               DatabaseInterface
	Cache            CacheInterface
	MetricsCollector MetricsInterface
	BatchLookupTTL   time.Duration
}

// Querier определяет общий интерфейс выполнения запросов:
// его реализуют и пул соединений, и открытая транзакция
type Querier interface {
	QueryRow(ctx context.Context, query string, args ...interface{}) Row
	Query(ctx context.Context, query string, args ...interface{}) (Rows, error)
	Exec(ctx context.Context, query string, args ...interface{}) error
}

// DatabaseInterface определяет интерфейс для работы с базой данных
type DatabaseInterface interface {
	Querier
	BeginTx(ctx context.Context) (Tx, error)
	Health(ctx context.Context) error
}

// CacheInterface определяет интерфейс для работы с кешем
type CacheInterface interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Health(ctx context.Context) error
}

// MetricsInterface определяет интерфейс для сбора метрик
type MetricsInterface interface {
	IncDBQuery(operation string)
	IncCacheHit(cacheType string)
	IncCacheMiss(cacheType string)
	ObserveDBQueryDuration(operation string, duration time.Duration)
}

// Row интерфейс для работы с результатом одной строки
type Row interface {
	Scan(dest ...interface{}) error
}

// Rows интерфейс для работы с результатом множества строк
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close()
}

// Tx интерфейс для работы с транзакциями
type Tx interface {
	Querier
	Commit() error
	Rollback() error
}

// inTx выполняет fn внутри транзакции. Если q уже является открытой
// транзакцией, новая не начинается и fn выполняется в текущей:
// вложенные вызовы репозиториев не плодят физических транзакций.
func inTx(ctx context.Context, db DatabaseInterface, q Querier, fn func(Querier) error) error {
	if q != nil {
		if _, ok := q.(Tx); ok {
			return fn(q)
		}
	}

	tx, err := db.BeginTx(ctx)
	if err != nil {
		return &RepositoryError{Op: "begin_transaction", Err: err}
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return &RepositoryError{Op: "commit_transaction", Err: err}
	}

	return nil
}
