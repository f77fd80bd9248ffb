package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/promline/shift-task-service/internal/models"
)

func TestProductRepository_AggregateProduct(t *testing.T) {
	mockDB := &MockDatabaseInterface{}
	mockMetrics := &MockMetricsInterface{}
	mockTx := &MockTx{}

	repo := NewProductRepository(newTestDeps(mockDB, &MockCacheInterface{}, mockMetrics))

	mockDB.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockTx.On("QueryRow", mock.Anything, queryContaining("FOR UPDATE"), mock.Anything).
		Return(&MockRow{data: []interface{}{int64(100), "Изделие", "EKN-1", false, nil, int64(5)}})
	mockTx.On("Exec", mock.Anything, queryContaining("UPDATE product SET is_aggregated"), mock.Anything).Return(nil)
	mockTx.On("Commit").Return(nil)
	mockTx.On("Rollback").Return(nil)
	mockMetrics.On("IncDBQuery", "product_aggregate")
	mockMetrics.On("ObserveDBQueryDuration", "product_aggregate", mock.Anything)

	product, err := repo.AggregateProduct(context.Background(), 5, "EKN-1")

	require.NoError(t, err)
	assert.True(t, product.IsAggregated)
	require.NotNil(t, product.AggregatedAt)
	mockDB.AssertExpectations(t)
	mockTx.AssertExpectations(t)
}

func TestProductRepository_AggregateProduct_NotFound(t *testing.T) {
	mockDB := &MockDatabaseInterface{}
	mockMetrics := &MockMetricsInterface{}
	mockTx := &MockTx{}

	repo := NewProductRepository(newTestDeps(mockDB, &MockCacheInterface{}, mockMetrics))

	mockDB.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockTx.On("QueryRow", mock.Anything, queryContaining("FOR UPDATE"), mock.Anything).
		Return(&MockRow{err: pgx.ErrNoRows})
	mockTx.On("Rollback").Return(nil)

	product, err := repo.AggregateProduct(context.Background(), 5, "EKN-404")

	assert.Nil(t, product)
	var notFound *ProductNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "EKN-404", notFound.EKNCode)
	mockTx.AssertNotCalled(t, "Commit")
}

func TestProductRepository_AggregateProduct_WrongBatch(t *testing.T) {
	mockDB := &MockDatabaseInterface{}
	mockMetrics := &MockMetricsInterface{}
	mockTx := &MockTx{}

	repo := NewProductRepository(newTestDeps(mockDB, &MockCacheInterface{}, mockMetrics))

	mockDB.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockTx.On("QueryRow", mock.Anything, queryContaining("FOR UPDATE"), mock.Anything).
		Return(&MockRow{data: []interface{}{int64(100), "Изделие", "EKN-1", false, nil, int64(7)}})
	mockTx.On("Rollback").Return(nil)

	product, err := repo.AggregateProduct(context.Background(), 5, "EKN-1")

	assert.Nil(t, product)
	var wrongBatch *ProductWrongBatchError
	require.True(t, errors.As(err, &wrongBatch))
	require.NotNil(t, wrongBatch.CurrentTaskID)
	assert.Equal(t, int64(7), *wrongBatch.CurrentTaskID)
	assert.Equal(t, int64(5), wrongBatch.ExpectedTaskID)
	mockTx.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductRepository_AggregateProduct_AlreadyAggregated(t *testing.T) {
	mockDB := &MockDatabaseInterface{}
	mockMetrics := &MockMetricsInterface{}
	mockTx := &MockTx{}

	repo := NewProductRepository(newTestDeps(mockDB, &MockCacheInterface{}, mockMetrics))

	aggregatedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mockDB.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockTx.On("QueryRow", mock.Anything, queryContaining("FOR UPDATE"), mock.Anything).
		Return(&MockRow{data: []interface{}{int64(100), "Изделие", "EKN-1", true, aggregatedAt, int64(5)}})
	mockTx.On("Rollback").Return(nil)

	product, err := repo.AggregateProduct(context.Background(), 5, "EKN-1")

	assert.Nil(t, product)
	var already *ProductAlreadyAggregatedError
	require.True(t, errors.As(err, &already))
	assert.Equal(t, aggregatedAt, already.AggregatedAt)
}

func TestProductRepository_AddProductsToBatches_CreatesMissingProduct(t *testing.T) {
	mockDB := &MockDatabaseInterface{}
	mockCache := &MockCacheInterface{}
	mockMetrics := &MockMetricsInterface{}
	mockTx := &MockTx{}

	deps := newTestDeps(mockDB, mockCache, mockMetrics)
	deps.BatchLookupTTL = 10 * time.Minute
	repo := NewProductRepository(deps)

	items := []models.ProductBatchAttach{
		{EKNCode: "EKN-1", BatchNumber: 42, BatchDate: "2024-05-01"},
		// Нечитаемая дата партии пропускается без ошибки
		{EKNCode: "EKN-2", BatchNumber: 43, BatchDate: "not-a-date"},
	}

	mockDB.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockCache.On("Get", mock.Anything, mock.Anything).Return("", nil)
	mockCache.On("Set", mock.Anything, mock.Anything, "10", 10*time.Minute).Return(nil)
	mockTx.On("QueryRow", mock.Anything, queryContaining("FROM tasks WHERE batch_number"), mock.Anything).
		Return(&MockRow{data: []interface{}{int64(10)}})
	mockTx.On("QueryRow", mock.Anything, queryContaining("SELECT id FROM product"), mock.Anything).
		Return(&MockRow{err: pgx.ErrNoRows})
	mockTx.On("Exec", mock.Anything, queryContaining("INSERT INTO product"), mock.Anything).Return(nil)
	mockTx.On("Commit").Return(nil)
	mockTx.On("Rollback").Return(nil)
	mockMetrics.On("IncCacheMiss", "batch_task")
	mockMetrics.On("IncDBQuery", "products_add_to_batches")
	mockMetrics.On("ObserveDBQueryDuration", "products_add_to_batches", mock.Anything)

	results, err := repo.AddProductsToBatches(context.Background(), items)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "EKN-1", results[0].EKNCode)
	assert.Equal(t, int64(10), results[0].TaskID)
	mockDB.AssertExpectations(t)
	mockTx.AssertExpectations(t)
}

func TestProductRepository_AddProductsToBatches_ReassignsFromCache(t *testing.T) {
	mockDB := &MockDatabaseInterface{}
	mockCache := &MockCacheInterface{}
	mockMetrics := &MockMetricsInterface{}
	mockTx := &MockTx{}

	repo := NewProductRepository(newTestDeps(mockDB, mockCache, mockMetrics))

	items := []models.ProductBatchAttach{
		{EKNCode: "EKN-1", BatchNumber: 42, BatchDate: "2024-05-01"},
	}

	mockDB.On("BeginTx", mock.Anything).Return(mockTx, nil)
	// Положительный результат поиска партии берется из кеша
	mockCache.On("Get", mock.Anything, mock.Anything).Return("10", nil)
	mockTx.On("QueryRow", mock.Anything, queryContaining("SELECT id FROM product"), mock.Anything).
		Return(&MockRow{data: []interface{}{int64(200)}})
	mockTx.On("Exec", mock.Anything, queryContaining("UPDATE product SET task_id"), mock.Anything).Return(nil)
	mockTx.On("Commit").Return(nil)
	mockTx.On("Rollback").Return(nil)
	mockMetrics.On("IncCacheHit", "batch_task")
	mockMetrics.On("IncDBQuery", "products_add_to_batches")
	mockMetrics.On("ObserveDBQueryDuration", "products_add_to_batches", mock.Anything)

	results, err := repo.AddProductsToBatches(context.Background(), items)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(10), results[0].TaskID)
	mockTx.AssertNotCalled(t, "QueryRow", mock.Anything, queryContaining("FROM tasks"), mock.Anything)
	mockTx.AssertExpectations(t)
}

func TestProductRepository_AddProductsToBatches_SkipsUnknownBatch(t *testing.T) {
	mockDB := &MockDatabaseInterface{}
	mockCache := &MockCacheInterface{}
	mockMetrics := &MockMetricsInterface{}
	mockTx := &MockTx{}

	repo := NewProductRepository(newTestDeps(mockDB, mockCache, mockMetrics))

	items := []models.ProductBatchAttach{
		{EKNCode: "EKN-1", BatchNumber: 404, BatchDate: "2024-05-01"},
	}

	mockDB.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockCache.On("Get", mock.Anything, mock.Anything).Return("", nil)
	mockTx.On("QueryRow", mock.Anything, queryContaining("FROM tasks WHERE batch_number"), mock.Anything).
		Return(&MockRow{err: pgx.ErrNoRows})
	mockTx.On("Commit").Return(nil)
	mockTx.On("Rollback").Return(nil)
	mockMetrics.On("IncCacheMiss", "batch_task")
	mockMetrics.On("IncDBQuery", "products_add_to_batches")
	mockMetrics.On("ObserveDBQueryDuration", "products_add_to_batches", mock.Anything)

	results, err := repo.AddProductsToBatches(context.Background(), items)

	require.NoError(t, err)
	assert.Empty(t, results)
	mockTx.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductRepository_ReplaceTaskProducts_SkipsIncomplete(t *testing.T) {
	mockDB := &MockDatabaseInterface{}
	mockMetrics := &MockMetricsInterface{}
	mockTx := &MockTx{}

	repo := NewProductRepository(newTestDeps(mockDB, &MockCacheInterface{}, mockMetrics))

	products := []models.ProductCreate{
		{Nomenclature: "Изделие", EKNCode: "EKN-1"},
		{Nomenclature: "", EKNCode: "EKN-2"},
		{Nomenclature: "Изделие 3", EKNCode: ""},
	}

	mockTx.On("Exec", mock.Anything, queryContaining("DELETE FROM product"), mock.Anything).Return(nil)
	mockTx.On("QueryRow", mock.Anything, queryContaining("INSERT INTO product"), mock.Anything).
		Return(&MockRow{data: []interface{}{int64(100), "Изделие", "EKN-1", false, nil, int64(10)}}).Once()
	mockMetrics.On("IncDBQuery", "task_products_replace")
	mockMetrics.On("ObserveDBQueryDuration", "task_products_replace", mock.Anything)

	replaced, err := repo.ReplaceTaskProducts(context.Background(), mockTx, 10, products)

	require.NoError(t, err)
	require.Len(t, replaced, 1)
	assert.Equal(t, "EKN-1", *replaced[0].EKNCode)
	mockTx.AssertExpectations(t)
}

func TestProductRepository_ReplaceTaskProducts_EmptyListClearsAll(t *testing.T) {
	mockDB := &MockDatabaseInterface{}
	mockMetrics := &MockMetricsInterface{}
	mockTx := &MockTx{}

	repo := NewProductRepository(newTestDeps(mockDB, &MockCacheInterface{}, mockMetrics))

	mockTx.On("Exec", mock.Anything, queryContaining("DELETE FROM product"), []interface{}{int64(10)}).Return(nil)
	mockMetrics.On("IncDBQuery", "task_products_replace")
	mockMetrics.On("ObserveDBQueryDuration", "task_products_replace", mock.Anything)

	replaced, err := repo.ReplaceTaskProducts(context.Background(), mockTx, 10, []models.ProductCreate{})

	require.NoError(t, err)
	assert.Empty(t, replaced)
	mockTx.AssertExpectations(t)
	mockTx.AssertNotCalled(t, "QueryRow", mock.Anything, mock.Anything, mock.Anything)
}

func TestParseBatchDate(t *testing.T) {
	for _, value := range []string{"2024-05-01", "2024-05-01T08:00:00", "2024-05-01T08:00:00Z"} {
		_, err := parseBatchDate(value)
		assert.NoError(t, err, value)
	}

	_, err := parseBatchDate("01.05.2024")
	assert.Error(t, err)
}
