package public

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/promline/shift-task-service/internal/models"
	"github.com/promline/shift-task-service/internal/storage"
)

// MockProductService - мок для service.ProductService
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) AddProductsToBatches(ctx context.Context, items []models.ProductBatchAttach) ([]models.ProductBatchResult, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProductBatchResult), args.Error(1)
}

func (m *MockProductService) AggregateProduct(ctx context.Context, taskID int64, eknCode string) (*models.AggregateResponse, error) {
	args := m.Called(ctx, taskID, eknCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AggregateResponse), args.Error(1)
}

func (m *MockProductService) GetBatchNumbersByEKN(ctx context.Context, eknCode string) ([]int64, error) {
	args := m.Called(ctx, eknCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func newProductRouter(handler *ProductHandler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(testCaller)
	router.Route("/task", func(r chi.Router) {
		r.Post("/products", handler.AttachToBatches)
		r.Get("/products/{eknCode}", handler.BatchNumbers)
		r.Post("/aggregate", handler.Aggregate)
	})
	return router
}

func TestProductHandler_Aggregate(t *testing.T) {
	mockService := &MockProductService{}
	handler := NewProductHandler(mockService, zap.NewNop())
	router := newProductRouter(handler)

	mockService.On("AggregateProduct", mock.Anything, int64(5), "EKN-1").
		Return(&models.AggregateResponse{EKNCode: "EKN-1"}, nil)

	body, _ := json.Marshal(models.AggregateRequest{TaskID: 5, EKNCode: "EKN-1"})
	req := httptest.NewRequest(http.MethodPost, "/task/aggregate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response models.AggregateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "EKN-1", response.EKNCode)
	mockService.AssertExpectations(t)
}

func TestProductHandler_Aggregate_MissingFields(t *testing.T) {
	mockService := &MockProductService{}
	handler := NewProductHandler(mockService, zap.NewNop())
	router := newProductRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/task/aggregate", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "AggregateProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductHandler_Aggregate_BusinessRuleViolations(t *testing.T) {
	currentTaskID := int64(7)
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			"product not found",
			&storage.ProductNotFoundError{EKNCode: "EKN-1"},
			http.StatusNotFound,
			models.ErrorCodeNotFound,
		},
		{
			"wrong batch",
			&storage.ProductWrongBatchError{EKNCode: "EKN-1", CurrentTaskID: &currentTaskID, ExpectedTaskID: 5},
			http.StatusBadRequest,
			models.ErrorCodeBusinessRule,
		},
		{
			"already aggregated",
			&storage.ProductAlreadyAggregatedError{EKNCode: "EKN-1", AggregatedAt: time.Now()},
			http.StatusBadRequest,
			models.ErrorCodeBusinessRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockProductService{}
			handler := NewProductHandler(mockService, zap.NewNop())
			router := newProductRouter(handler)

			mockService.On("AggregateProduct", mock.Anything, int64(5), "EKN-1").Return(nil, tt.err)

			body, _ := json.Marshal(models.AggregateRequest{TaskID: 5, EKNCode: "EKN-1"})
			req := httptest.NewRequest(http.MethodPost, "/task/aggregate", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var response models.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
			assert.Equal(t, tt.wantCode, response.Error)
		})
	}
}

func TestProductHandler_AttachToBatches(t *testing.T) {
	mockService := &MockProductService{}
	handler := NewProductHandler(mockService, zap.NewNop())
	router := newProductRouter(handler)

	mockService.On("AddProductsToBatches", mock.Anything, mock.Anything).
		Return([]models.ProductBatchResult{{EKNCode: "EKN-1", TaskID: 10}}, nil)

	body, _ := json.Marshal([]models.ProductBatchAttach{
		{EKNCode: "EKN-1", BatchNumber: 42, BatchDate: "2024-05-01"},
	})
	req := httptest.NewRequest(http.MethodPost, "/task/products", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []models.ProductBatchResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	require.Len(t, response, 1)
	assert.Equal(t, int64(10), response[0].TaskID)
}

func TestProductHandler_BatchNumbers(t *testing.T) {
	mockService := &MockProductService{}
	handler := NewProductHandler(mockService, zap.NewNop())
	router := newProductRouter(handler)

	mockService.On("GetBatchNumbersByEKN", mock.Anything, "EKN-1").Return([]int64{42, 43}, nil)

	req := httptest.NewRequest(http.MethodGet, "/task/products/EKN-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response models.BatchNumbersResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "EKN-1", response.EKNCode)
	assert.Equal(t, []int64{42, 43}, response.BatchNumbers)
}
