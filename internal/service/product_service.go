package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/promline/shift-task-service/internal/models"
	"github.com/promline/shift-task-service/internal/storage"
	"github.com/promline/shift-task-service/pkg/metrics"
)

// productService реализация ProductService
type productService struct {
	products storage.ProductRepository
	logger   *zap.Logger
}

// NewProductService создает новый сервис продукции
func NewProductService(products storage.ProductRepository, logger *zap.Logger) ProductService {
	return &productService{
		products: products,
		logger:   logger,
	}
}

func (s *productService) AddProductsToBatches(ctx context.Context, items []models.ProductBatchAttach) ([]models.ProductBatchResult, error) {
	if len(items) == 0 {
		return nil, NewValidationError("products", "request must contain at least one product")
	}

	// Неполные элементы отбрасываются до обращения к хранилищу
	valid := make([]models.ProductBatchAttach, 0, len(items))
	for i := range items {
		item := &items[i]
		if item.EKNCode == "" || item.BatchNumber == 0 || item.BatchDate == "" {
			s.logger.Warn("skipping incomplete product entry",
				zap.String("ekn_code", item.EKNCode),
				zap.Int64("batch_number", item.BatchNumber))
			continue
		}
		valid = append(valid, *item)
	}

	results, err := s.products.AddProductsToBatches(ctx, valid)
	if err != nil {
		s.logger.Error("failed to add products to batches",
			zap.Int("count", len(valid)),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("products added to batches",
		zap.Int("requested", len(items)),
		zap.Int("attached", len(results)))

	return results, nil
}

func (s *productService) AggregateProduct(ctx context.Context, taskID int64, eknCode string) (*models.AggregateResponse, error) {
	product, err := s.products.AggregateProduct(ctx, taskID, eknCode)
	if err != nil {
		metrics.RecordProductAggregation(aggregationResult(err))
		s.logger.Warn("product aggregation rejected",
			zap.Int64("task_id", taskID),
			zap.String("ekn_code", eknCode),
			zap.Error(err))
		return nil, err
	}

	metrics.RecordProductAggregation("success")
	s.logger.Info("product aggregated",
		zap.Int64("task_id", taskID),
		zap.String("ekn_code", eknCode))

	response := &models.AggregateResponse{EKNCode: eknCode}
	if product.EKNCode != nil {
		response.EKNCode = *product.EKNCode
	}

	return response, nil
}

func (s *productService) GetBatchNumbersByEKN(ctx context.Context, eknCode string) ([]int64, error) {
	if eknCode == "" {
		return nil, NewValidationError("ekn_code", "must not be empty")
	}
	return s.products.GetBatchNumbersByEKN(ctx, eknCode)
}

func aggregationResult(err error) string {
	var notFound *storage.ProductNotFoundError
	var wrongBatch *storage.ProductWrongBatchError
	var alreadyAggregated *storage.ProductAlreadyAggregatedError
	switch {
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &wrongBatch):
		return "wrong_batch"
	case errors.As(err, &alreadyAggregated):
		return "already_aggregated"
	default:
		return "error"
	}
}
