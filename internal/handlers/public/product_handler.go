package public

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/promline/shift-task-service/internal/auth"
	"github.com/promline/shift-task-service/internal/models"
	"github.com/promline/shift-task-service/internal/service"
)

// ProductHandler обрабатывает запросы к эндпоинтам продукции
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
	validator      *validator.Validate
}

// NewProductHandler создает новый экземпляр ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
		validator:      validator.New(),
	}
}

// AttachToBatches обрабатывает POST /task/products
func (h *ProductHandler) AttachToBatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Получаем вызывающую систему из контекста аутентификации
	systemID, err := auth.GetSystemID(ctx)
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, models.ErrorCodeMissingCaller, "Caller identity not found in context")
		return
	}

	var request []models.ProductBatchAttach
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid request body")
		return
	}

	results, err := h.productService.AddProductsToBatches(ctx, request)
	if err != nil {
		status, code, message := serviceErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to add products to batches", zap.Error(err),
				zap.Int("count", len(request)), zap.String("systemID", systemID))
		}
		h.writeError(w, status, code, message)
		return
	}

	h.writeJSON(w, http.StatusOK, results)
}

// Aggregate обрабатывает POST /task/aggregate
func (h *ProductHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Получаем вызывающую систему из контекста аутентификации
	systemID, err := auth.GetSystemID(ctx)
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, models.ErrorCodeMissingCaller, "Caller identity not found in context")
		return
	}

	var request models.AggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeValidation, err.Error())
		return
	}

	response, err := h.productService.AggregateProduct(ctx, request.TaskID, request.EKNCode)
	if err != nil {
		status, code, message := serviceErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to aggregate product", zap.Error(err),
				zap.Int64("taskID", request.TaskID), zap.String("eknCode", request.EKNCode),
				zap.String("systemID", systemID))
		}
		h.writeError(w, status, code, message)
		return
	}

	h.writeJSON(w, http.StatusOK, response)
}

// BatchNumbers обрабатывает GET /task/products/{eknCode}
func (h *ProductHandler) BatchNumbers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eknCode := chi.URLParam(r, "eknCode")

	numbers, err := h.productService.GetBatchNumbersByEKN(ctx, eknCode)
	if err != nil {
		status, code, message := serviceErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to get batch numbers", zap.Error(err), zap.String("eknCode", eknCode))
		}
		h.writeError(w, status, code, message)
		return
	}

	response := models.BatchNumbersResponse{
		EKNCode:      eknCode,
		BatchNumbers: numbers,
	}

	h.writeJSON(w, http.StatusOK, response)
}

// writeJSON отправляет JSON ответ
func (h *ProductHandler) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError отправляет ошибку в JSON формате
func (h *ProductHandler) writeError(w http.ResponseWriter, statusCode int, errorCode string, message string) {
	response := models.ErrorResponse{
		Error:   errorCode,
		Message: message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
