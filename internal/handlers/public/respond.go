package public

import (
	"errors"
	"net/http"

	"github.com/promline/shift-task-service/internal/models"
	"github.com/promline/shift-task-service/internal/service"
	"github.com/promline/shift-task-service/internal/storage"
)

// serviceErrorStatus переводит доменные ошибки в HTTP статус, код и сообщение.
// Внутренние ошибки наружу не раскрываются.
func serviceErrorStatus(err error) (int, string, string) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, models.ErrorCodeValidation, validationErr.Error()
	}

	var taskNotFound *storage.TaskNotFoundError
	if errors.As(err, &taskNotFound) {
		return http.StatusNotFound, models.ErrorCodeNotFound, taskNotFound.Error()
	}

	var productNotFound *storage.ProductNotFoundError
	if errors.As(err, &productNotFound) {
		return http.StatusNotFound, models.ErrorCodeNotFound, productNotFound.Error()
	}

	var wrongBatch *storage.ProductWrongBatchError
	if errors.As(err, &wrongBatch) {
		return http.StatusBadRequest, models.ErrorCodeBusinessRule, wrongBatch.Error()
	}

	var alreadyAggregated *storage.ProductAlreadyAggregatedError
	if errors.As(err, &alreadyAggregated) {
		return http.StatusBadRequest, models.ErrorCodeBusinessRule, alreadyAggregated.Error()
	}

	return http.StatusInternalServerError, models.ErrorCodeInternalError, "Internal server error"
}
