package public

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/promline/shift-task-service/internal/auth"
	"github.com/promline/shift-task-service/internal/models"
	"github.com/promline/shift-task-service/internal/service"
)

// TaskHandler обрабатывает запросы к эндпоинтам сменных заданий
type TaskHandler struct {
	taskService service.TaskService
	logger      *zap.Logger
	validator   *validator.Validate
}

// NewTaskHandler создает новый экземпляр TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
		validator:   validator.New(),
	}
}

// CreateTask обрабатывает POST /task/
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Получаем вызывающую систему из контекста аутентификации
	systemID, err := auth.GetSystemID(ctx)
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, models.ErrorCodeMissingCaller, "Caller identity not found in context")
		return
	}

	var request models.TaskCreate
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid request body")
		return
	}

	if err := h.validateTaskCreate(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeValidation, err.Error())
		return
	}

	task, err := h.taskService.Create(ctx, &request)
	if err != nil {
		h.logger.Error("Failed to create task", zap.Error(err),
			zap.Int64("batchNumber", request.BatchNumber), zap.String("systemID", systemID))
		status, code, message := serviceErrorStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	h.writeJSON(w, http.StatusCreated, task)
}

// CreateTasks обрабатывает POST /tasks/
func (h *TaskHandler) CreateTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Получаем вызывающую систему из контекста аутентификации
	systemID, err := auth.GetSystemID(ctx)
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, models.ErrorCodeMissingCaller, "Caller identity not found in context")
		return
	}

	var request []models.TaskCreate
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid request body")
		return
	}

	for i := range request {
		if err := h.validateTaskCreate(&request[i]); err != nil {
			h.writeError(w, http.StatusBadRequest, models.ErrorCodeValidation, err.Error())
			return
		}
	}

	tasks, err := h.taskService.CreateBatch(ctx, request)
	if err != nil {
		h.logger.Error("Failed to create task batch", zap.Error(err),
			zap.Int("count", len(request)), zap.String("systemID", systemID))
		status, code, message := serviceErrorStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	h.writeJSON(w, http.StatusCreated, tasks)
}

// GetTask обрабатывает GET /task/{taskID}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid task ID")
		return
	}

	task, err := h.taskService.Get(ctx, taskID)
	if err != nil {
		status, code, message := serviceErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to get task", zap.Error(err), zap.Int64("taskID", taskID))
		}
		h.writeError(w, status, code, message)
		return
	}

	h.writeJSON(w, http.StatusOK, task)
}

// UpdateTask обрабатывает PUT /task/{taskID}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Получаем вызывающую систему из контекста аутентификации
	systemID, err := auth.GetSystemID(ctx)
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, models.ErrorCodeMissingCaller, "Caller identity not found in context")
		return
	}

	taskID, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid task ID")
		return
	}

	var request models.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid request body")
		return
	}

	task, err := h.taskService.Update(ctx, taskID, &request)
	if err != nil {
		status, code, message := serviceErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to update task", zap.Error(err),
				zap.Int64("taskID", taskID), zap.String("systemID", systemID))
		}
		h.writeError(w, status, code, message)
		return
	}

	h.writeJSON(w, http.StatusOK, task)
}

// ListTasks обрабатывает GET /task/
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filters, err := parseTaskFilters(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, models.ErrorCodeValidation, err.Error())
		return
	}

	tasks, err := h.taskService.GetFiltered(ctx, filters)
	if err != nil {
		status, code, message := serviceErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to list tasks", zap.Error(err))
		}
		h.writeError(w, status, code, message)
		return
	}

	h.writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) validateTaskCreate(request *models.TaskCreate) error {
	if err := h.validator.Struct(request); err != nil {
		return err
	}
	for i := range request.Products {
		if err := h.validator.Struct(&request.Products[i]); err != nil {
			return err
		}
	}
	return nil
}

// parseTaskFilters разбирает query-параметры списка заданий
func parseTaskFilters(r *http.Request) (*models.TaskFilters, error) {
	filters := &models.TaskFilters{}
	query := r.URL.Query()

	if v := query.Get("skip"); v != "" {
		skip, err := strconv.Atoi(v)
		if err != nil {
			return nil, service.NewValidationError("skip", "must be an integer")
		}
		filters.Offset = skip
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return nil, service.NewValidationError("limit", "must be an integer")
		}
		filters.Limit = limit
	}
	if v := query.Get("status_close"); v != "" {
		statusClose, err := strconv.ParseBool(v)
		if err != nil {
			return nil, service.NewValidationError("status_close", "must be a boolean")
		}
		filters.StatusClose = &statusClose
	}
	if v := query.Get("batch_number"); v != "" {
		batchNumber, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, service.NewValidationError("batch_number", "must be an integer")
		}
		filters.BatchNumber = &batchNumber
	}
	if v := query.Get("batch_date"); v != "" {
		batchDate, err := parseTimeParam(v)
		if err != nil {
			return nil, service.NewValidationError("batch_date", "must be a valid date")
		}
		filters.BatchDate = &batchDate
	}
	if v := query.Get("work_center_id"); v != "" {
		workCenterID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, service.NewValidationError("work_center_id", "must be an integer")
		}
		filters.WorkCenterID = &workCenterID
	}
	if v := query.Get("brigade_id"); v != "" {
		brigadeID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, service.NewValidationError("brigade_id", "must be an integer")
		}
		filters.BrigadeID = &brigadeID
	}
	if v := query.Get("shift_start_from"); v != "" {
		from, err := parseTimeParam(v)
		if err != nil {
			return nil, service.NewValidationError("shift_start_from", "must be a valid timestamp")
		}
		filters.ShiftStartFrom = &from
	}
	if v := query.Get("shift_start_to"); v != "" {
		to, err := parseTimeParam(v)
		if err != nil {
			return nil, service.NewValidationError("shift_start_to", "must be a valid timestamp")
		}
		filters.ShiftStartTo = &to
	}

	return filters, nil
}

func parseTimeParam(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &service.ValidationError{Message: "unsupported time format"}
}

// writeJSON отправляет JSON ответ
func (h *TaskHandler) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError отправляет ошибку в JSON формате
func (h *TaskHandler) writeError(w http.ResponseWriter, statusCode int, errorCode string, message string) {
	response := models.ErrorResponse{
		Error:   errorCode,
		Message: message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
