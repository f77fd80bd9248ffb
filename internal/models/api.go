package models

import (
	"time"
)

// NameRef ссылается на бригаду или рабочий центр по названию
type NameRef struct {
	Name string `json:"name" validate:"required,max=100"`
}

// ProductCreate представляет продукцию внутри запроса создания/обновления задания
type ProductCreate struct {
	Nomenclature string `json:"nomenclature" validate:"required"`
	EKNCode      string `json:"ekn_code" validate:"required"`
	IsAggregated bool   `json:"is_aggregated"`
}

// TaskCreate представляет запрос POST /task/ и элементы POST /tasks/
type TaskCreate struct {
	StatusClose     bool            `json:"status_close"`
	TaskDescription *string         `json:"task_description,omitempty"`
	Shift           *string         `json:"shift,omitempty"`
	ShiftStart      time.Time       `json:"shift_start" validate:"required"`
	ShiftEnd        time.Time       `json:"shift_end" validate:"required"`
	BatchNumber     int64           `json:"batch_number" validate:"required"`
	BatchDate       time.Time       `json:"batch_date" validate:"required"`
	Products        []ProductCreate `json:"products,omitempty"`
	Brigade         NameRef         `json:"brigade" validate:"required"`
	WorkCenter      NameRef         `json:"work_center" validate:"required"`
}

// TaskUpdate представляет запрос PUT /task/{id}. Nil-поля не изменяются.
type TaskUpdate struct {
	StatusClose     *bool      `json:"status_close,omitempty"`
	TaskDescription *string    `json:"task_description,omitempty"`
	Shift           *string    `json:"shift,omitempty"`
	ShiftStart      *time.Time `json:"shift_start,omitempty"`
	ShiftEnd        *time.Time `json:"shift_end,omitempty"`
	BatchNumber     *int64     `json:"batch_number,omitempty"`
	BatchDate       *time.Time `json:"batch_date,omitempty"`

	// Полная замена списка продукции: nil не трогает, пустой список очищает
	Products *[]ProductCreate `json:"products,omitempty"`

	Brigade    *NameRef `json:"brigade,omitempty"`
	WorkCenter *NameRef `json:"work_center,omitempty"`

	// ClosedDate выставляется сервисом при смене status_close, а не клиентом
	ClosedDate    *time.Time `json:"-"`
	SetClosedDate bool       `json:"-"`
}

// TaskFilters содержит необязательные предикаты выборки GET /task/
type TaskFilters struct {
	StatusClose    *bool
	BatchNumber    *int64
	BatchDate      *time.Time
	WorkCenterID   *int64
	BrigadeID      *int64
	ShiftStartFrom *time.Time
	ShiftStartTo   *time.Time
	Offset         int
	Limit          int
}

// ProductBatchAttach представляет элемент запроса POST /task/products.
// BatchDate приходит строкой и разбирается поэлементно.
type ProductBatchAttach struct {
	EKNCode     string `json:"ekn_code"`
	BatchNumber int64  `json:"batch_number"`
	BatchDate   string `json:"batch_date"`
}

// ProductBatchResult описывает продукцию, привязанную к партии
type ProductBatchResult struct {
	EKNCode string `json:"ekn_code"`
	TaskID  int64  `json:"task_id"`
}

// AggregateRequest представляет запрос POST /task/aggregate
type AggregateRequest struct {
	TaskID  int64  `json:"task_id" validate:"required"`
	EKNCode string `json:"ekn_code" validate:"required"`
}

// AggregateResponse представляет успешный ответ агрегации
type AggregateResponse struct {
	EKNCode string `json:"ekn_code"`
}

// BatchNumbersResponse представляет ответ GET /task/products/{eknCode}
type BatchNumbersResponse struct {
	EKNCode      string  `json:"ekn_code"`
	BatchNumbers []int64 `json:"batch_numbers"`
}

// ErrorResponse представляет ошибку API
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Коды ошибок API
const (
	ErrorCodeBadRequest    = "BAD_REQUEST"
	ErrorCodeValidation    = "VALIDATION_ERROR"
	ErrorCodeNotFound      = "NOT_FOUND"
	ErrorCodeBusinessRule  = "BUSINESS_RULE_VIOLATION"
	ErrorCodeInternalError = "INTERNAL_ERROR"
	ErrorCodeMissingCaller = "MISSING_CALLER"
)
