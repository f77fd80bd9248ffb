package models

import (
	"time"
)

// WorkCenter представляет рабочий центр (производственную линию/участок)
type WorkCenter struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Brigade представляет рабочую бригаду
type Brigade struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Task представляет сменное задание, привязанное к одной производственной партии
type Task struct {
	ID              int64      `json:"id"`
	StatusClose     bool       `json:"status_close"`
	ClosedDate      *time.Time `json:"closed_date,omitempty"`
	TaskDescription *string    `json:"task_description,omitempty"`
	Shift           *string    `json:"shift,omitempty"`
	ShiftStart      time.Time  `json:"shift_start"`
	ShiftEnd        time.Time  `json:"shift_end"`
	BatchNumber     int64      `json:"batch_number"`
	BatchDate       time.Time  `json:"batch_date"`
	BrigadeID       int64      `json:"brigade_id"`
	WorkCenterID    int64      `json:"work_center_id"`

	Brigade    *Brigade    `json:"brigade,omitempty"`
	WorkCenter *WorkCenter `json:"work_center,omitempty"`
	Products   []Product   `json:"products"`
}

// Product представляет единицу продукции, идентифицируемую кодом ЕКН
type Product struct {
	ID           int64      `json:"id"`
	Nomenclature *string    `json:"nomenclature,omitempty"`
	EKNCode      *string    `json:"ekn_code,omitempty"`
	IsAggregated bool       `json:"is_aggregated"`
	AggregatedAt *time.Time `json:"aggregated_at,omitempty"`
	TaskID       *int64     `json:"task_id,omitempty"`
}
