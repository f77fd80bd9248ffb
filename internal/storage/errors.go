package storage

import (
	"errors"
	"fmt"
	"time"
)

// TaskNotFoundError возникает при обращении к несуществующему заданию
type TaskNotFoundError struct {
	TaskID int64
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task %d not found", e.TaskID)
}

// ProductNotFoundError возникает при обращении к несуществующей продукции
type ProductNotFoundError struct {
	EKNCode string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with ekn code %q not found", e.EKNCode)
}

// ProductWrongBatchError возникает при попытке агрегировать продукцию
// в партию, к которой она не привязана
type ProductWrongBatchError struct {
	EKNCode        string
	CurrentTaskID  *int64
	ExpectedTaskID int64
}

func (e *ProductWrongBatchError) Error() string {
	if e.CurrentTaskID == nil {
		return fmt.Sprintf("product %q is not attached to any batch, expected task %d", e.EKNCode, e.ExpectedTaskID)
	}
	return fmt.Sprintf("product %q belongs to task %d, expected task %d", e.EKNCode, *e.CurrentTaskID, e.ExpectedTaskID)
}

// ProductAlreadyAggregatedError возникает при повторной агрегации продукции
type ProductAlreadyAggregatedError struct {
	EKNCode      string
	AggregatedAt time.Time
}

func (e *ProductAlreadyAggregatedError) Error() string {
	return fmt.Sprintf("product %q was already aggregated at %s", e.EKNCode, e.AggregatedAt.Format(time.RFC3339))
}

// RepositoryError оборачивает низкоуровневые ошибки хранилища
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository operation %q failed: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// wrapOp оборачивает ошибку в RepositoryError, пропуская доменные ошибки
// без изменений, чтобы вызывающий код мог их различать через errors.As
func wrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return err
	}
	var repoErr *RepositoryError
	if errors.As(err, &repoErr) {
		return err
	}
	return &RepositoryError{Op: op, Err: err}
}

func isDomainError(err error) bool {
	var taskNotFound *TaskNotFoundError
	var productNotFound *ProductNotFoundError
	var wrongBatch *ProductWrongBatchError
	var alreadyAggregated *ProductAlreadyAggregatedError
	return errors.As(err, &taskNotFound) ||
		errors.As(err, &productNotFound) ||
		errors.As(err, &wrongBatch) ||
		errors.As(err, &alreadyAggregated)
}
