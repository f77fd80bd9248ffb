package adapters

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/promline/shift-task-service/internal/database"
	"github.com/promline/shift-task-service/internal/storage"
)

// DatabaseAdapter адаптирует database.DB для storage.DatabaseInterface
type DatabaseAdapter struct {
	db *database.DB
}

// NewDatabaseAdapter создает новый адаптер для базы данных
func NewDatabaseAdapter(db *database.DB) storage.DatabaseInterface {
	return &DatabaseAdapter{db: db}
}

func (a *DatabaseAdapter) QueryRow(ctx context.Context, query string, args ...interface{}) storage.Row {
	return &RowAdapter{row: a.db.Pool().QueryRow(ctx, query, args...)}
}

func (a *DatabaseAdapter) Query(ctx context.Context, query string, args ...interface{}) (storage.Rows, error) {
	rows, err := a.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &RowsAdapter{rows: rows}, nil
}

func (a *DatabaseAdapter) Exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := a.db.Pool().Exec(ctx, query, args...)
	return err
}

func (a *DatabaseAdapter) BeginTx(ctx context.Context) (storage.Tx, error) {
	tx, err := a.db.Pool().Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &TxAdapter{tx: tx, ctx: ctx}, nil
}

// Health проверяет состояние базы данных
func (a *DatabaseAdapter) Health(ctx context.Context) error {
	return a.db.Health(ctx)
}

// RowAdapter адаптирует pgx.Row для storage.Row
type RowAdapter struct {
	row pgx.Row
}

func (a *RowAdapter) Scan(dest ...interface{}) error {
	return a.row.Scan(dest...)
}

// RowsAdapter адаптирует pgx.Rows для storage.Rows
type RowsAdapter struct {
	rows pgx.Rows
}

func (a *RowsAdapter) Next() bool {
	return a.rows.Next()
}

func (a *RowsAdapter) Scan(dest ...interface{}) error {
	return a.rows.Scan(dest...)
}

func (a *RowsAdapter) Err() error {
	return a.rows.Err()
}

func (a *RowsAdapter) Close() {
	a.rows.Close()
}

// TxAdapter адаптирует pgx.Tx для storage.Tx
type TxAdapter struct {
	tx  pgx.Tx
	ctx context.Context
}

func (a *TxAdapter) QueryRow(ctx context.Context, query string, args ...interface{}) storage.Row {
	return &RowAdapter{row: a.tx.QueryRow(ctx, query, args...)}
}

func (a *TxAdapter) Query(ctx context.Context, query string, args ...interface{}) (storage.Rows, error) {
	rows, err := a.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &RowsAdapter{rows: rows}, nil
}

func (a *TxAdapter) Exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := a.tx.Exec(ctx, query, args...)
	return err
}

func (a *TxAdapter) Commit() error {
	return a.tx.Commit(a.ctx)
}

func (a *TxAdapter) Rollback() error {
	return a.tx.Rollback(a.ctx)
}
