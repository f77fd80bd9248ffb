package storage

import (
	"context"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockDatabaseInterface - мок для DatabaseInterface
type MockDatabaseInterface struct {
	mock.Mock
}

func (m *MockDatabaseInterface) QueryRow(ctx context.Context, query string, args ...interface{}) Row {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Get(0).(Row)
}

func (m *MockDatabaseInterface) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Get(0).(Rows), mockArgs.Error(1)
}

func (m *MockDatabaseInterface) Exec(ctx context.Context, query string, args ...interface{}) error {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Error(0)
}

func (m *MockDatabaseInterface) BeginTx(ctx context.Context) (Tx, error) {
	mockArgs := m.Called(ctx)
	return mockArgs.Get(0).(Tx), mockArgs.Error(1)
}

func (m *MockDatabaseInterface) Health(ctx context.Context) error {
	mockArgs := m.Called(ctx)
	return mockArgs.Error(0)
}

// MockTx - мок для транзакции
type MockTx struct {
	mock.Mock
}

func (m *MockTx) QueryRow(ctx context.Context, query string, args ...interface{}) Row {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Get(0).(Row)
}

func (m *MockTx) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Get(0).(Rows), mockArgs.Error(1)
}

func (m *MockTx) Exec(ctx context.Context, query string, args ...interface{}) error {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Error(0)
}

func (m *MockTx) Commit() error {
	mockArgs := m.Called()
	return mockArgs.Error(0)
}

func (m *MockTx) Rollback() error {
	mockArgs := m.Called()
	return mockArgs.Error(0)
}

// MockCacheInterface - мок для CacheInterface
type MockCacheInterface struct {
	mock.Mock
}

func (m *MockCacheInterface) Get(ctx context.Context, key string) (string, error) {
	mockArgs := m.Called(ctx, key)
	return mockArgs.String(0), mockArgs.Error(1)
}

func (m *MockCacheInterface) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	mockArgs := m.Called(ctx, key, value, ttl)
	return mockArgs.Error(0)
}

func (m *MockCacheInterface) Del(ctx context.Context, key string) error {
	mockArgs := m.Called(ctx, key)
	return mockArgs.Error(0)
}

func (m *MockCacheInterface) Health(ctx context.Context) error {
	mockArgs := m.Called(ctx)
	return mockArgs.Error(0)
}

// MockMetricsInterface - мок для MetricsInterface
type MockMetricsInterface struct {
	mock.Mock
}

func (m *MockMetricsInterface) IncDBQuery(operation string) {
	m.Called(operation)
}

func (m *MockMetricsInterface) IncCacheHit(cacheType string) {
	m.Called(cacheType)
}

func (m *MockMetricsInterface) IncCacheMiss(cacheType string) {
	m.Called(cacheType)
}

func (m *MockMetricsInterface) ObserveDBQueryDuration(operation string, duration time.Duration) {
	m.Called(operation, duration)
}

// MockRow - мок для Row с заранее заданными значениями колонок
type MockRow struct {
	data []interface{}
	err  error
}

func (m *MockRow) Scan(dest ...interface{}) error {
	if m.err != nil {
		return m.err
	}
	for i, d := range dest {
		if i < len(m.data) {
			assignScanValue(d, m.data[i])
		}
	}
	return nil
}

// MockRows - мок для Rows
type MockRows struct {
	data [][]interface{}
	err  error
	pos  int
}

func (m *MockRows) Next() bool {
	m.pos++
	return m.pos <= len(m.data)
}

func (m *MockRows) Scan(dest ...interface{}) error {
	if m.pos <= 0 || m.pos > len(m.data) {
		return nil
	}
	row := m.data[m.pos-1]
	for i, d := range dest {
		if i < len(row) {
			assignScanValue(d, row[i])
		}
	}
	return nil
}

func (m *MockRows) Err() error {
	return m.err
}

func (m *MockRows) Close() {}

func assignScanValue(dest interface{}, value interface{}) {
	switch d := dest.(type) {
	case *int64:
		if value != nil {
			*d = value.(int64)
		}
	case **int64:
		if value != nil {
			v := value.(int64)
			*d = &v
		} else {
			*d = nil
		}
	case *int:
		if value != nil {
			*d = value.(int)
		}
	case *string:
		if value != nil {
			*d = value.(string)
		}
	case **string:
		if value != nil {
			v := value.(string)
			*d = &v
		} else {
			*d = nil
		}
	case *bool:
		if value != nil {
			*d = value.(bool)
		}
	case *time.Time:
		if value != nil {
			*d = value.(time.Time)
		}
	case **time.Time:
		if value != nil {
			v := value.(time.Time)
			*d = &v
		} else {
			*d = nil
		}
	}
}

// queryContaining сопоставляет SQL запрос по подстроке
func queryContaining(substr string) interface{} {
	return mock.MatchedBy(func(query string) bool {
		return strings.Contains(query, substr)
	})
}
