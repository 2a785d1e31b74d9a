package iocache

import (
	"context"
	"time"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetCacheStore implements the StoreManager interface.
func (m *MockStoreManager) GetCacheStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetReportStore implements the StoreManager interface.
func (m *MockStoreManager) GetReportStore() contract.ReportStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.ReportStore)
	return store
}

// GetRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockReportStore is a mock implementation of ReportStore for testing.
type MockReportStore struct {
	mock.Mock
}

var _ contract.ReportStore = &MockReportStore{} // Compile-time check

// Execute implements the ReportExecutor interface.
func (m *MockReportStore) Execute(ctx context.Context, method string, params map[string]any) (*schema.Table, error) {
	args := m.Called(ctx, method, params)
	table, _ := args.Get(0).(*schema.Table)
	return table, args.Error(1)
}

// GetMapping implements the MetricRegistry interface.
func (m *MockReportStore) GetMapping(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	mapping, _ := args.Get(0).(map[string]string)
	return mapping, args.Error(1)
}

// SaveReport implements the ReportStore interface.
func (m *MockReportStore) SaveReport(ctx context.Context, key schema.ReportKey, table *schema.Table) error {
	args := m.Called(ctx, key, table)
	return args.Error(0)
}

// ListReports implements the ReportStore interface.
func (m *MockReportStore) ListReports(ctx context.Context, siteID int) ([]schema.ReportSummary, error) {
	args := m.Called(ctx, siteID)
	reports, _ := args.Get(0).([]schema.ReportSummary)
	return reports, args.Error(1)
}

// SaveMetricNames implements the ReportStore interface.
func (m *MockReportStore) SaveMetricNames(ctx context.Context, names map[string]string) error {
	args := m.Called(ctx, names)
	return args.Error(0)
}

// GetStatus implements the ReportStore interface.
func (m *MockReportStore) GetStatus() (schema.ArchiveStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.ArchiveStatus), args.Error(1)
}

// Close implements the ReportStore interface.
func (m *MockReportStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(startTime time.Time, runUUID string, req schema.CompareRequest) (int64, error) {
	args := m.Called(startTime, runUUID, req)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, variantCount, rowsCompared int, runErr error) error {
	args := m.Called(runID, endTime, variantCount, rowsCompared, runErr)
	return args.Error(0)
}

// GetAllRuns implements the RunStore interface.
func (m *MockRunStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.RunStoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.RunStoreStatus), args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
