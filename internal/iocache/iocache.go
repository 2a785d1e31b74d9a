// Package iocache persists report archives, comparison runs and cached lookups.
package iocache

import (
	"sync"

	"github.com/huangsam/datacompare/internal/contract"
)

// StoreManagerImpl holds the stores opened for the process.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointers during initialization
	cache        contract.CacheStore
	reports      contract.ReportStore
	runs         contract.RunStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// NewStoreManager returns a manager over already opened stores. Any of them may be nil.
func NewStoreManager(cache contract.CacheStore, reports contract.ReportStore, runs contract.RunStore) *StoreManagerImpl {
	return &StoreManagerImpl{cache: cache, reports: reports, runs: runs}
}

// GetCacheStore returns the key/value CacheStore.
func (mgr *StoreManagerImpl) GetCacheStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.cache
}

// GetReportStore returns the report archive.
func (mgr *StoreManagerImpl) GetReportStore() contract.ReportStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.reports
}

// GetRunStore returns the run tracking store.
func (mgr *StoreManagerImpl) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
