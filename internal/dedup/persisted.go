package dedup

import (
	"sync"

	"github.com/Veraticus/rupee-flow/internal/service"
	"github.com/bits-and-blooms/bloom/v3"
)

// PersistedFilter is a bloom filter over fingerprints already in storage. A
// miss proves the transaction is new; a hit must be confirmed against
// storage.
type PersistedFilter struct {
	filter *bloom.BloomFilter
	mu     sync.RWMutex
}

// NewPersistedFilter creates a filter sized for expectedItems at the given
// false positive rate.
func NewPersistedFilter(expectedItems uint, falsePositiveRate float64) *PersistedFilter {
	if expectedItems == 0 {
		expectedItems = 10000
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = 0.01
	}
	return &PersistedFilter{filter: bloom.NewWithEstimates(expectedItems, falsePositiveRate)}
}

// NewPersistedFilterFrom creates a filter seeded with keys.
func NewPersistedFilterFrom(keys []service.FingerprintKey, falsePositiveRate float64) *PersistedFilter {
	f := NewPersistedFilter(max(uint(len(keys))*2, 1024), falsePositiveRate)
	for _, k := range keys {
		f.Add(k.UserID, k.Fingerprint)
	}
	return f
}

// Add records a persisted fingerprint.
func (f *PersistedFilter) Add(userID, fingerprint string) {
	if fingerprint == "" {
		return
	}
	f.mu.Lock()
	f.filter.Add(filterKey(userID, fingerprint))
	f.mu.Unlock()
}

// MayContain reports whether the fingerprint may already be persisted.
func (f *PersistedFilter) MayContain(userID, fingerprint string) bool {
	if fingerprint == "" {
		return false
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.Test(filterKey(userID, fingerprint))
}

// filterKey joins user and fingerprint with a separator neither contains.
func filterKey(userID, fingerprint string) []byte {
	key := make([]byte, 0, len(userID)+len(fingerprint)+1)
	key = append(key, userID...)
	key = append(key, 0)
	key = append(key, fingerprint...)
	return key
}
