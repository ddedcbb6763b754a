// Package bloom provides a probabilistic known-key filter for cache reads.
package bloom

import (
	"context"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/pagesnap"
)

// Ensure KeyFilter implements pagesnap.ArticleCache at compile time.
var _ pagesnap.ArticleCache = (*KeyFilter)(nil)

// KeyFilter wraps an ArticleCache with a Bloom filter of known keys so
// definite misses skip the underlying store. False positives fall through
// to the store; false negatives cannot occur for keys seeded at startup or
// written through this filter.
//
// The filter only learns keys written by this process, so it assumes a
// single writer per cache directory. Entries written concurrently by
// another process are invisible until restart. Within the process it is
// safe for concurrent use by multiple goroutines.
type KeyFilter struct {
	next pagesnap.ArticleCache

	mu sync.RWMutex // guards f; bloom.BloomFilter is not safe for concurrent use
	f  *bloom.BloomFilter
}

// NewKeyFilter creates a KeyFilter around next, sized for n expected keys
// at the given false positive rate, pre-seeded with the keys already in
// the store.
func NewKeyFilter(next pagesnap.ArticleCache, seed []string, n uint, fpRate float64) *KeyFilter {
	f := bloom.NewWithEstimates(n, fpRate)
	for _, key := range seed {
		f.AddString(key)
	}
	return &KeyFilter{next: next, f: f}
}

// Get short-circuits keys the filter has never seen; otherwise delegates.
func (k *KeyFilter) Get(ctx context.Context, key string, ttl time.Duration) (*pagesnap.ArticleResult, bool) {
	k.mu.RLock()
	known := k.f.TestString(key)
	k.mu.RUnlock()
	if !known {
		return nil, false
	}
	return k.next.Get(ctx, key, ttl)
}

// Put delegates to the wrapped cache and records the key on success.
func (k *KeyFilter) Put(ctx context.Context, key string, result *pagesnap.ArticleResult) error {
	if err := k.next.Put(ctx, key, result); err != nil {
		return err
	}
	k.mu.Lock()
	k.f.AddString(key)
	k.mu.Unlock()
	return nil
}

// EstimatedCount returns the approximate number of known keys.
func (k *KeyFilter) EstimatedCount() uint {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return uint(k.f.ApproximatedSize())
}
