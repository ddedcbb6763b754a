package pagesnap

import (
	"context"
	"time"
)

// ArticleCache persists article results keyed by derived cache keys.
//
// Cache failures never abort a request: implementations recover read
// problems (missing, corrupt, or legacy-format entries) by reporting a
// miss, and callers treat write errors as best-effort failures.
type ArticleCache interface {
	// Get returns the entry stored at key if it exists, parses, and is no
	// older than ttl. The TTL is evaluated at read time, not baked into
	// the entry. The second return value reports a usable hit.
	Get(ctx context.Context, key string, ttl time.Duration) (*ArticleResult, bool)

	// Put stores result at key, overwriting any existing entry
	// (last-write-wins). The returned error is advisory; the request that
	// produced result must still succeed when persistence fails.
	Put(ctx context.Context, key string, result *ArticleResult) error
}
