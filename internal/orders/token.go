package orders

import (
	"sync"
	"time"
)

// tokenCache holds the upstream access token, refreshed lazily when within
// the expiry margin. Refresh is deliberately not single-flight: duplicate
// fetches overwrite the cache idempotently, which keeps the read path free
// of long-held locks.
type tokenCache struct {
	margin time.Duration
	now    func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func newTokenCache(margin time.Duration) *tokenCache {
	return &tokenCache{margin: margin, now: time.Now}
}

// get returns the cached token, or calls fetch for a fresh one when the
// cache is empty or expires within the margin.
func (c *tokenCache) get(fetch func() (token string, expiry time.Time, err error)) (string, error) {
	c.mu.Lock()
	token, expiry := c.token, c.expiry
	c.mu.Unlock()

	if token != "" && c.now().Before(expiry.Add(-c.margin)) {
		return token, nil
	}

	token, expiry, err := fetch()
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.token = token
	c.expiry = expiry
	c.mu.Unlock()
	return token, nil
}
