package push

import (
	"sync"
	"time"
)

// refreshMargin is subtracted from a token's lifetime so a token is never
// handed out moments before the provider would reject it.
const refreshMargin = time.Minute

type cachedToken struct {
	value     string
	expiresAt time.Time
}

// tokenCache caches short-lived signed tokens keyed by an arbitrary scope
// (a single key for APNs, the endpoint origin for VAPID). Safe for
// concurrent use; the mint function runs under the cache lock so concurrent
// first calls mint exactly once.
type tokenCache struct {
	mu     sync.Mutex
	tokens map[string]cachedToken
	now    func() time.Time
}

func newTokenCache() *tokenCache {
	return &tokenCache{
		tokens: make(map[string]cachedToken),
		now:    time.Now,
	}
}

// get returns the cached token for key, minting a fresh one via mint when
// the cache is cold or the token is within the refresh margin of expiry.
func (c *tokenCache) get(key string, ttl time.Duration, mint func() (string, error)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tok, ok := c.tokens[key]; ok && c.now().Before(tok.expiresAt.Add(-refreshMargin)) {
		return tok.value, nil
	}

	value, err := mint()
	if err != nil {
		return "", err
	}
	c.tokens[key] = cachedToken{value: value, expiresAt: c.now().Add(ttl)}
	return value, nil
}

// reset drops all cached tokens. Intended for tests.
func (c *tokenCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = make(map[string]cachedToken)
}
