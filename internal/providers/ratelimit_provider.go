package providers

import (
	"buildwatch/internal/structures"
	"encoding/binary"
	"sync"

	"github.com/coocood/freecache"
)

// RateLimiterInterface counts attempts per key inside a fixed window.
type RateLimiterInterface interface {
	// Allow records an attempt for key and reports whether it is within the limit.
	Allow(key string) bool
	Reset(key string)
}

const rateLimitCacheSize = 1024 * 1024

type RateLimiter struct {
	mu       sync.Mutex
	counters *freecache.Cache
	limit    uint32
	window   int
}

func NewRateLimiter(conf *structures.Config) RateLimiterInterface {
	if conf.RateLimit.LoginAttempts <= 0 {
		return &noopRateLimiter{}
	}
	return &RateLimiter{
		counters: freecache.NewCache(rateLimitCacheSize),
		limit:    uint32(conf.RateLimit.LoginAttempts),
		window:   max(int(conf.RateLimit.Window.Seconds()), 1),
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	k := []byte(key)
	ttl := rl.window
	var count uint32
	if val, err := rl.counters.Get(k); err == nil && len(val) == 4 {
		count = binary.BigEndian.Uint32(val)
		// keep the window anchored at the first attempt
		if left, err := rl.counters.TTL(k); err == nil && left > 0 {
			ttl = int(left)
		}
	}
	if count >= rl.limit {
		return false
	}

	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, count+1)
	_ = rl.counters.Set(k, buf, ttl)
	return true
}

func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.counters.Del([]byte(key))
}

type noopRateLimiter struct{}

func (n *noopRateLimiter) Allow(_ string) bool { return true }
func (n *noopRateLimiter) Reset(_ string)      {}
