package cache

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/wine-quality-expert/internal/monitoring"
	"github.com/gin-gonic/gin"
)

// ContextKeyHit is set on the gin context when a response was served from the cache
const ContextKeyHit = "cache_hit"

// CacheItem represents a cached item with expiration
type CacheItem struct {
	Data        []byte    `json:"data"`
	ContentType string    `json:"content_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IsExpired checks if the cache item has expired
func (c *CacheItem) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// Cache provides thread-safe caching with TTL
type Cache struct {
	mu       sync.RWMutex
	items    map[string]*CacheItem
	ttl      time.Duration
	maxItems int
	onHit    func(ctx *gin.Context, request []byte, item *CacheItem)

	stop     chan struct{}
	stopOnce sync.Once
}

// NewCache creates a cache with the given TTL holding at most maxItems entries.
// A janitor goroutine runs until Close.
func NewCache(ttl time.Duration, maxItems int) *Cache {
	cache := &Cache{
		items:    make(map[string]*CacheItem),
		ttl:      ttl,
		maxItems: maxItems,
		stop:     make(chan struct{}),
	}

	go cache.cleanup(janitorInterval(ttl))

	return cache
}

func janitorInterval(ttl time.Duration) time.Duration {
	if ttl < 5*time.Minute {
		return ttl
	}
	return 5 * time.Minute
}

func (c *Cache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) removeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, item := range c.items {
		if item.IsExpired() {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Close stops the janitor goroutine
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Key hashes a request body into a cache key
func Key(body []byte) string {
	hash := md5.Sum(body)
	return fmt.Sprintf("%x", hash)
}

// Get retrieves an item from the cache
func (c *Cache) Get(key string) (*CacheItem, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if item.IsExpired() {
		c.Delete(key)
		return nil, false
	}

	return item, true
}

// Set stores an item in the cache
func (c *Cache) Set(key, contentType string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.maxItems > 0 && len(c.items) >= c.maxItems {
		c.evictLocked()
	}

	c.items[key] = &CacheItem{
		Data:        data,
		ContentType: contentType,
		ExpiresAt:   time.Now().Add(c.ttl),
	}
}

// evictLocked drops expired entries, or the entry closest to expiry if none are
func (c *Cache) evictLocked() {
	var oldestKey string
	var oldest time.Time

	for key, item := range c.items {
		if item.IsExpired() {
			delete(c.items, key)
			continue
		}
		if oldestKey == "" || item.ExpiresAt.Before(oldest) {
			oldestKey, oldest = key, item.ExpiresAt
		}
	}

	if len(c.items) >= c.maxItems && oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

// Delete removes an item from the cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*CacheItem)
}

// Size returns the number of items in the cache
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Stats returns cache statistics
func (c *Cache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	totalItems := len(c.items)
	expiredItems := 0

	for _, item := range c.items {
		if item.IsExpired() {
			expiredItems++
		}
	}

	return map[string]interface{}{
		"total_items":   totalItems,
		"expired_items": expiredItems,
		"active_items":  totalItems - expiredItems,
		"max_items":     c.maxItems,
		"ttl_seconds":   c.ttl.Seconds(),
	}
}

// OnHit registers fn to run for every response served from the cache, with the request
// body that produced the hit. Call before serving.
func (c *Cache) OnHit(fn func(ctx *gin.Context, request []byte, item *CacheItem)) {
	c.onHit = fn
}

// Middleware caches successful POST responses for path, keyed by the request body.
// Only deterministic handlers may sit behind it.
func (c *Cache) Middleware(path string, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodPost || ctx.Request.URL.Path != path {
			ctx.Next()
			return
		}

		body, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			ctx.Next()
			return
		}

		ctx.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		cacheKey := Key(body)

		if cached, found := c.Get(cacheKey); found {
			slog.Debug("Cache hit", "key", cacheKey[:8]+"...")
			metrics.IncrementCacheHit()
			ctx.Set(ContextKeyHit, true)
			if c.onHit != nil {
				c.onHit(ctx, body, cached)
			}
			ctx.Header("X-Cache", "HIT")
			ctx.Data(http.StatusOK, cached.ContentType, cached.Data)
			ctx.Abort()
			return
		}

		metrics.IncrementCacheMiss()
		ctx.Header("X-Cache", "MISS")

		wrapper := &responseWriter{ResponseWriter: ctx.Writer, body: &bytes.Buffer{}}

		ctx.Writer = wrapper
		ctx.Next()

		// errors are rendered later by the error middleware, so an unwritten 200 is not a result
		if ctx.Writer.Status() == http.StatusOK && len(ctx.Errors) == 0 && wrapper.body.Len() > 0 {
			c.Set(cacheKey, wrapper.Header().Get("Content-Type"), wrapper.body.Bytes())
			slog.Debug("Response cached", "key", cacheKey[:8]+"...")
		}
	}
}

// responseWriter wraps gin.ResponseWriter to capture response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
