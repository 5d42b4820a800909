package mcpserver

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/patchkit/bytecode"
)

// cacheEntry is one cached program. It is the Value of its list element.
type cacheEntry struct {
	key       string
	program   *bytecode.Program
	expiresAt time.Time
}

func (e *cacheEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// listingCacheStore is a session-scoped LRU cache of parsed listings with
// per-entry expiry. File inputs are keyed by (absolutePath, modTime), content
// inputs by a SHA-256 hash, and URL inputs by the URL string.
//
// Cached programs are shared between requests, so tools must only read them.
type listingCacheStore struct {
	mu      sync.Mutex
	order   *list.List // front is most recently used
	entries map[string]*list.Element
	maxSize int

	sweeperStarted atomic.Bool
}

var listingCache = newListingCache(cfg.CacheMaxSize)

func newListingCache(maxSize int) *listingCacheStore {
	return &listingCacheStore{
		order:   list.New(),
		entries: make(map[string]*list.Element),
		maxSize: maxSize,
	}
}

// get returns a cached program or nil. Expired entries are removed on access.
func (c *listingCacheStore) get(key string) *bytecode.Program {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil
	}
	e := el.Value.(*cacheEntry)
	if e.expired(time.Now()) {
		c.removeLocked(el)
		return nil
	}
	c.order.MoveToFront(el)
	return e.program
}

// putWithTTL stores a program, evicting the least recently used entry when full.
func (c *listingCacheStore) putWithTTL(key string, program *bytecode.Program, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &cacheEntry{key: key, program: program, expiresAt: time.Now().Add(ttl)}
	if el, ok := c.entries[key]; ok {
		el.Value = e
		c.order.MoveToFront(el)
		return
	}
	for c.order.Len() >= c.maxSize && c.order.Len() > 0 {
		c.removeLocked(c.order.Back())
	}
	c.entries[key] = c.order.PushFront(e)
}

func (c *listingCacheStore) removeLocked(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*cacheEntry).key)
}

// sweep removes all expired entries.
func (c *listingCacheStore) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*cacheEntry).expired(now) {
			c.removeLocked(el)
		}
		el = next
	}
}

// startSweeper runs sweep every interval until ctx is cancelled. Only the
// first of concurrent calls starts a goroutine.
func (c *listingCacheStore) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 || !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

// reset clears all cached entries. Used in tests.
func (c *listingCacheStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element)
}

// size returns the number of cached entries.
func (c *listingCacheStore) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
