package dataset

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileIdentity pins a cache entry to the exact bytes it was parsed from: a
// file is the same only if size, mtime, and content hash all match. Hashing
// the content keeps same-second rewrites from serving stale tables.
type fileIdentity struct {
	size  int64
	mtime time.Time
	sum   [sha256.Size]byte
}

func identify(path string) (fileIdentity, error) {
	f, err := os.Open(path)
	if err != nil {
		return fileIdentity{}, fmt.Errorf("open for identity: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fileIdentity{}, fmt.Errorf("stat: %w", err)
	}
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fileIdentity{}, fmt.Errorf("hash: %w", err)
	}
	id := fileIdentity{size: info.Size(), mtime: info.ModTime()}
	copy(id.sum[:], h.Sum(nil))
	return id, nil
}

// Cache memoizes parsed tables keyed by cleaned file path and file identity.
// There is no package-level memoization anywhere in this package: callers
// decide the cache's lifetime, and Invalidate and Clear are the only ways an
// entry leaves it besides being superseded by a changed file.
type Cache struct {
	mu       sync.Mutex
	prices   map[string]priceEntry
	typhoons map[string]typhoonEntry
	hits     int
	misses   int
}

type priceEntry struct {
	id    fileIdentity
	table *PriceTable
}

type typhoonEntry struct {
	id    fileIdentity
	table *TyphoonTable
}

// CacheStats reports cache activity since construction.
type CacheStats struct {
	Entries int
	Hits    int
	Misses  int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		prices:   make(map[string]priceEntry),
		typhoons: make(map[string]typhoonEntry),
	}
}

func (c *Cache) price(key string, id fileIdentity) (*PriceTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.prices[key]; ok && e.id == id {
		c.hits++
		return e.table, true
	}
	c.misses++
	return nil, false
}

func (c *Cache) storePrice(key string, id fileIdentity, t *PriceTable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[key] = priceEntry{id: id, table: t}
}

func (c *Cache) typhoon(key string, id fileIdentity) (*TyphoonTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.typhoons[key]; ok && e.id == id {
		c.hits++
		return e.table, true
	}
	c.misses++
	return nil, false
}

func (c *Cache) storeTyphoon(key string, id fileIdentity, t *TyphoonTable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.typhoons[key] = typhoonEntry{id: id, table: t}
}

// Invalidate drops the entry for path and reports whether one existed. Paths
// are cleaned the same way the Loader cleans them, so the argument can be
// whatever the caller originally passed to a Load method.
func (c *Cache) Invalidate(path string) bool {
	key := filepath.Clean(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	_, hadPrice := c.prices[key]
	_, hadTyphoon := c.typhoons[key]
	delete(c.prices, key)
	delete(c.typhoons, key)
	return hadPrice || hadTyphoon
}

// Clear drops every entry. Hit and miss counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices = make(map[string]priceEntry)
	c.typhoons = make(map[string]typhoonEntry)
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prices) + len(c.typhoons)
}

// Stats returns a snapshot of cache activity.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: len(c.prices) + len(c.typhoons), Hits: c.hits, Misses: c.misses}
}
