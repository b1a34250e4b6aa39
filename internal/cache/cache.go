// Package cache provides the template cache: frozen (immutable) markup keyed
// by the manager's cache-key contract, with LRU eviction and TTL expiry.
// Entries are immutable by type, so concurrent readers share them without
// locking anything but the cache's own index.
package cache

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/loomkit/loom/internal/markup"
)

// TemplateCache caches frozen markup with LRU eviction and TTL.
type TemplateCache struct {
	entries     map[string]*entry
	mutex       sync.Mutex
	maxEvents   int64
	currentSize int64
	ttl         time.Duration

	// LRU doubly-linked list with dummy head and tail
	head *entry
	tail *entry

	// statistics, atomic for lock-free reads
	hits      int64
	misses    int64
	sets      int64
	evictions int64
}

type entry struct {
	key       string
	value     *markup.Immutable
	createdAt time.Time
	size      int64

	prev *entry
	next *entry
}

// New creates a template cache bounded by a total event count across all
// entries. maxEvents <= 0 disables the size bound; ttl <= 0 disables expiry.
func New(maxEvents int64, ttl time.Duration) *TemplateCache {
	c := &TemplateCache{
		entries:   make(map[string]*entry),
		maxEvents: maxEvents,
		ttl:       ttl,
	}
	c.head = &entry{}
	c.tail = &entry{}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get retrieves frozen markup by key.
func (c *TemplateCache) Get(key string) (*markup.Immutable, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e, exists := c.entries[key]
	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	if c.ttl > 0 && time.Since(e.createdAt) > c.ttl {
		c.remove(e)
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	c.moveToFront(e)
	atomic.AddInt64(&c.hits, 1)
	return e.value, true
}

// Set stores frozen markup under key, evicting least recently used entries
// when the event budget is exceeded.
func (c *TemplateCache) Set(key string, value *markup.Immutable) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	size := int64(value.Size())
	if c.maxEvents > 0 && size > c.maxEvents {
		// would evict everything else and still not fit
		return
	}

	if old, exists := c.entries[key]; exists {
		c.remove(old)
	}

	e := &entry{key: key, value: value, createdAt: time.Now(), size: size}
	c.entries[key] = e
	c.currentSize += size
	c.pushFront(e)
	atomic.AddInt64(&c.sets, 1)

	for c.maxEvents > 0 && c.currentSize > c.maxEvents {
		lru := c.tail.prev
		if lru == c.head {
			break
		}
		c.remove(lru)
		atomic.AddInt64(&c.evictions, 1)
	}
}

// Invalidate drops the entry stored under key, if any.
func (c *TemplateCache) Invalidate(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if e, exists := c.entries[key]; exists {
		c.remove(e)
	}
}

// InvalidatePrefix drops every entry whose key starts with prefix. The
// manager keys entries as "<template>|<mode>|...", so invalidating one
// template name drops it for every mode and selector set.
func (c *TemplateCache) InvalidatePrefix(prefix string) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	dropped := 0
	for key, e := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.remove(e)
			dropped++
		}
	}
	return dropped
}

// InvalidateAll drops every entry.
func (c *TemplateCache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]*entry)
	c.currentSize = 0
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Len returns the number of cached entries.
func (c *TemplateCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.entries)
}

// Stats is a snapshot of cache effectiveness counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Sets      int64
	Evictions int64
	Entries   int
	Events    int64
}

// Stats returns a snapshot of the cache counters.
func (c *TemplateCache) Stats() Stats {
	c.mutex.Lock()
	entries := len(c.entries)
	events := c.currentSize
	c.mutex.Unlock()
	return Stats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Sets:      atomic.LoadInt64(&c.sets),
		Evictions: atomic.LoadInt64(&c.evictions),
		Entries:   entries,
		Events:    events,
	}
}

func (c *TemplateCache) remove(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev, e.next = nil, nil
	delete(c.entries, e.key)
	c.currentSize -= e.size
}

func (c *TemplateCache) pushFront(e *entry) {
	e.next = c.head.next
	e.prev = c.head
	c.head.next.prev = e
	c.head.next = e
}

func (c *TemplateCache) moveToFront(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.pushFront(e)
}
