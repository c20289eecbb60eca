package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/tubefetch/tubefetch/internal/domain"
)

type entry struct {
	id       domain.VideoID
	video    domain.ResolvedVideo
	strategy string
	storedAt time.Time
}

// MemoryCache is a TTL-checked memoization of resolved videos. Staleness is
// applied lazily on read; there is no background sweep. A bounded entry cap
// keeps memory from growing with every distinct ID ever requested: inserts
// past the cap evict the least recently used entry. TTL is measured from the
// Put, so a read refreshes recency but never extends freshness.
type MemoryCache struct {
	ttl        time.Duration
	maxEntries int

	mu      sync.Mutex
	entries map[domain.VideoID]*list.Element
	order   *list.List // front is most recently used

	nowFn func() time.Time
}

func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &MemoryCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[domain.VideoID]*list.Element, 64),
		order:      list.New(),
		nowFn:      time.Now,
	}
}

func (c *MemoryCache) Get(id domain.VideoID) (domain.ResolvedVideo, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[id]
	if !ok {
		return domain.ResolvedVideo{}, "", false
	}
	e := elem.Value.(*entry)
	if c.nowFn().Sub(e.storedAt) >= c.ttl {
		c.order.Remove(elem)
		delete(c.entries, id)
		return domain.ResolvedVideo{}, "", false
	}
	c.order.MoveToFront(elem)
	return e.video, e.strategy, true
}

// Put supersedes any existing entry wholesale; last writer wins.
func (c *MemoryCache) Put(id domain.VideoID, video domain.ResolvedVideo, strategy string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[id]; ok {
		e := elem.Value.(*entry)
		e.video = video
		e.strategy = strategy
		e.storedAt = c.nowFn()
		c.order.MoveToFront(elem)
		return
	}
	if len(c.entries) >= c.maxEntries {
		c.evictLRULocked()
	}
	c.entries[id] = c.order.PushFront(&entry{
		id:       id,
		video:    video,
		strategy: strategy,
		storedAt: c.nowFn(),
	})
}

func (c *MemoryCache) evictLRULocked() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	c.order.Remove(elem)
	delete(c.entries, elem.Value.(*entry).id)
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
