// ABOUTME: Thread-safe TTL and size bounded set of recently seen message IDs
// ABOUTME: Notification subscribers use it to drop replays of the same notification

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultTTL      = 10 * time.Minute
	DefaultMaxSize  = 1024
	DefaultInterval = time.Minute
)

// Options configures a Cache.
type Options struct {
	TTL     time.Duration
	MaxSize int

	// Interval between background sweeps of expired IDs. Negative disables
	// the sweeper; expired IDs are then only dropped on access or eviction.
	Interval time.Duration

	// Now is the clock. Tests replace it.
	Now func() time.Time
}

type entry struct {
	seenAt  time.Time
	element *list.Element
}

// Cache tracks IDs seen within the TTL window. The oldest ID is evicted when
// the cache is full.
type Cache struct {
	mu      sync.Mutex
	ids     map[string]*entry
	order   *list.List // oldest at front
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// New builds a Cache and starts its sweeper.
func New(opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.Interval == 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Cache{
		ids:     make(map[string]*entry),
		order:   list.New(),
		ttl:     opts.TTL,
		maxSize: opts.MaxSize,
		now:     opts.Now,
		done:    make(chan struct{}),
	}
	if opts.Interval > 0 {
		go c.sweep(opts.Interval)
	}
	return c
}

// Seen reports whether id was already seen within the TTL. If not, it is
// recorded in the same critical section, so two concurrent deliveries of one
// ID cannot both be reported as new.
func (c *Cache) Seen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.ids[id]; ok {
		if now.Sub(e.seenAt) < c.ttl {
			return true
		}
		e.seenAt = now
		c.order.MoveToBack(e.element)
		return false
	}

	if len(c.ids) >= c.maxSize {
		c.evictOldest()
	}
	c.ids[id] = &entry{seenAt: now, element: c.order.PushBack(id)}
	return false
}

// Contains reports whether id is remembered, without recording it.
func (c *Cache) Contains(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.ids[id]
	return ok && c.now().Sub(e.seenAt) < c.ttl
}

// Forget drops id so its next delivery is treated as new.
func (c *Cache) Forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.ids[id]; ok {
		c.order.Remove(e.element)
		delete(c.ids, id)
	}
}

// Len returns the number of remembered IDs, including expired ones not yet swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}

// evictOldest must be called with mu held.
func (c *Cache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	id, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.ids, id)
}

func (c *Cache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Prune()
		case <-c.done:
			return
		}
	}
}

// Prune removes expired IDs. Insertion order means it can stop at the first
// live entry.
func (c *Cache) Prune() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for el := c.order.Front(); el != nil; {
		id, _ := el.Value.(string)
		e := c.ids[id]
		if now.Sub(e.seenAt) < c.ttl {
			return
		}
		next := el.Next()
		c.order.Remove(el)
		delete(c.ids, id)
		el = next
	}
}

// Close stops the sweeper. It is safe to call more than once.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}
