package cache

import (
	"fmt"
	"sync/atomic"

	"github.com/TemirB/order-lookup/internal/domain"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a fixed-capacity LRU of orders keyed by order_uid. The underlying
// lru.Cache serializes access with its own lock.
type Cache struct {
	size      int
	lru       *lru.Cache[string, domain.Order]
	evictions atomic.Uint64
}

func New(size int) (*Cache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", size)
	}
	c := &Cache{size: size}
	l, err := lru.NewWithEvict[string, domain.Order](size, func(string, domain.Order) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

// Get returns a copy of the cached order and marks it most recently used.
func (c *Cache) Get(uid string) (domain.Order, bool) {
	order, ok := c.lru.Get(uid)
	if !ok {
		return domain.Order{}, false
	}
	return order.Clone(), true
}

func (c *Cache) Set(uid string, order domain.Order) {
	c.lru.Add(uid, order.Clone())
}

// Contains reports presence without touching recency.
func (c *Cache) Contains(uid string) bool {
	return c.lru.Contains(uid)
}

// Keys are ordered from least to most recently used.
func (c *Cache) Keys() []string {
	return c.lru.Keys()
}

func (c *Cache) Len() int { return c.lru.Len() }

func (c *Cache) Size() int { return c.size }

func (c *Cache) Evictions() uint64 { return c.evictions.Load() }
