package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/Gunvolt24/brokerdemo/internal/ports"
	"github.com/Gunvolt24/brokerdemo/pkg/metrics"
)

// Проверка, что кэш удовлетворяет порту учёта доставок.
var _ ports.DeliveryTracker = (*DeliveryCache)(nil)

type entry struct {
	id        string
	expiresAt time.Time
}

// DeliveryCache — LRU с TTL по идентификаторам доставок брокера.
// Потокобезопасен; Seen/MarkProcessed — O(1).
type DeliveryCache struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	ll    *list.List
	index map[string]*list.Element

	mu sync.Mutex
}

// NewDeliveryCache — capacity <= 0 → 1; ttl <= 0 — без истечения (только LRU).
func NewDeliveryCache(capacity int, ttl time.Duration) *DeliveryCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &DeliveryCache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

// Seen — true, если доставка уже обработана и запись не истекла.
// TTL при попадании не продлевается: окно считается от момента обработки.
func (c *DeliveryCache) Seen(_ context.Context, messageID string) bool {
	if messageID == "" {
		return false
	}
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[messageID]
	if !ok {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return false
	}
	ent := elem.Value.(*entry)
	if c.isExpired(ent, now) {
		metrics.CacheOps.WithLabelValues("expired").Inc()
		c.removeElement(elem)
		metrics.CacheSize.Set(float64(len(c.index)))
		return false
	}
	c.ll.MoveToFront(elem)

	metrics.CacheOps.WithLabelValues("hit").Inc()
	return true
}

// MarkProcessed — запомнить доставку как обработанную.
func (c *DeliveryCache) MarkProcessed(_ context.Context, messageID string) {
	if messageID == "" {
		return
	}
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[messageID]; ok {
		elem.Value.(*entry).expiresAt = c.expiryFrom(now)
		c.ll.MoveToFront(elem)
		return
	}

	c.pruneExpiredFromBack(now)

	elem := c.ll.PushFront(&entry{id: messageID, expiresAt: c.expiryFrom(now)})
	c.index[messageID] = elem

	if c.ll.Len() > c.capacity {
		c.evictLRU()
	}
	metrics.CacheSize.Set(float64(len(c.index)))
}

// Len — текущее число записей (включая ещё не вычищенные истёкшие).
func (c *DeliveryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
