package storage

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/rl1809/inheritance/internal/core/domain"
)

// LocalCache is the single-process stand-in for RedisAdapter: idempotency keys
// and snapshots live in an expiring map and events fan out to in-process
// subscribers.
type LocalCache struct {
	items     *gocache.Cache
	ledgerTTL time.Duration

	mu          sync.Mutex // serializes snapshot version checks
	subMu       sync.RWMutex
	subscribers map[string][]chan domain.Event
}

func NewLocalCache(ledgerTTL time.Duration) *LocalCache {
	if ledgerTTL <= 0 {
		ledgerTTL = defaultLedgerTTL
	}
	return &LocalCache{
		items:       gocache.New(ledgerTTL, 2*ledgerTTL),
		ledgerTTL:   ledgerTTL,
		subscribers: make(map[string][]chan domain.Event),
	}
}

func (c *LocalCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	return c.items.Add(key, idempotencyKeyValue, idempotencyKeyTTL) == nil, nil
}

func (c *LocalCache) ReleaseIdempotency(ctx context.Context, key string) error {
	c.items.Delete(key)
	return nil
}

func (c *LocalCache) GetLedger(ctx context.Context, id string) (*domain.Ledger, error) {
	v, ok := c.items.Get(ledgerKeyPrefix + id)
	if !ok {
		return nil, nil
	}
	return v.(*domain.Ledger).Clone(), nil
}

func (c *LocalCache) SetLedger(ctx context.Context, l domain.Ledger) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := ledgerKeyPrefix + l.ID
	if v, ok := c.items.Get(key); ok && v.(*domain.Ledger).Version >= l.Version {
		return nil
	}
	c.items.Set(key, l.Clone(), c.ledgerTTL)
	return nil
}

// Publish hands the event to every subscriber of its ledger. Slow subscribers
// miss events rather than block the publisher.
func (c *LocalCache) Publish(ctx context.Context, ev domain.Event) error {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	for _, ch := range c.subscribers[ev.LedgerID] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel receiving the events of ledgerID.
func (c *LocalCache) Subscribe(ledgerID string, buffer int) <-chan domain.Event {
	ch := make(chan domain.Event, buffer)
	c.subMu.Lock()
	c.subscribers[ledgerID] = append(c.subscribers[ledgerID], ch)
	c.subMu.Unlock()
	return ch
}
