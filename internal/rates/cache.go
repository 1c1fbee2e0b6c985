package rates

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/eventpos-backend/pkg/enums"
	pkgredis "github.com/angelmondragon/eventpos-backend/pkg/redis"
)

// Cache is a read-through cache in front of the rate table. Readers Fill,
// which never replaces a cached value, so a lookup that read the row before an
// upsert cannot overwrite the rate the upsert Set.
type Cache interface {
	Get(ctx context.Context, code enums.Currency) (decimal.Decimal, bool, error)
	Fill(ctx context.Context, code enums.Currency, rate decimal.Decimal) error
	Set(ctx context.Context, code enums.Currency, rate decimal.Decimal) error
}

type redisCache struct {
	store pkgredis.KeyValueStore
	ttl   time.Duration
}

// NewRedisCache shares cached rates across API instances.
func NewRedisCache(store pkgredis.KeyValueStore, ttl time.Duration) Cache {
	return &redisCache{store: store, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, code enums.Currency) (decimal.Decimal, bool, error) {
	raw, err := c.store.Get(ctx, c.store.RateKey(code.String()))
	if err != nil {
		if pkgredis.IsNil(err) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, err
	}
	return rate, true, nil
}

func (c *redisCache) Set(ctx context.Context, code enums.Currency, rate decimal.Decimal) error {
	return c.store.Set(ctx, c.store.RateKey(code.String()), rate.String(), c.ttl)
}

func (c *redisCache) Fill(ctx context.Context, code enums.Currency, rate decimal.Decimal) error {
	_, err := c.store.SetNX(ctx, c.store.RateKey(code.String()), rate.String(), c.ttl)
	return err
}

type memoryEntry struct {
	rate    decimal.Decimal
	expires time.Time
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[enums.Currency]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache keeps rates in process; used when Redis is not configured.
func NewMemoryCache(ttl time.Duration) Cache {
	return &memoryCache{entries: map[enums.Currency]memoryEntry{}, ttl: ttl, now: time.Now}
}

func (c *memoryCache) Get(_ context.Context, code enums.Currency) (decimal.Decimal, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[code]
	c.mu.RUnlock()
	if !ok {
		return decimal.Zero, false, nil
	}
	if c.expired(entry) {
		return decimal.Zero, false, nil
	}
	return entry.rate, true, nil
}

func (c *memoryCache) Set(_ context.Context, code enums.Currency, rate decimal.Decimal) error {
	c.mu.Lock()
	c.entries[code] = memoryEntry{rate: rate, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Fill(_ context.Context, code enums.Currency, rate decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[code]; ok && !c.expired(entry) {
		return nil
	}
	c.entries[code] = memoryEntry{rate: rate, expires: c.now().Add(c.ttl)}
	return nil
}

func (c *memoryCache) expired(entry memoryEntry) bool {
	return c.ttl > 0 && c.now().After(entry.expires)
}
