package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"catalog.GO/core/cache"
	"catalog.GO/core/logger"
	"catalog.GO/model/entity"
)

const (
	storeCacheKey = "catalog:products"
	// Forced loads get their own flight so a Refresh never joins a plain
	// cache-miss load.
	storeRefreshKey = storeCacheKey + ":refresh"
	storeCacheTag = "catalog"
	// DefaultRedisKey holds the shared JSON snapshot.
	DefaultRedisKey = "catalog:products:snapshot"
)

// Fetcher is the part of Pipeline a Store needs.
type Fetcher interface {
	FetchCatalog(ctx context.Context, sourceURL string) ([]entity.Product, error)
}

// StoreOptions configures a Store.
type StoreOptions struct {
	// TTL in seconds for both cache layers; 0 keeps snapshots until Refresh
	// or Invalidate.
	TTL      int64
	Cache    *cache.Cache
	Redis    *redis.Client
	RedisKey string
	Logger   logger.Logger
}

// Store caches the latest catalog snapshot in process and, when a Redis
// client is configured, in Redis so several instances share one fetch.
type Store struct {
	fetcher  Fetcher
	ttl      int64
	cache    *cache.Cache
	redis    *redis.Client
	redisKey string
	log      logger.Logger
	group    singleflight.Group

	// seq numbers fetches as they start; stored is the newest one written.
	// An older fetch finishing late never replaces a newer snapshot.
	mu     sync.Mutex
	seq    uint64
	stored uint64
}

func NewStore(fetcher Fetcher, opts StoreOptions) *Store {
	s := &Store{
		fetcher:  fetcher,
		ttl:      opts.TTL,
		cache:    opts.Cache,
		redis:    opts.Redis,
		redisKey: opts.RedisKey,
		log:      opts.Logger,
	}
	if s.cache == nil {
		s.cache = cache.NewCache()
	}
	if s.redisKey == "" {
		s.redisKey = DefaultRedisKey
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	return s
}

// Products returns the cached snapshot, fetching it on a miss. Concurrent
// misses share one fetch.
func (s *Store) Products(ctx context.Context) ([]entity.Product, error) {
	if v, ok := s.cache.Get(storeCacheKey); ok {
		return v.([]entity.Product), nil
	}
	return s.load(ctx, false)
}

// Refresh fetches the catalog and replaces the snapshot. On failure the
// previous snapshot stays in place.
func (s *Store) Refresh(ctx context.Context) ([]entity.Product, error) {
	return s.load(ctx, true)
}

func (s *Store) load(ctx context.Context, force bool) ([]entity.Product, error) {
	key := storeCacheKey
	if force {
		key = storeRefreshKey
	}
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		if !force {
			if v, ok := s.cache.Get(storeCacheKey); ok {
				return v, nil
			}
			if products, ok := s.readSnapshot(ctx); ok {
				s.cache.Set(storeCacheKey, products, s.ttl, []string{storeCacheTag})
				return products, nil
			}
		}
		ticket := s.nextTicket()
		products, err := s.fetcher.FetchCatalog(ctx, "")
		if err != nil {
			return nil, err
		}
		if !s.claim(ticket) {
			if v, ok := s.cache.Get(storeCacheKey); ok {
				return v, nil
			}
			return products, nil
		}
		s.cache.Set(storeCacheKey, products, s.ttl, []string{storeCacheTag})
		s.writeSnapshot(ctx, products)
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]entity.Product), nil
}

func (s *Store) nextTicket() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// claim reports whether the fetch numbered ticket may replace the snapshot.
func (s *Store) claim(ticket uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket < s.stored {
		return false
	}
	s.stored = ticket
	return true
}

// Invalidate drops both cache layers.
func (s *Store) Invalidate(ctx context.Context) {
	s.cache.DeleteByTag(storeCacheTag)
	if s.redis != nil {
		if err := s.redis.Del(ctx, s.redisKey).Err(); err != nil {
			s.log.Warn("Failed to delete catalog snapshot", logger.Error(err))
		}
	}
}

func (s *Store) readSnapshot(ctx context.Context) ([]entity.Product, bool) {
	if s.redis == nil {
		return nil, false
	}
	raw, err := s.redis.Get(ctx, s.redisKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("Failed to read catalog snapshot", logger.Error(err))
		}
		return nil, false
	}
	var products []entity.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		s.log.Warn("Discarding unreadable catalog snapshot", logger.Error(err))
		return nil, false
	}
	return products, true
}

func (s *Store) writeSnapshot(ctx context.Context, products []entity.Product) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(products)
	if err != nil {
		s.log.Warn("Failed to encode catalog snapshot", logger.Error(err))
		return
	}
	if err := s.redis.Set(ctx, s.redisKey, raw, time.Duration(s.ttl)*time.Second).Err(); err != nil {
		s.log.Warn("Failed to write catalog snapshot", logger.Error(err))
	}
}
