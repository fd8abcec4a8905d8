package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog.GO/core/cache"
	"catalog.GO/model/entity"
)

type stubFetcher struct {
	calls    int32
	err      error
	products []entity.Product
	delay    time.Duration
}

func (f *stubFetcher) FetchCatalog(ctx context.Context, _ string) ([]entity.Product, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func sampleProducts() []entity.Product {
	return []entity.Product{
		{ID: 1, Name: "Sofá Boreal", Image: "a.jpg", Images: []string{"a.jpg"}, Category: "Sala", Subcategory: "Sofás"},
		{ID: 2, Name: "Mesa Jantar", Image: "b.jpg", Images: []string{"b.jpg"}, Category: "Sala", Subcategory: "Mesas"},
	}
}

func TestStore_CachesInProcess(t *testing.T) {
	f := &stubFetcher{products: sampleProducts()}
	s := NewStore(f, StoreOptions{TTL: 60, Cache: cache.NewCache()})

	for i := 0; i < 3; i++ {
		products, err := s.Products(context.Background())
		require.NoError(t, err)
		assert.Len(t, products, 2)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&f.calls))

	s.Invalidate(context.Background())
	_, err := s.Products(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&f.calls))
}

func TestStore_ConcurrentMissesShareFetch(t *testing.T) {
	f := &stubFetcher{products: sampleProducts(), delay: 50 * time.Millisecond}
	s := NewStore(f, StoreOptions{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Products(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, atomic.LoadInt32(&f.calls))
}

func TestStore_RefreshFailureKeepsSnapshot(t *testing.T) {
	f := &stubFetcher{products: sampleProducts()}
	s := NewStore(f, StoreOptions{})
	_, err := s.Products(context.Background())
	require.NoError(t, err)

	f.err = &FetchError{URL: "x", StatusCode: 500}
	_, err = s.Refresh(context.Background())
	assert.True(t, IsFetchError(err))

	products, err := s.Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestStore_ErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	s := NewStore(&stubFetcher{err: boom}, StoreOptions{})
	_, err := s.Products(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestStore_RedisSnapshotShared(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	first := &stubFetcher{products: sampleProducts()}
	a := NewStore(first, StoreOptions{TTL: 60, Redis: rdb})
	_, err := a.Products(context.Background())
	require.NoError(t, err)
	assert.True(t, mr.Exists(DefaultRedisKey))

	second := &stubFetcher{products: nil}
	b := NewStore(second, StoreOptions{TTL: 60, Redis: rdb})
	products, err := b.Products(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleProducts(), products)
	assert.EqualValues(t, 0, atomic.LoadInt32(&second.calls))

	b.Invalidate(context.Background())
	assert.False(t, mr.Exists(DefaultRedisKey))
}

func TestStore_RedisSnapshotExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := NewStore(&stubFetcher{products: sampleProducts()}, StoreOptions{TTL: 30, Redis: rdb})
	_, err := s.Products(context.Background())
	require.NoError(t, err)

	mr.FastForward(31 * time.Second)
	assert.False(t, mr.Exists(DefaultRedisKey))
}

func TestStore_CorruptSnapshotRefetches(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	require.NoError(t, mr.Set(DefaultRedisKey, "{not json"))

	f := &stubFetcher{products: sampleProducts()}
	products, err := NewStore(f, StoreOptions{Redis: rdb}).Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.EqualValues(t, 1, atomic.LoadInt32(&f.calls))
}

// gatedFetcher blocks its first call until release is closed; later calls
// return fresh immediately.
type gatedFetcher struct {
	calls   int32
	entered chan struct{}
	release chan struct{}
	stale   []entity.Product
	fresh   []entity.Product
}

func (f *gatedFetcher) FetchCatalog(ctx context.Context, _ string) ([]entity.Product, error) {
	if atomic.AddInt32(&f.calls, 1) == 1 {
		close(f.entered)
		<-f.release
		return f.stale, nil
	}
	return f.fresh, nil
}

func TestStore_RefreshDoesNotJoinPendingLoad(t *testing.T) {
	stale := sampleProducts()[:1]
	fresh := sampleProducts()
	f := &gatedFetcher{entered: make(chan struct{}), release: make(chan struct{}), stale: stale, fresh: fresh}
	s := NewStore(f, StoreOptions{})

	pending := make(chan []entity.Product, 1)
	go func() {
		products, err := s.Products(context.Background())
		assert.NoError(t, err)
		pending <- products
	}()
	<-f.entered

	refreshed, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, refreshed)
	assert.EqualValues(t, 2, atomic.LoadInt32(&f.calls))

	close(f.release)
	assert.Equal(t, fresh, <-pending, "the slower load yields to the newer snapshot")

	products, err := s.Products(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, products)
	assert.EqualValues(t, 2, atomic.LoadInt32(&f.calls))
}
