// Package moviecache is a read-through cache of movie metadata keyed by TMDb id.
//
// Entries live for the lifetime of the process: there is no TTL and no
// eviction. Failed fetches are never cached, so the next lookup for the same
// id goes back to the metadata service.
package moviecache

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/mmynk/watchtogether/internal/metrics"
	"github.com/mmynk/watchtogether/internal/models"
)

// Fetcher loads a movie from the metadata service.
type Fetcher interface {
	FetchMovie(ctx context.Context, id int64) (*models.Movie, error)
}

// Cache serves movie lookups from memory, falling back to a Fetcher on miss.
// It is safe for concurrent use.
type Cache struct {
	fetcher Fetcher

	mu      sync.RWMutex
	entries map[int64]*models.Movie

	coalesce bool
	group    singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithCoalescing makes concurrent misses for the same id share one fetch.
// Without it every missing caller fetches independently. A caller that gives
// up does not cancel the shared fetch for the others.
func WithCoalescing() Option {
	return func(c *Cache) {
		c.coalesce = true
	}
}

// New creates an empty cache in front of fetcher.
func New(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher: fetcher,
		entries: make(map[int64]*models.Movie),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the movie for id, fetching and caching it on first use.
// Fetch errors are returned untouched.
func (c *Cache) Get(ctx context.Context, id int64) (*models.Movie, error) {
	if movie, ok := c.Peek(id); ok {
		metrics.MovieCacheHits.Inc()
		return movie, nil
	}
	metrics.MovieCacheMisses.Inc()

	if !c.coalesce {
		return c.fetch(ctx, id)
	}

	// The shared fetch must outlive whichever caller started it; each caller
	// still stops waiting when its own ctx is done.
	flight := c.group.DoChan(strconv.FormatInt(id, 10), func() (any, error) {
		// A flight that finished since our Peek has already stored the entry.
		if movie, ok := c.Peek(id); ok {
			return movie, nil
		}
		return c.fetch(context.WithoutCancel(ctx), id)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Movie), nil
	}
}

// Peek returns the cached movie without fetching.
func (c *Cache) Peek(id int64) (*models.Movie, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	movie, ok := c.entries[id]
	return movie, ok
}

// Len returns the number of cached movies.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) fetch(ctx context.Context, id int64) (*models.Movie, error) {
	movie, err := c.fetcher.FetchMovie(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[id] = movie
	n := len(c.entries)
	c.mu.Unlock()
	metrics.MovieCacheEntries.Set(float64(n))

	return movie, nil
}
