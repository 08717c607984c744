package moviecache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmynk/watchtogether/internal/apperr"
	"github.com/mmynk/watchtogether/internal/models"
)

// scriptedFetcher returns the next scripted result on each call.
type scriptedFetcher struct {
	mu      sync.Mutex
	results []error // nil means success
	calls   atomic.Int32
	delay   time.Duration
}

func (f *scriptedFetcher) FetchMovie(ctx context.Context, id int64) (*models.Movie, error) {
	n := int(f.calls.Add(1)) - 1
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	var err error
	if n < len(f.results) {
		err = f.results[n]
	}
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &models.Movie{ID: id, Title: "Movie"}, nil
}

func TestGet_HitSkipsRemote(t *testing.T) {
	// Second remote call would fail; the cache must not make it.
	fetcher := &scriptedFetcher{results: []error{nil, apperr.New(apperr.KindNetwork, "offline")}}
	cache := New(fetcher)
	ctx := context.Background()

	first, err := cache.Get(ctx, 550)
	if err != nil {
		t.Fatalf("first Get failed: %v", err)
	}

	second, err := cache.Get(ctx, 550)
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}

	if first != second {
		t.Error("expected the cached record on the second lookup")
	}
	if got := fetcher.calls.Load(); got != 1 {
		t.Errorf("remote calls = %d, want 1", got)
	}
}

func TestGet_FailureNotCached(t *testing.T) {
	notFound := apperr.New(apperr.KindNotFound, "missing")
	fetcher := &scriptedFetcher{results: []error{notFound, nil}}
	cache := New(fetcher)
	ctx := context.Background()

	_, err := cache.Get(ctx, 7)
	if !errors.Is(err, notFound) {
		t.Fatalf("error = %v, want the fetcher's error untouched", err)
	}
	if _, ok := cache.Peek(7); ok {
		t.Error("failed fetch must not populate the cache")
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cache.Len())
	}

	movie, err := cache.Get(ctx, 7)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if movie.ID != 7 {
		t.Errorf("ID = %d, want 7", movie.ID)
	}
	if got := fetcher.calls.Load(); got != 2 {
		t.Errorf("remote calls = %d, want 2 (failure retried)", got)
	}
}

func TestGet_DistinctKeys(t *testing.T) {
	fetcher := &scriptedFetcher{}
	cache := New(fetcher)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 1, 3, 2} {
		if _, err := cache.Get(ctx, id); err != nil {
			t.Fatalf("Get(%d) failed: %v", id, err)
		}
	}
	if got := fetcher.calls.Load(); got != 3 {
		t.Errorf("remote calls = %d, want 3", got)
	}
	if cache.Len() != 3 {
		t.Errorf("Len() = %d, want 3", cache.Len())
	}
}

func TestGet_Coalescing(t *testing.T) {
	fetcher := &scriptedFetcher{delay: 50 * time.Millisecond}
	cache := New(fetcher, WithCoalescing())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Get(context.Background(), 99); err != nil {
				t.Errorf("Get failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := fetcher.calls.Load(); got != 1 {
		t.Errorf("remote calls = %d, want 1 with coalescing", got)
	}
}

// gatedFetcher blocks every fetch until release is closed.
type gatedFetcher struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (f *gatedFetcher) FetchMovie(ctx context.Context, id int64) (*models.Movie, error) {
	if f.calls.Add(1) == 1 {
		close(f.started)
	}
	select {
	case <-f.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &models.Movie{ID: id, Title: "Movie"}, nil
}

func TestGet_CoalescingCallerCancelDoesNotFailOthers(t *testing.T) {
	fetcher := &gatedFetcher{started: make(chan struct{}), release: make(chan struct{})}
	cache := New(fetcher, WithCoalescing())

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.Get(firstCtx, 5)
		firstErr <- err
	}()
	<-fetcher.started

	type result struct {
		movie *models.Movie
		err   error
	}
	second := make(chan result, 1)
	go func() {
		movie, err := cache.Get(context.Background(), 5)
		second <- result{movie, err}
	}()

	cancelFirst()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("first caller error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("canceled caller did not return")
	}

	// Let the second caller join the in-flight fetch before it completes.
	time.Sleep(20 * time.Millisecond)
	close(fetcher.release)

	select {
	case res := <-second:
		if res.err != nil {
			t.Fatalf("second caller error = %v, want success", res.err)
		}
		if res.movie.ID != 5 {
			t.Errorf("ID = %d, want 5", res.movie.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("second caller did not return")
	}

	if got := fetcher.calls.Load(); got != 1 {
		t.Errorf("remote calls = %d, want 1", got)
	}
	if _, ok := cache.Peek(5); !ok {
		t.Error("shared fetch should have populated the cache")
	}
}
