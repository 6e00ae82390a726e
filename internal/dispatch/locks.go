package dispatch

import (
	"context"
	"sync"

	"github.com/vmunix/reqarr/internal/library"
)

// variantKey names one acquisition track of a media item. Dispatches for
// the standard and 4k tracks of the same title do not wait on each other.
type variantKey struct {
	mediaID int64
	variant library.Variant
}

// keyedLocks hands out one lock per key. Entries are dropped when the last
// holder or waiter leaves, so the map only grows with live contention.
type keyedLocks[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*keyedLock
}

type keyedLock struct {
	sem  chan struct{}
	refs int
}

func newKeyedLocks[K comparable]() *keyedLocks[K] {
	return &keyedLocks[K]{locks: make(map[K]*keyedLock)}
}

// lock blocks until key is free or ctx is done and returns the release
// func. Release is safe to call more than once.
func (l *keyedLocks[K]) lock(ctx context.Context, key K) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyedLock{sem: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.sem <- struct{}{}:
	case <-ctx.Done():
		l.leave(key, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.sem
			l.leave(key, kl)
		})
	}, nil
}

func (l *keyedLocks[K]) leave(key K, kl *keyedLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// held reports how many keys have a holder or waiter.
func (l *keyedLocks[K]) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
