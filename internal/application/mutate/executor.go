package mutate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alejandrodnm/martillo/internal/ports"
)

// Mutation describes one optimistic write against a cached collection key.
type Mutation struct {
	// Key is the cache key the write affects.
	Key string

	// Apply computes the optimistic post-mutation value from the previous
	// cached value. Only invoked when the key is warm; a cold key has
	// nothing to patch and converges through Refetch. Nil for writes with
	// no useful local guess (e.g. create, where the server assigns ids).
	Apply func(prev any) any

	// Call performs the server write.
	Call func(ctx context.Context) error

	// Refetch reloads the authoritative value after a confirmed write, so
	// the cache converges even when the optimistic guess was off. Nil
	// invalidates the key instead.
	Refetch func(ctx context.Context) (any, error)

	// AlsoInvalidate lists extra keys dropped after a confirmed write
	// (e.g. the list key when a detail write confirms).
	AlsoInvalidate []string
}

// Executor runs mutations with snapshot/apply/commit/rollback semantics
// against the shared cache. Mutations on the same key are serialized; the
// design assumes at most one in flight per logical entity and this makes
// the assumption hold.
type Executor struct {
	cache ports.Cache

	mu   sync.Mutex
	keys map[string]*sync.Mutex
}

// New creates an Executor over the given cache.
func New(cache ports.Cache) *Executor {
	return &Executor{
		cache: cache,
		keys:  make(map[string]*sync.Mutex),
	}
}

// Do executes one mutation:
//  1. snapshot: capture the cached value for the key
//  2. apply: write the locally computed post-mutation value
//  3. commit: on server confirmation, refetch or invalidate so the cache
//     converges to the authoritative value
//  4. rollback: on server error, restore the exact pre-mutation snapshot
//
// The returned error is the (wrapped) server error; rollback has already
// happened when it is non-nil. Never fatal: callers surface it as a
// transient notification.
func (e *Executor) Do(ctx context.Context, m Mutation) error {
	lock := e.keyLock(m.Key)
	lock.Lock()
	defer lock.Unlock()

	// A slow refetch already in flight must not overwrite the optimistic
	// value with stale data.
	e.cache.CancelRefetch(m.Key)

	prev, had := e.cache.Get(m.Key)
	applied := false
	if m.Apply != nil && had {
		e.cache.Set(m.Key, m.Apply(prev))
		applied = true
	}

	if err := m.Call(ctx); err != nil {
		if applied {
			e.cache.Set(m.Key, prev)
		}
		return fmt.Errorf("mutate: %s: %w", m.Key, err)
	}

	e.commit(ctx, m)
	return nil
}

// commit converges the affected keys after a confirmed write.
func (e *Executor) commit(ctx context.Context, m Mutation) {
	for _, key := range m.AlsoInvalidate {
		e.cache.Delete(key)
	}

	if m.Refetch == nil {
		e.cache.Delete(m.Key)
		return
	}

	rctx, cancel := e.cache.BeginRefetch(ctx, m.Key)
	defer cancel()

	v, err := m.Refetch(rctx)
	if rctx.Err() != nil {
		// superseded by a newer mutation on the same key
		return
	}
	if err != nil {
		slog.Warn("mutate: refetch failed, invalidating", "key", m.Key, "err", err)
		e.cache.Delete(m.Key)
		return
	}
	e.cache.Set(m.Key, v)
}

func (e *Executor) keyLock(key string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.keys[key]
	if !ok {
		lock = &sync.Mutex{}
		e.keys[key] = lock
	}
	return lock
}
