package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const valueFlightKey = "value"

// Value caches a single lazily loaded value with a TTL. Concurrent loads
// collapse into one loader call.
type Value[T any] struct {
	mu       sync.RWMutex
	loader   func(context.Context) (T, error)
	ttl      time.Duration
	value    T
	loadedAt time.Time
	valid    bool
	flight   singleflight.Group
	now      func() time.Time
}

func NewValue[T any](ttl time.Duration, loader func(context.Context) (T, error)) *Value[T] {
	return &Value[T]{
		loader: loader,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Get returns the cached value, reloading it when missing or expired.
func (v *Value[T]) Get(ctx context.Context) (T, error) {
	if value, ok := v.Peek(); ok {
		return value, nil
	}
	return v.load(ctx, false)
}

// Refresh forces a reload regardless of freshness.
func (v *Value[T]) Refresh(ctx context.Context) (T, error) {
	return v.load(ctx, true)
}

// Invalidate drops the cached value; the next Get reloads.
func (v *Value[T]) Invalidate() {
	v.mu.Lock()
	var zero T
	v.value = zero
	v.valid = false
	v.loadedAt = time.Time{}
	v.mu.Unlock()
	v.flight.Forget(valueFlightKey)
}

// Peek returns the cached value without loading.
func (v *Value[T]) Peek() (T, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if !v.valid || v.expiredLocked() {
		var zero T
		return zero, false
	}
	return v.value, true
}

func (v *Value[T]) LoadedAt() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loadedAt
}

func (v *Value[T]) load(ctx context.Context, force bool) (T, error) {
	var zero T
	if v.loader == nil {
		return zero, fmt.Errorf("loader is required")
	}

	out, err, _ := v.flight.Do(valueFlightKey, func() (any, error) {
		if !force {
			if cached, ok := v.Peek(); ok {
				return cached, nil
			}
		}

		loaded, err := v.loader(ctx)
		if err != nil {
			return nil, err
		}

		v.mu.Lock()
		v.value = loaded
		v.valid = true
		v.loadedAt = v.now()
		v.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected cached value type %T", out)
	}
	return value, nil
}

func (v *Value[T]) expiredLocked() bool {
	if v.ttl <= 0 {
		return false
	}
	return !v.loadedAt.Add(v.ttl).After(v.now())
}
