package local

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// collection is one entity type stored as a single JSON array under key.
// Writes go through BlobStore.Update, which serialises them across every
// handle on the same store; mu only orders readers and writers in this
// process.
type collection[T any] struct {
	key   string
	blobs BlobStore
	mu    sync.Mutex
}

func newCollection[T any](blobs BlobStore, key string) *collection[T] {
	return &collection[T]{key: key, blobs: blobs}
}

func (c *collection[T]) load(ctx context.Context) ([]T, error) {
	raw, err := c.blobs.Get(ctx, c.key)
	if err != nil {
		return nil, err
	}
	return c.decode(raw)
}

func (c *collection[T]) decode(raw []byte) ([]T, error) {
	if len(raw) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.key, err)
	}
	return items, nil
}

// all loads the collection for readers. Readers take the lock too so they
// never observe a half-applied update.
func (c *collection[T]) all(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// update applies fn to the loaded items and saves the result unless fn fails.
func (c *collection[T]) update(ctx context.Context, fn func([]T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.blobs.Update(ctx, c.key, func(raw []byte) ([]byte, error) {
		items, err := c.decode(raw)
		if err != nil {
			return nil, err
		}
		items, err = fn(items)
		if err != nil {
			return nil, err
		}
		out, err := json.Marshal(items)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", c.key, err)
		}
		return out, nil
	})
}
