package local

import (
	"context"
	"sync"
)

// BlobStore is the key-value port behind the local backend. Get returns
// (nil, nil) for a key that was never written.
//
// Update replaces the value under key with fn's result atomically with
// respect to every other writer of the same store, including other processes
// sharing it. fn receives nil for a missing key; an error from fn leaves the
// stored value unchanged and is returned as is.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// UpdateFunc transforms a stored value.
type UpdateFunc = func([]byte) ([]byte, error)

// MemoryBlobs keeps blobs in process memory. Contents are lost on exit.
type MemoryBlobs struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryBlobs() *MemoryBlobs {
	return &MemoryBlobs{blobs: make(map[string][]byte)}
}

func (m *MemoryBlobs) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.blobs[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryBlobs) Update(_ context.Context, key string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := fn(append([]byte(nil), m.blobs[key]...))
	if err != nil {
		return err
	}
	m.blobs[key] = append([]byte(nil), next...)
	return nil
}
