package jsonstore

import (
	"context"
	"sync"
)

// MemoryBackend keeps payloads in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

// Load returns a copy of the stored payload.
func (b *MemoryBackend) Load(ctx context.Context, name string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	raw, ok := b.data[name]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// Commit replaces the payloads atomically.
func (b *MemoryBackend) Commit(ctx context.Context, writes []Write) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, w := range writes {
		b.data[w.Name] = append([]byte(nil), w.Data...)
	}
	return nil
}
