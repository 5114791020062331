package recordlog

import (
	"context"
	"sync"

	"chainpass/pkg/platform/sentinel"
)

// MemoryLog keeps the initial implementation lightweight and testable. It
// intentionally favors clarity over performance.
type MemoryLog[T any] struct {
	mu      sync.RWMutex
	entries []T
}

func NewMemoryLog[T any]() *MemoryLog[T] {
	return &MemoryLog[T]{}
}

func (l *MemoryLog[T]) Append(_ context.Context, build func(index int) T) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := build(len(l.entries))
	l.entries = append(l.entries, entry)
	return entry, nil
}

func (l *MemoryLog[T]) Get(_ context.Context, index int) (T, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= len(l.entries) {
		var zero T
		return zero, sentinel.ErrIndexOutOfBounds
	}
	return l.entries[index], nil
}

func (l *MemoryLog[T]) Count(_ context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries), nil
}

func (l *MemoryLog[T]) List(_ context.Context) ([]T, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]T(nil), l.entries...), nil
}
