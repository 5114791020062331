// Package recordlog provides the append-only keyed sequence underneath the
// project registry. Append is the only mutator; no update or delete operation
// exists, which is what makes appended entries provably immutable.
package recordlog

import "context"

// Log is an ordered, dense, append-only sequence. Indexes start at 0 and are
// assigned in insertion order: after any run of appends, the entry stored at
// position i was assigned index i.
//
// Implementations must make Append a single indivisible transition (the
// hosting-ledger atomicity this design was lifted from is reproduced here
// with a mutex or a single SQL transaction).
type Log[T any] interface {
	// Append assigns the next dense index, invokes build with it so the
	// entry can embed its own index, and inserts the result. Returns the
	// stored entry.
	Append(ctx context.Context, build func(index int) T) (T, error)

	// Get returns the entry at index, or sentinel.ErrIndexOutOfBounds.
	Get(ctx context.Context, index int) (T, error)

	// Count returns the number of entries.
	Count(ctx context.Context) (int, error)

	// List returns all entries in insertion order. The returned slice is a
	// copy; callers cannot reach internal state through it.
	List(ctx context.Context) ([]T, error)
}
