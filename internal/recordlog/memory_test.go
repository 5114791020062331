package recordlog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainpass/pkg/platform/sentinel"
)

type record struct {
	Index int
	Name  string
}

func TestMemoryLog_DenseIndexes(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog[record]()

	for i := 0; i < 5; i++ {
		entry, err := log.Append(ctx, func(index int) record {
			return record{Index: index, Name: "entry"}
		})
		require.NoError(t, err)
		assert.Equal(t, i, entry.Index)
	}

	count, err := log.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	for i := 0; i < count; i++ {
		entry, err := log.Get(ctx, i)
		require.NoError(t, err)
		assert.Equal(t, i, entry.Index, "entry at position %d must carry index %d", i, i)
	}
}

func TestMemoryLog_GetOutOfRange(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog[record]()
	_, _ = log.Append(ctx, func(index int) record { return record{Index: index} })

	for _, idx := range []int{-1, 1, 100} {
		_, err := log.Get(ctx, idx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, sentinel.ErrIndexOutOfBounds), "index %d", idx)
	}
}

func TestMemoryLog_ListIsACopy(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog[record]()
	_, _ = log.Append(ctx, func(index int) record { return record{Index: index, Name: "original"} })

	list, err := log.List(ctx)
	require.NoError(t, err)
	list[0].Name = "mutated"

	stored, err := log.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "original", stored.Name)
}

// Concurrent appends must never produce duplicate or skipped indexes.
func TestMemoryLog_ConcurrentAppendsStayDense(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog[record]()

	const writers = 16
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := log.Append(ctx, func(index int) record {
					return record{Index: index}
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	count, err := log.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, writers*perWriter, count)

	entries, err := log.List(ctx)
	require.NoError(t, err)
	for i, entry := range entries {
		assert.Equal(t, i, entry.Index)
	}
}
