package scoring

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainpass/internal/domain"
	id "chainpass/pkg/domain"
	"chainpass/pkg/platform/sentinel"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	addr := id.MustAddress("0x" + strings.Repeat("01", 20))
	result := domain.ScoreResult{Address: addr, Score: 70, Tier: domain.TierSilver}

	_, err := cache.Get(context.Background(), addr)
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))

	require.NoError(t, cache.Set(context.Background(), addr, result))

	got, err := cache.Get(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, result, got)

	require.NoError(t, cache.Invalidate(context.Background(), addr))
	_, err = cache.Get(context.Background(), addr)
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
}

func TestMemoryCache_Expiry(t *testing.T) {
	cache := NewMemoryCache(10 * time.Millisecond)
	addr := id.MustAddress("0x" + strings.Repeat("02", 20))

	require.NoError(t, cache.Set(context.Background(), addr, domain.ScoreResult{Score: 40}))
	time.Sleep(25 * time.Millisecond)

	_, err := cache.Get(context.Background(), addr)
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
}
