package redis_adapter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ferone/Germany-real-sate/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	events map[string]int
}

func (o *countingObserver) ObserveCache(event string) {
	o.events[event]++
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis, *countingObserver) {
	t.Helper()
	mr := miniredis.RunT(t)
	obs := &countingObserver{events: map[string]int{}}

	c, err := NewCache(NewClient(Config{Addr: mr.Addr()}), obs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr, obs
}

func TestCache_MissThenHit(t *testing.T) {
	c, _, obs := newTestCache(t)
	ctx := context.Background()

	var got domain.Stats
	found, err := c.Get(ctx, "analytics:stats", &got)
	require.NoError(t, err)
	assert.False(t, found)

	want := domain.Stats{Total: 3, AvgPrice: 1200.5, AvgSize: 70, AvgRooms: 2.5}
	require.NoError(t, c.Set(ctx, "analytics:stats", want, time.Minute))

	found, err = c.Get(ctx, "analytics:stats", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	assert.Equal(t, map[string]int{"miss": 1, "set": 1, "hit": 1}, obs.events)
}

func TestCache_EntryExpires(t *testing.T) {
	c, mr, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", domain.Chart[int64]{Labels: []string{"Berlin"}, Series: []int64{2}}, time.Minute))
	mr.FastForward(2 * time.Minute)

	var got domain.Chart[int64]
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_CorruptedValue(t *testing.T) {
	c, mr, obs := newTestCache(t)
	require.NoError(t, mr.Set("k", "not json"))

	var got domain.Stats
	found, err := c.Get(context.Background(), "k", &got)
	assert.Error(t, err)
	assert.False(t, found)
	assert.Equal(t, 1, obs.events["error"])
}

func TestCache_ServerDown(t *testing.T) {
	c, mr, _ := newTestCache(t)
	mr.Close()

	_, err := c.Get(context.Background(), "k", &domain.Stats{})
	assert.Error(t, err)
}

func TestNewCache_NilClient(t *testing.T) {
	_, err := NewCache(nil, nil)
	assert.Error(t, err)
}
