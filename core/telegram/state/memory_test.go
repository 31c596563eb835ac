package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type draft struct {
	Step string
	Name string
}

func TestMemoryGetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[draft](time.Minute)
	defer m.Close()

	_, ok, err := m.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, 1, draft{Step: "name", Name: "Ali"}))
	got, ok, err := m.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, draft{Step: "name", Name: "Ali"}, got)

	require.NoError(t, m.Delete(ctx, 1))
	_, ok, _ = m.Get(ctx, 1)
	assert.False(t, ok)
}

func TestMemoryExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := NewMemory[draft](10*time.Minute, WithClock(clock.Now))

	require.NoError(t, m.Set(ctx, 7, draft{Step: "phone"}))
	clock.Advance(9 * time.Minute)
	_, ok, _ := m.Get(ctx, 7)
	assert.True(t, ok)

	require.NoError(t, m.Set(ctx, 7, draft{Step: "age"}))
	clock.Advance(9 * time.Minute)
	_, ok, _ = m.Get(ctx, 7)
	assert.True(t, ok, "write should restart the ttl")

	clock.Advance(time.Minute)
	_, ok, _ = m.Get(ctx, 7)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMemorySweep(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := NewMemory[draft](time.Minute, WithClock(clock.Now))

	require.NoError(t, m.Set(ctx, 1, draft{}))
	require.NoError(t, m.Set(ctx, 2, draft{}))
	clock.Advance(30 * time.Second)
	require.NoError(t, m.Set(ctx, 3, draft{}))
	clock.Advance(45 * time.Second)

	assert.Equal(t, 2, m.Sweep())
	assert.Equal(t, 1, m.Len())
}

func TestMemoryIsolatesChats(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[draft](time.Minute)

	var wg sync.WaitGroup
	for i := int64(1); i <= 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_ = m.Set(ctx, id, draft{Step: "weight"})
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, m.Len())

	require.NoError(t, m.Delete(ctx, 10))
	_, ok, _ := m.Get(ctx, 11)
	assert.True(t, ok)
}

func TestRedisKeyLayout(t *testing.T) {
	r := NewRedis[draft](nil, "vacancybot:conv", 0)
	assert.Equal(t, "vacancybot:conv:42", r.key(42))
	assert.Equal(t, "vacancybot:conv:-100", r.key(-100))
}
