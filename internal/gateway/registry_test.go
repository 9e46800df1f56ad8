package gateway

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
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

func TestAcquireReusesGateway(t *testing.T) {
	auth := &mockAuth{}
	auth.On("Resume", "tok-1").Return(landlord, nil)
	r := NewRegistry(auth, newTestStore(t), time.Minute)
	defer r.Close()

	g := r.Acquire(context.Background(), "client-1", "tok-1")
	assert.Equal(t, "client-1", g.ID())
	assert.Equal(t, Authenticated, g.Session().Value().Status)

	again := r.Acquire(context.Background(), "client-1", "tok-1")
	assert.Same(t, g, again)
	auth.AssertNumberOfCalls(t, "Resume", 1)

	fresh := r.Acquire(context.Background(), "", "")
	assert.NotEmpty(t, fresh.ID())
	assert.NotEqual(t, g.ID(), fresh.ID())
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, float64(2), testutil.ToFloat64(r.Collector()))
}

func TestReapClosesIdleGateways(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	r := NewRegistry(&mockAuth{}, newTestStore(t), 10*time.Minute, WithRegistryClock(clock.Now))
	defer r.Close()

	idle := r.Acquire(context.Background(), "idle", "")
	clock.Advance(6 * time.Minute)
	busy := r.Acquire(context.Background(), "busy", "")
	clock.Advance(6 * time.Minute)

	assert.Equal(t, 1, r.Reap())
	_, ok := r.Get("idle")
	assert.False(t, ok)
	got, ok := r.Get("busy")
	require.True(t, ok)
	assert.Same(t, busy, got)
	assert.Equal(t, float64(1), testutil.ToFloat64(r.Collector()))

	assert.ErrorIs(t, idle.Authenticate(context.Background(), "a@b.c", "pw"), ErrClosed)
}

func TestRemove(t *testing.T) {
	r := NewRegistry(&mockAuth{}, newTestStore(t), time.Minute)
	g := r.Acquire(context.Background(), "client-1", "")

	r.Remove("client-1")
	assert.Zero(t, r.Len())
	_, err := g.GetProfile(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
