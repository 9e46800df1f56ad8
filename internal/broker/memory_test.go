package broker

import (
	"context"
	"testing"
	"time"

	"github.com/localnerve/rentalmanager/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return Event{}
}

func TestMemoryBrokerScopesByUserAndCollection(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker()
	defer b.Close()

	mine, err := b.Subscribe(ctx, "u1", models.Tenants)
	require.NoError(t, err)
	other, err := b.Subscribe(ctx, "u2", models.Tenants)
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, Event{UserID: "u1", Collection: models.Tenants, Operation: OperationCreate, Version: 1}))

	ev := receive(t, mine)
	assert.Equal(t, uint64(1), ev.Version)
	assert.Equal(t, OperationCreate, ev.Operation)

	select {
	case ev := <-other.Events():
		t.Fatalf("unexpected event for other user: %+v", ev)
	default:
	}
}

func TestMemoryBrokerCoalescesPendingEvents(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker()
	defer b.Close()

	sub, err := b.Subscribe(ctx, "u1", models.Payments)
	require.NoError(t, err)

	for v := uint64(1); v <= 3; v++ {
		require.NoError(t, b.Publish(ctx, Event{UserID: "u1", Collection: models.Payments, Version: v}))
	}

	assert.Equal(t, uint64(1), receive(t, sub).Version)
	select {
	case ev := <-sub.Events():
		t.Fatalf("expected coalesced events, got %+v", ev)
	default:
	}
}

func TestMemoryBrokerClose(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker()

	sub, err := b.Subscribe(ctx, "u1", models.Properties)
	require.NoError(t, err)
	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	_, ok := <-sub.Events()
	assert.False(t, ok)

	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.Publish(ctx, Event{UserID: "u1"}), ErrClosed)
	_, err = b.Subscribe(ctx, "u1", models.Properties)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, b.Ping(ctx), ErrClosed)
}
