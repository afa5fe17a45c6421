package publisher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "tradeinvoice/pkg/platform/audit"
	"tradeinvoice/pkg/platform/audit/store/memory"
	"tradeinvoice/pkg/requestcontext"
)

type countingDrops struct{ n int }

func (c *countingDrops) IncAuditDropped() { c.n++ }

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), fixed)
	ctx = requestcontext.WithRequestID(ctx, "req-42")

	err := pub.Emit(ctx, audit.Event{
		Action:    string(audit.EventInvoiceCreated),
		InvoiceID: 7,
		ActorID:   "seller",
	})
	require.NoError(t, err)

	events, err := store.ListByInvoice(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].ID)
	assert.Equal(t, fixed, events[0].Timestamp)
	assert.Equal(t, "req-42", events[0].RequestID)
	assert.Equal(t, audit.CategoryLifecycle, events[0].Category)
}

func TestPublisher_AsyncModeDropsWhenFull(t *testing.T) {
	store := memory.NewInMemoryStore()
	drops := &countingDrops{}
	pub := NewPublisher(store, WithAsyncBuffer(1), WithDropCounter(drops))

	ctx := context.Background()
	require.NoError(t, pub.Emit(ctx, audit.Event{Action: string(audit.EventRegistryPaused)}))
	require.NoError(t, pub.Emit(ctx, audit.Event{Action: string(audit.EventRegistryUnpaused)}))

	assert.Equal(t, 1, drops.n)
	require.Len(t, pub.Inbox(), 1)
	queued := <-pub.Inbox()
	assert.Equal(t, string(audit.EventRegistryPaused), queued.Action)
	assert.Equal(t, audit.CategoryGovernance, queued.Category)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "async mode must not write to the store directly")
}
