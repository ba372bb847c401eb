package publisher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "sftgate/pkg/platform/audit"
)

func TestEmit_Sync(t *testing.T) {
	store := audit.NewInMemoryStore()
	p := New(store)

	p.Emit(context.Background(), audit.Event{
		Action:    audit.EventAccessDenied,
		CallerID:  "sp-1",
		Container: "sft-acme",
	})

	events, err := store.ListByContainer(context.Background(), "sft-acme")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventAccessDenied, events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero(), "timestamp is stamped on emit")
}

func TestEmit_AsyncDrainsOnClose(t *testing.T) {
	store := audit.NewInMemoryStore()
	p := New(store, WithAsyncBuffer(16))

	for i := 0; i < 5; i++ {
		p.Emit(context.Background(), audit.Event{Action: audit.EventAccessDenied, Container: "sft-acme"})
	}
	p.Close()

	events, err := store.ListByContainer(context.Background(), "sft-acme")
	require.NoError(t, err)
	assert.Len(t, events, 5)
}

func TestEmit_AsyncFullBufferDropsWithoutBlocking(t *testing.T) {
	store := audit.NewInMemoryStore()
	p := &Publisher{store: store, events: make(chan audit.Event, 1), async: true}
	// No consumer goroutine: the second emit must drop, not block.

	done := make(chan struct{})
	go func() {
		p.Emit(context.Background(), audit.Event{Action: "a", Container: "c"})
		p.Emit(context.Background(), audit.Event{Action: "b", Container: "c"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full buffer")
	}
}
