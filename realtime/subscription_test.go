package realtime_test

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-portfolio/authurl"
	"github.com/jrsteele09/go-portfolio/realtime"
	"github.com/jrsteele09/go-portfolio/realtime/memrealtime"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

type recorder struct {
	mu      sync.Mutex
	changes []realtime.Change
}

func (r *recorder) record(c realtime.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

func (r *recorder) all() []realtime.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]realtime.Change(nil), r.changes...)
}

func newBackend(t *testing.T) *memrealtime.Client {
	t.Helper()
	c := memrealtime.New()
	c.CreateTable("projects", "site_settings")
	return c
}

func TestSubscription_DeliversInOrder(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)
	rec := &recorder{}

	sub := realtime.Subscribe(ctx, backend, "projects", rec.record)
	defer sub.Close()
	require.Eventually(t, sub.Connected, waitFor, tick)

	require.NoError(t, backend.Upsert(ctx, "projects", realtime.Row{"id": "1", "title": "a"}))
	require.NoError(t, backend.Upsert(ctx, "projects", realtime.Row{"id": "1", "title": "b"}))
	require.NoError(t, backend.Delete(ctx, "projects", "1"))
	require.NoError(t, backend.Upsert(ctx, "site_settings", realtime.Row{"id": "site"}))

	require.Eventually(t, func() bool { return rec.len() == 3 }, waitFor, tick)
	got := rec.all()
	require.Equal(t, realtime.EventInsert, got[0].EventType)
	require.Equal(t, realtime.EventUpdate, got[1].EventType)
	require.Equal(t, "a", got[1].Old["title"])
	require.Equal(t, realtime.EventDelete, got[2].EventType)
	require.Equal(t, "1", got[2].Old["id"])
}

func TestSubscription_EventAndFilter(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)
	rec := &recorder{}

	sub := realtime.Subscribe(ctx, backend, "projects", rec.record,
		realtime.WithEvent(realtime.EventUpdate),
		realtime.WithFilter(authurl.MustParseFilter("id=eq.2")))
	defer sub.Close()

	require.NoError(t, backend.Upsert(ctx, "projects", realtime.Row{"id": "1"}))
	require.NoError(t, backend.Upsert(ctx, "projects", realtime.Row{"id": "2"}))
	require.NoError(t, backend.Upsert(ctx, "projects", realtime.Row{"id": "1", "x": 1}))
	require.NoError(t, backend.Upsert(ctx, "projects", realtime.Row{"id": "2", "x": 1}))

	require.Eventually(t, func() bool { return rec.len() == 1 }, waitFor, tick)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 1, rec.len())
	require.Equal(t, "2", rec.all()[0].New["id"])
}

func TestSubscription_UsesLatestCallback(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)
	first, second := &recorder{}, &recorder{}

	sub := realtime.Subscribe(ctx, backend, "projects", first.record)
	defer sub.Close()
	sub.SetCallback(second.record)

	require.NoError(t, backend.Upsert(ctx, "projects", realtime.Row{"id": "1"}))
	require.Eventually(t, func() bool { return second.len() == 1 }, waitFor, tick)
	require.Zero(t, first.len())
	require.Len(t, backend.Channels(), 1, "swapping the callback must not re-subscribe")
}

func TestSubscription_UpdateClosesOldChannelFirst(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)

	sub := realtime.Subscribe(ctx, backend, "projects", nil, realtime.WithFilter(authurl.MustParseFilter("id=eq.1")))
	defer sub.Close()
	channels := backend.Channels()
	require.Len(t, channels, 1)
	old := channels[0]

	var oldClosedAtFirstDelivery atomic.Int32 // 0 unset, 1 closed, 2 open
	sub.SetCallback(func(realtime.Change) {
		if old.Closed() {
			oldClosedAtFirstDelivery.CompareAndSwap(0, 1)
		} else {
			oldClosedAtFirstDelivery.CompareAndSwap(0, 2)
		}
	})

	sub.Update(ctx, realtime.WithFilter(authurl.MustParseFilter("id=eq.2")))
	require.True(t, old.Closed())
	require.Len(t, backend.Channels(), 1)
	require.NotEqual(t, old.Name(), sub.ChannelName())

	require.NoError(t, backend.Upsert(ctx, "projects", realtime.Row{"id": "2"}))
	require.Eventually(t, func() bool { return oldClosedAtFirstDelivery.Load() != 0 }, waitFor, tick)
	require.Equal(t, int32(1), oldClosedAtFirstDelivery.Load())

	// Same parameters again is a no-op.
	name := sub.ChannelName()
	sub.Update(ctx, realtime.WithFilter(authurl.MustParseFilter("id=eq.2")))
	require.Equal(t, name, sub.ChannelName())
}

func TestSubscription_StaleDeliveryAfterClose(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)
	rec := &recorder{}

	sub := realtime.Subscribe(ctx, backend, "projects", rec.record)
	stale := backend.Channels()[0]
	sub.Close()
	sub.Close()

	require.True(t, stale.Closed())
	require.Empty(t, backend.Channels())
	require.False(t, sub.Connected())
	require.NotPanics(t, func() {
		stale.Deliver(realtime.Change{EventType: realtime.EventInsert, Table: "projects"})
		stale.Status(realtime.StatusSubscribed)
	})
	require.NoError(t, backend.Upsert(ctx, "projects", realtime.Row{"id": "1"}))

	time.Sleep(20 * time.Millisecond)
	require.Zero(t, rec.len())
	require.False(t, sub.Connected())

	sub.Update(ctx, realtime.WithEvent(realtime.EventInsert))
	require.Empty(t, backend.Channels(), "a closed subscription never re-opens")
}

func TestSubscription_Enabled(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)

	sub := realtime.Subscribe(ctx, backend, "projects", nil, realtime.WithEnabled(false))
	defer sub.Close()
	require.Empty(t, backend.Channels())
	require.False(t, sub.Connected())

	sub.SetEnabled(ctx, true)
	require.Len(t, backend.Channels(), 1)
	require.Eventually(t, sub.Connected, waitFor, tick)

	sub.SetEnabled(ctx, false)
	require.Empty(t, backend.Channels())
	require.False(t, sub.Connected())
}

func TestSubscription_ConnectionFailures(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)

	t.Run("subscribe error", func(t *testing.T) {
		boom := stderrors.New("boom")
		backend.FailSubscribe(boom)
		defer backend.FailSubscribe(nil)

		sub := realtime.Subscribe(ctx, backend, "projects", nil)
		defer sub.Close()
		require.False(t, sub.Connected())
		require.ErrorIs(t, sub.Err(), boom)
	})

	t.Run("channel error", func(t *testing.T) {
		sub := realtime.Subscribe(ctx, backend, "projects", nil)
		defer sub.Close()
		require.Eventually(t, sub.Connected, waitFor, tick)

		backend.Disconnect(realtime.StatusChannelError)
		require.Eventually(t, func() bool { return !sub.Connected() }, waitFor, tick)
	})
}

func TestSubscription_ReconnectHook(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)

	var reconnects atomic.Int32
	sub := realtime.Subscribe(ctx, backend, "projects", nil, realtime.WithReconnect(func() { reconnects.Add(1) }))
	defer sub.Close()
	require.Eventually(t, sub.Connected, waitFor, tick)

	backend.Disconnect(realtime.StatusSubscribed)
	require.Never(t, func() bool { return reconnects.Load() != 0 }, 50*time.Millisecond, tick, "still connected is not a reconnect")

	backend.Disconnect(realtime.StatusTimedOut)
	require.Eventually(t, func() bool { return !sub.Connected() }, waitFor, tick)
	backend.Disconnect(realtime.StatusSubscribed)
	require.Eventually(t, func() bool { return reconnects.Load() == 1 }, waitFor, tick)
	require.True(t, sub.Connected())
}
