package realtime

import (
	"context"

	"github.com/rs/zerolog/log"
)

// AutoRefresh re-fetches a view every time its table changes.
type AutoRefresh[T any] struct {
	loop *refreshLoop[T]
	sub  *Subscription
}

// NewAutoRefresh fetches once and then again after every matching change notification.
// Fetch errors are exposed through State; they never close the subscription.
func NewAutoRefresh[T any](ctx context.Context, client Client, table string, fetch FetchFunc[T], opts ...SubscribeOption) *AutoRefresh[T] {
	a := &AutoRefresh[T]{
		loop: newRefreshLoop(table, fetch, log.Logger),
	}
	opts = append(opts[:len(opts):len(opts)], WithReconnect(a.loop.Trigger))
	a.sub = Subscribe(ctx, client, table, func(Change) { a.loop.Trigger() }, opts...)
	a.loop.start(ctx)
	return a
}

func (a *AutoRefresh[T]) State() State[T] {
	return a.loop.State()
}

// Changed returns a channel closed at the next published state.
func (a *AutoRefresh[T]) Changed() <-chan struct{} {
	return a.loop.Changed()
}

// Refresh requests an out-of-band fetch.
func (a *AutoRefresh[T]) Refresh() {
	a.loop.Trigger()
}

// Connected reports whether the realtime channel is acknowledged.
func (a *AutoRefresh[T]) Connected() bool {
	return a.sub.Connected()
}

// Subscription exposes the underlying subscription, e.g. to change its filter.
func (a *AutoRefresh[T]) Subscription() *Subscription {
	return a.sub
}

func (a *AutoRefresh[T]) Close() {
	a.sub.Close()
	a.loop.stop()
}
