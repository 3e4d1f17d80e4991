package realtime

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-portfolio/authurl"
)

type subscribeOptions struct {
	params    Params
	enabled   bool
	logger    *zerolog.Logger
	reconnect func()
}

// SubscribeOption configures a Subscription.
type SubscribeOption func(*subscribeOptions)

func WithEvent(e Event) SubscribeOption {
	return func(o *subscribeOptions) { o.params.Event = e }
}

func WithSchema(schema string) SubscribeOption {
	return func(o *subscribeOptions) { o.params.Schema = schema }
}

func WithFilter(f authurl.Filter) SubscribeOption {
	return func(o *subscribeOptions) { o.params.Filter = f }
}

// WithTable changes the table on Update.
func WithTable(table string) SubscribeOption {
	return func(o *subscribeOptions) { o.params.Table = table }
}

// WithEnabled controls whether a channel is held at all. Defaults to true.
func WithEnabled(enabled bool) SubscribeOption {
	return func(o *subscribeOptions) { o.enabled = enabled }
}

func WithSubscriptionLogger(l zerolog.Logger) SubscribeOption {
	return func(o *subscribeOptions) { o.logger = &l }
}

// WithReconnect runs fn each time the channel reports StatusSubscribed again after
// having lost its connection. Changes made while disconnected are never replayed.
func WithReconnect(fn func()) SubscribeOption {
	return func(o *subscribeOptions) { o.reconnect = fn }
}

// Subscription holds at most one transport channel for one logical listener.
// Notifications always reach the callback most recently set, and never arrive from a
// channel this subscription has already replaced or closed.
type Subscription struct {
	client Client
	logger zerolog.Logger

	mu      sync.Mutex
	params  Params
	enabled bool
	ch      Channel
	err     error

	gen       atomic.Uint64
	closed    atomic.Bool
	connected atomic.Bool
	lost      atomic.Bool
	callback  atomic.Pointer[func(Change)]
	reconnect func()
}

// Subscribe opens a channel on table and routes its notifications to onChange.
func Subscribe(ctx context.Context, client Client, table string, onChange func(Change), opts ...SubscribeOption) *Subscription {
	o := subscribeOptions{params: Params{Table: table}, enabled: true}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Subscription{
		client:    client,
		logger:    log.Logger,
		params:    o.params.Normalize(),
		enabled:   o.enabled,
		reconnect: o.reconnect,
	}
	if o.logger != nil {
		s.logger = *o.logger
	}
	s.SetCallback(onChange)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled {
		s.openLocked(ctx)
	}
	return s
}

// SetCallback replaces the notification callback. Safe to call at any time.
func (s *Subscription) SetCallback(fn func(Change)) {
	if fn == nil {
		fn = func(Change) {}
	}
	s.callback.Store(&fn)
}

// Update re-parameterises the subscription. When anything changes the old channel is
// closed before the new one is opened.
func (s *Subscription) Update(ctx context.Context, opts ...SubscribeOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return
	}

	o := subscribeOptions{params: s.params, enabled: s.enabled}
	for _, opt := range opts {
		opt(&o)
	}
	next := o.params.Normalize()
	if next == s.params && o.enabled == s.enabled {
		return
	}

	s.closeLocked()
	s.params = next
	s.enabled = o.enabled
	if s.enabled {
		s.openLocked(ctx)
	}
}

// SetEnabled opens or tears down the channel.
func (s *Subscription) SetEnabled(ctx context.Context, enabled bool) {
	s.Update(ctx, WithEnabled(enabled))
}

// Connected reports whether the transport acknowledged the current channel.
func (s *Subscription) Connected() bool {
	return s.connected.Load()
}

// Err returns the last subscribe error, if any.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// ChannelName returns the current channel name, "" when no channel is held.
func (s *Subscription) ChannelName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		return ""
	}
	return s.ch.Name()
}

// Close releases the channel. The callback is not invoked by notifications that start
// after Close returns.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Swap(true) {
		return
	}
	s.closeLocked()
}

func (s *Subscription) openLocked(ctx context.Context) {
	gen := s.gen.Add(1)
	s.lost.Store(false)
	table := s.params.Table
	name := channelName(table)

	ch, err := s.client.Subscribe(ctx, name, s.params,
		func(c Change) { s.deliver(gen, c) },
		func(st Status) { s.status(gen, table, st) },
	)
	if err != nil {
		s.err = err
		s.connected.Store(false)
		s.logger.Error().Err(err).Str("table", table).Msg("realtime subscribe failed")
		return
	}
	s.err = nil
	s.ch = ch
	s.logger.Debug().Str("channel", name).Str("filter", s.params.Filter.String()).Msg("realtime channel opened")
}

func (s *Subscription) closeLocked() {
	// Invalidate handlers of the current generation first so nothing slips through
	// while the transport is tearing down.
	s.gen.Add(1)
	s.connected.Store(false)
	if s.ch == nil {
		return
	}
	name := s.ch.Name()
	if err := s.ch.Close(); err != nil {
		s.logger.Warn().Err(err).Str("channel", name).Msg("realtime channel close failed")
	}
	s.ch = nil
	s.logger.Debug().Str("channel", name).Msg("realtime channel closed")
}

func (s *Subscription) live(gen uint64) bool {
	return !s.closed.Load() && s.gen.Load() == gen
}

func (s *Subscription) deliver(gen uint64, c Change) {
	if !s.live(gen) {
		return
	}
	if fn := s.callback.Load(); fn != nil {
		(*fn)(c)
	}
}

func (s *Subscription) status(gen uint64, table string, st Status) {
	if !s.live(gen) {
		return
	}
	s.connected.Store(st == StatusSubscribed)
	if st != StatusSubscribed {
		s.lost.Store(true)
		s.logger.Warn().Str("status", st.String()).Str("table", table).Msg("realtime channel not connected")
		return
	}
	if s.lost.Swap(false) && s.reconnect != nil {
		s.logger.Info().Str("table", table).Msg("realtime channel reconnected")
		s.reconnect()
	}
}

// channelName is unique per process even across rapid re-subscribes to one table.
func channelName(table string) string {
	return fmt.Sprintf("%s-%d-%s", table, time.Now().UnixNano(), uuid.NewString()[:8])
}
