package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the published view of a refreshed value.
type State[T any] struct {
	Data    T
	Loading bool
	// Stale is true while Data comes from a local snapshot not yet confirmed remotely.
	Stale     bool
	Err       error
	UpdatedAt time.Time
}

// refreshLoop is the single consumer behind every refresh trigger. Triggers coalesce:
// however many arrive while a fetch runs, at most one more fetch follows it. Fetches
// never overlap, so the last successful fetch is the one that stays published.
type refreshLoop[T any] struct {
	fetch  FetchFunc[T]
	logger zerolog.Logger
	name   string

	// dedupe suppresses publishing when a fetch returns what is already shown.
	dedupe bool
	// onSuccess runs after each successful fetch with the value's JSON encoding.
	onSuccess func(ctx context.Context, v T, raw []byte)

	trigger chan struct{}

	mu       sync.RWMutex
	state    State[T]
	changed  chan struct{}
	lastJSON []byte
	closed   bool

	cancel context.CancelFunc
	done   chan struct{}
}

func newRefreshLoop[T any](name string, fetch FetchFunc[T], logger zerolog.Logger) *refreshLoop[T] {
	return &refreshLoop[T]{
		fetch:   fetch,
		logger:  logger,
		name:    name,
		trigger: make(chan struct{}, 1),
		state:   State[T]{Loading: true},
		changed: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// seed publishes v as stale initial state without notifying.
func (l *refreshLoop[T]) seed(v T, raw []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = State[T]{Data: v, Stale: true}
	l.lastJSON = raw
}

func (l *refreshLoop[T]) start(ctx context.Context) {
	ctx, l.cancel = context.WithCancel(ctx)
	l.Trigger()
	go l.run(ctx)
}

// Trigger requests a refresh. It never blocks.
func (l *refreshLoop[T]) Trigger() {
	select {
	case l.trigger <- struct{}{}:
	default:
	}
}

func (l *refreshLoop[T]) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.trigger:
			l.refreshOnce(ctx)
		}
	}
}

func (l *refreshLoop[T]) refreshOnce(ctx context.Context) {
	v, err := l.fetch(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		l.logger.Warn().Err(err).Str("view", l.name).Msg("refresh failed")
		l.publish(func(s *State[T]) bool {
			s.Loading = false
			s.Err = err
			return true
		})
		return
	}

	var raw []byte
	if l.dedupe || l.onSuccess != nil {
		if raw, err = json.Marshal(v); err != nil {
			l.logger.Error().Err(err).Str("view", l.name).Msg("encode refreshed value")
			raw = nil
		}
	}
	if l.onSuccess != nil && raw != nil {
		l.onSuccess(ctx, v, raw)
	}

	l.publish(func(s *State[T]) bool {
		same := l.dedupe && raw != nil && bytes.Equal(raw, l.lastJSON)
		if same && !s.Loading && !s.Stale && s.Err == nil {
			return false
		}
		s.Data = v
		s.Loading = false
		s.Stale = false
		s.Err = nil
		s.UpdatedAt = time.Now()
		l.lastJSON = raw
		return true
	})
}

// publish applies mutate under the lock and wakes watchers when it reports a change.
// Nothing is published once the loop is closed.
func (l *refreshLoop[T]) publish(mutate func(*State[T]) bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	if !mutate(&l.state) {
		return
	}
	close(l.changed)
	l.changed = make(chan struct{})
}

func (l *refreshLoop[T]) State() State[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Changed returns a channel closed at the next published change.
func (l *refreshLoop[T]) Changed() <-chan struct{} {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.changed
}

// stop ends the loop and waits for an in-flight fetch to return.
func (l *refreshLoop[T]) stop() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
		<-l.done
	}
}
