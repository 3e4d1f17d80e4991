package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-portfolio/authurl"
	"github.com/jrsteele09/go-portfolio/storage"
)

const DefaultPollInterval = 5 * time.Second

// SettingsConfig describes one mirrored settings record.
type SettingsConfig[T any] struct {
	Client Client
	Table  string
	Filter authurl.Filter
	Fetch  FetchFunc[T]

	// Snapshots holds the last successful fetch under SnapshotKey. Optional.
	Snapshots   storage.KV
	SnapshotKey string

	// Broadcaster delivers same-origin "settings changed" signals on Topic. Optional.
	Broadcaster Broadcaster
	Topic       string

	PollInterval time.Duration
	Logger       *zerolog.Logger
}

// Settings is a stale-while-revalidate mirror of one remote settings record. It is
// refreshed by realtime changes, broadcast signals and a fixed poll, all feeding the
// same refresh queue.
type Settings[T any] struct {
	loop        *refreshLoop[T]
	sub         *Subscription
	stopListen  func()
	stopPolling context.CancelFunc
	pollDone    chan struct{}
}

// NewSettings seeds the state from the local snapshot, if any, before returning.
func NewSettings[T any](ctx context.Context, cfg SettingsConfig[T]) *Settings[T] {
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.SnapshotKey == "" {
		cfg.SnapshotKey = storage.KeySettingsSnapshot
	}

	loop := newRefreshLoop(cfg.Table, cfg.Fetch, logger)
	loop.dedupe = true
	if cfg.Snapshots != nil {
		if raw, ok, err := cfg.Snapshots.Get(ctx, cfg.SnapshotKey); err != nil {
			logger.Warn().Err(err).Msg("settings snapshot unreadable")
		} else if ok {
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				logger.Warn().Err(err).Msg("settings snapshot corrupt, ignoring")
			} else {
				loop.seed(v, raw)
			}
		}

		loop.onSuccess = func(ctx context.Context, _ T, raw []byte) {
			if err := cfg.Snapshots.Put(ctx, cfg.SnapshotKey, raw); err != nil {
				logger.Warn().Err(err).Msg("settings snapshot write failed")
			}
		}
	}

	s := &Settings[T]{loop: loop, stopListen: func() {}}

	s.sub = Subscribe(ctx, cfg.Client, cfg.Table, func(Change) { loop.Trigger() },
		WithFilter(cfg.Filter), WithSubscriptionLogger(logger), WithReconnect(loop.Trigger))

	if cfg.Broadcaster != nil && cfg.Topic != "" {
		s.stopListen = cfg.Broadcaster.Listen(cfg.Topic, loop.Trigger)
	}

	loop.start(ctx)

	pollCtx, cancel := context.WithCancel(ctx)
	s.stopPolling = cancel
	s.pollDone = make(chan struct{})
	go s.poll(pollCtx, cfg.PollInterval)

	return s
}

func (s *Settings[T]) poll(ctx context.Context, interval time.Duration) {
	defer close(s.pollDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.loop.Trigger()
		}
	}
}

func (s *Settings[T]) State() State[T] {
	return s.loop.State()
}

// Current returns the displayed settings value.
func (s *Settings[T]) Current() T {
	return s.loop.State().Data
}

// Changed returns a channel closed when the displayed value next changes.
func (s *Settings[T]) Changed() <-chan struct{} {
	return s.loop.Changed()
}

// Refresh requests an out-of-band fetch.
func (s *Settings[T]) Refresh() {
	s.loop.Trigger()
}

func (s *Settings[T]) Connected() bool {
	return s.sub.Connected()
}

func (s *Settings[T]) Close() {
	s.stopListen()
	s.stopPolling()
	<-s.pollDone
	s.sub.Close()
	s.loop.stop()
}
