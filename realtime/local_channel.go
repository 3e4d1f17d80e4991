package realtime

import (
	"sync"
)

// LocalChannel is a Channel that delivers callbacks in order on its own goroutine.
// Transports hand it changes with Offer; it drops changes that do not match its Params.
type LocalChannel struct {
	name     string
	params   Params
	onChange func(Change)
	onStatus func(Status)
	onClose  func(*LocalChannel)

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
}

var _ Channel = (*LocalChannel)(nil)

// NewLocalChannel starts the delivery goroutine. onClose, if set, runs once on Close so
// the transport can unregister the channel.
func NewLocalChannel(name string, p Params, onChange func(Change), onStatus func(Status), onClose func(*LocalChannel)) *LocalChannel {
	c := &LocalChannel{
		name:     name,
		params:   p.Normalize(),
		onChange: onChange,
		onStatus: onStatus,
		onClose:  onClose,
	}
	c.cond = sync.NewCond(&c.mu)
	go c.loop()
	return c
}

func (c *LocalChannel) Name() string {
	return c.name
}

func (c *LocalChannel) Params() Params {
	return c.params
}

// Offer queues change for delivery if it matches the channel's params.
func (c *LocalChannel) Offer(change Change) bool {
	if !c.params.Matches(change) {
		return false
	}
	c.Deliver(change)
	return true
}

// Deliver queues change without matching. On a closed channel it is a no-op.
func (c *LocalChannel) Deliver(change Change) {
	if c.onChange == nil {
		return
	}
	c.enqueue(func() { c.onChange(change) })
}

// Status queues a status callback.
func (c *LocalChannel) Status(s Status) {
	if c.onStatus == nil {
		return
	}
	c.enqueue(func() { c.onStatus(s) })
}

func (c *LocalChannel) enqueue(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.queue = append(c.queue, fn)
	c.cond.Signal()
}

// Closed reports whether Close has been called.
func (c *LocalChannel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *LocalChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.queue = nil
	c.cond.Broadcast()
	c.mu.Unlock()

	if c.onClose != nil {
		c.onClose(c)
	}
	return nil
}

func (c *LocalChannel) loop() {
	for {
		c.mu.Lock()
		for len(c.queue) == 0 && !c.closed {
			c.cond.Wait()
		}
		if c.closed {
			c.mu.Unlock()
			return
		}
		fn := c.queue[0]
		c.queue[0] = nil
		c.queue = c.queue[1:]
		c.mu.Unlock()

		fn()
	}
}
