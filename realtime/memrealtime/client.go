// Package memrealtime is an in-process realtime.Client. It backs the development server
// and the tests: writes emit change notifications to matching channels in order.
package memrealtime

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jrsteele09/go-portfolio/authurl"
	"github.com/jrsteele09/go-portfolio/internal/errors"
	"github.com/jrsteele09/go-portfolio/realtime"
)

type table struct {
	schema string
	order  []string
	rows   map[string]realtime.Row
}

// Client is a thread-safe in-memory backend.
type Client struct {
	mu           sync.RWMutex
	tables       map[string]*table
	channels     map[*realtime.LocalChannel]struct{}
	subscribeErr error
	fetchErr     map[string]error
}

var (
	_ realtime.Client = (*Client)(nil)
	_ realtime.Writer = (*Client)(nil)
)

func New() *Client {
	return &Client{
		tables:   make(map[string]*table),
		channels: make(map[*realtime.LocalChannel]struct{}),
		fetchErr: make(map[string]error),
	}
}

// CreateTable registers an empty table in the public schema. Existing tables are kept.
func (c *Client) CreateTable(names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, name := range names {
		if _, ok := c.tables[name]; !ok {
			c.tables[name] = &table{schema: realtime.DefaultSchema, rows: make(map[string]realtime.Row)}
		}
	}
}

// FailSubscribe makes subsequent Subscribe calls fail with err (nil restores them).
func (c *Client) FailSubscribe(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribeErr = err
}

// FailFetch makes Fetch on tableName fail with err (nil restores it).
func (c *Client) FailFetch(tableName string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.fetchErr, tableName)
		return
	}
	c.fetchErr[tableName] = err
}

func (c *Client) Subscribe(_ context.Context, name string, p realtime.Params, onChange func(realtime.Change), onStatus func(realtime.Status)) (realtime.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subscribeErr != nil {
		return nil, c.subscribeErr
	}

	ch := realtime.NewLocalChannel(name, p, onChange, onStatus, c.unregister)
	c.channels[ch] = struct{}{}
	ch.Status(realtime.StatusSubscribed)
	return ch, nil
}

func (c *Client) unregister(ch *realtime.LocalChannel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.channels, ch)
}

// Channels returns the open channels, ordered by name.
func (c *Client) Channels() []*realtime.LocalChannel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*realtime.LocalChannel, 0, len(c.channels))
	for ch := range c.channels {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Disconnect reports status on every open channel, simulating a transport failure.
func (c *Client) Disconnect(status realtime.Status) {
	for _, ch := range c.Channels() {
		ch.Status(status)
	}
}

func (c *Client) Fetch(_ context.Context, tableName string, filter authurl.Filter) ([]realtime.Row, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.fetchErr[tableName]; err != nil {
		return nil, err
	}
	t, ok := c.tables[tableName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownTable, tableName)
	}
	rows := make([]realtime.Row, 0, len(t.order))
	for _, id := range t.order {
		row := t.rows[id]
		if filter.Match(row) {
			rows = append(rows, copyRow(row))
		}
	}
	return rows, nil
}

// Upsert inserts or replaces the row with the same "id", emitting INSERT or UPDATE.
func (c *Client) Upsert(_ context.Context, tableName string, row realtime.Row) error {
	id, ok := rowID(row)
	if !ok {
		return fmt.Errorf("upsert %s: row has no id", tableName)
	}

	c.mu.Lock()
	t, ok := c.tables[tableName]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", errors.ErrUnknownTable, tableName)
	}
	change := realtime.Change{
		EventType:  realtime.EventInsert,
		Schema:     t.schema,
		Table:      tableName,
		New:        copyRow(row),
		CommitTime: time.Now(),
	}
	if old, exists := t.rows[id]; exists {
		change.EventType = realtime.EventUpdate
		change.Old = copyRow(old)
	} else {
		t.order = append(t.order, id)
	}
	t.rows[id] = copyRow(row)
	c.emitLocked(change)
	c.mu.Unlock()
	return nil
}

// Delete removes the row with id, emitting DELETE.
func (c *Client) Delete(_ context.Context, tableName string, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tables[tableName]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownTable, tableName)
	}
	old, exists := t.rows[id]
	if !exists {
		return fmt.Errorf("%w: %s/%s", errors.ErrNotFound, tableName, id)
	}
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	c.emitLocked(realtime.Change{
		EventType:  realtime.EventDelete,
		Schema:     t.schema,
		Table:      tableName,
		Old:        copyRow(old),
		CommitTime: time.Now(),
	})
	return nil
}

// emitLocked queues change on matching channels while c.mu is held, which keeps
// per-channel order equal to write order.
func (c *Client) emitLocked(change realtime.Change) {
	for ch := range c.channels {
		ch.Offer(change)
	}
}

func rowID(row realtime.Row) (string, bool) {
	v, ok := row["id"]
	if !ok || v == nil {
		return "", false
	}
	id := fmt.Sprint(v)
	return id, id != ""
}

func copyRow(row realtime.Row) realtime.Row {
	if row == nil {
		return nil
	}
	out := make(realtime.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
