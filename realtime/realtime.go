// Package realtime keeps local views of remote tables fresh. A Subscription owns one live
// channel to a table; AutoRefresh and Settings re-fetch through a single refresh queue
// whenever the channel, a broadcast or a poll tick says something changed.
package realtime

import (
	"context"
	"time"

	"github.com/jrsteele09/go-portfolio/authurl"
)

// Event is the kind of row change a subscription listens for.
type Event string

const (
	EventAll    Event = "*"
	EventInsert Event = "INSERT"
	EventUpdate Event = "UPDATE"
	EventDelete Event = "DELETE"
)

// Matches reports whether a change of type t is selected by e.
func (e Event) Matches(t Event) bool {
	return e == EventAll || e == "" || e == t
}

const DefaultSchema = "public"

// Row is one remote record as decoded from JSON.
type Row = map[string]any

// Change is a single remote row notification.
type Change struct {
	EventType  Event     `json:"type"`
	Schema     string    `json:"schema"`
	Table      string    `json:"table"`
	New        Row       `json:"new,omitempty"`
	Old        Row       `json:"old,omitempty"`
	CommitTime time.Time `json:"commit_time"`
	// Truncated marks a change whose row bodies were cut to the primary key because the
	// full payload did not fit the transport.
	Truncated bool `json:"truncated,omitempty"`
}

// Params identify what a subscription listens to. Params are comparable.
type Params struct {
	Table  string
	Event  Event
	Schema string
	Filter authurl.Filter
}

// Normalize fills the defaults for event and schema.
func (p Params) Normalize() Params {
	if p.Event == "" {
		p.Event = EventAll
	}
	if p.Schema == "" {
		p.Schema = DefaultSchema
	}
	return p
}

// Matches reports whether c is selected by p. Deletes are filtered on the old row. A
// change carrying no value for the filtered column is delivered.
func (p Params) Matches(c Change) bool {
	p = p.Normalize()
	if c.Table != p.Table {
		return false
	}
	schema := c.Schema
	if schema == "" {
		schema = DefaultSchema
	}
	if schema != p.Schema || !p.Event.Matches(c.EventType) {
		return false
	}
	row := c.New
	if c.EventType == EventDelete {
		row = c.Old
	}
	if p.Filter.IsZero() {
		return true
	}
	// Without the filtered column there is nothing to rule the change out.
	if _, ok := row[p.Filter.Column]; !ok && (row == nil || c.Truncated) {
		return true
	}
	return p.Filter.Match(row)
}

// Status of a transport channel.
type Status int

const (
	StatusSubscribed Status = iota + 1
	StatusClosed
	StatusChannelError
	StatusTimedOut
)

func (s Status) String() string {
	switch s {
	case StatusSubscribed:
		return "SUBSCRIBED"
	case StatusClosed:
		return "CLOSED"
	case StatusChannelError:
		return "CHANNEL_ERROR"
	case StatusTimedOut:
		return "TIMED_OUT"
	default:
		return "UNKNOWN"
	}
}

// Channel is one open transport subscription. After Close returns no new callback starts.
type Channel interface {
	Name() string
	Close() error
}

// Client is the remote table contract of the hosted backend.
type Client interface {
	Subscribe(ctx context.Context, name string, p Params, onChange func(Change), onStatus func(Status)) (Channel, error)
	Fetch(ctx context.Context, table string, filter authurl.Filter) ([]Row, error)
}

// Writer mutates remote tables. Rows are keyed by their "id" column.
type Writer interface {
	Upsert(ctx context.Context, table string, row Row) error
	Delete(ctx context.Context, table string, id string) error
}

// Broadcaster is a content-agnostic signal between same-origin peers. Receipt alone
// means "re-fetch"; no payload is carried.
type Broadcaster interface {
	Publish(ctx context.Context, topic string) error
	Listen(topic string, fn func()) (cancel func())
}

// FetchFunc loads the current value of a view.
type FetchFunc[T any] func(ctx context.Context) (T, error)
