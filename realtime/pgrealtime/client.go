// Package pgrealtime implements the realtime contract on a hosted Postgres: row changes
// arrive through LISTEN/NOTIFY and reads go straight to the tables.
package pgrealtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-portfolio/authurl"
	"github.com/jrsteele09/go-portfolio/broadcast"
	"github.com/jrsteele09/go-portfolio/internal/errors"
	"github.com/jrsteele09/go-portfolio/realtime"
)

const (
	// ChangesChannel carries row change payloads
	ChangesChannel = "portfolio_changes"
	// BroadcastChannel carries broadcast topics as payloads
	BroadcastChannel = "portfolio_broadcast"

	reconnectDelay = 3 * time.Second
)

// Client is a realtime.Client, realtime.Writer and realtime.Broadcaster on Postgres.
type Client struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
	hub    *broadcast.Hub

	mu        sync.RWMutex
	channels  map[*realtime.LocalChannel]struct{}
	listening bool
}

var (
	_ realtime.Client      = (*Client)(nil)
	_ realtime.Writer      = (*Client)(nil)
	_ realtime.Broadcaster = (*Client)(nil)
)

type Option func(*Client)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(pool *pgxpool.Pool, opts ...Option) *Client {
	c := &Client{
		pool:     pool,
		logger:   log.Logger,
		hub:      broadcast.NewHub(),
		channels: make(map[*realtime.LocalChannel]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect opens a pool for databaseURL and pings it.
func Connect(ctx context.Context, databaseURL string, connectTimeout time.Duration) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolCfg.ConnConfig.ConnectTimeout = connectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Migrate installs the change notification function.
func (c *Client) Migrate(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, notifyFunctionSQL); err != nil {
		return fmt.Errorf("install notify function: %w", err)
	}
	return nil
}

// Watch attaches the change trigger to table.
func (c *Client) Watch(ctx context.Context, schema, table string) error {
	if schema == "" {
		schema = realtime.DefaultSchema
	}
	ident := pgx.Identifier{schema, table}.Sanitize()
	if _, err := c.pool.Exec(ctx, fmt.Sprintf(watchTableSQL, ident)); err != nil {
		return mapError(fmt.Errorf("watch %s: %w", ident, err))
	}
	return nil
}

// Run holds the LISTEN connection until ctx ends, reconnecting after failures. Every
// open channel sees StatusChannelError while the listener is down and StatusSubscribed
// once it is back.
func (c *Client) Run(ctx context.Context) {
	for {
		err := c.listen(ctx)
		c.setListening(false)
		if ctx.Err() != nil {
			return
		}
		c.logger.Error().Err(err).Msg("realtime listener stopped, reconnecting")
		c.broadcastStatus(realtime.StatusChannelError)

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *Client) listen(ctx context.Context) error {
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listener connection: %w", err)
	}
	defer conn.Release()

	for _, channel := range []string{ChangesChannel, BroadcastChannel} {
		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
			return fmt.Errorf("listen %s: %w", channel, err)
		}
	}
	c.setListening(true)
	c.broadcastStatus(realtime.StatusSubscribed)
	c.logger.Info().Msg("realtime listener connected")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		c.dispatch(n)
	}
}

func (c *Client) dispatch(n *pgconn.Notification) {
	switch n.Channel {
	case BroadcastChannel:
		c.hub.Signal(n.Payload)
	case ChangesChannel:
		change, err := decodeChange(n.Payload)
		if err != nil {
			c.logger.Warn().Err(err).Msg("undecodable change notification")
			return
		}
		c.mu.RLock()
		defer c.mu.RUnlock()
		for ch := range c.channels {
			ch.Offer(change)
		}
	}
}

func decodeChange(payload string) (realtime.Change, error) {
	var change realtime.Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		return realtime.Change{}, fmt.Errorf("decode change: %w", err)
	}
	return change, nil
}

func (c *Client) setListening(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listening = v
}

func (c *Client) broadcastStatus(st realtime.Status) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for ch := range c.channels {
		ch.Status(st)
	}
}

func (c *Client) Subscribe(_ context.Context, name string, p realtime.Params, onChange func(realtime.Change), onStatus func(realtime.Status)) (realtime.Channel, error) {
	ch := realtime.NewLocalChannel(name, p, onChange, onStatus, c.unregister)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels[ch] = struct{}{}
	if c.listening {
		ch.Status(realtime.StatusSubscribed)
	}
	return ch, nil
}

func (c *Client) unregister(ch *realtime.LocalChannel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.channels, ch)
}

func (c *Client) Fetch(ctx context.Context, table string, filter authurl.Filter) ([]realtime.Row, error) {
	query := "SELECT row_to_json(t) FROM " + tableIdent(table) + " t"
	var args []any
	if !filter.IsZero() {
		query += " WHERE t." + pgx.Identifier{filter.Column}.Sanitize() + "::text = $1"
		args = append(args, filter.Value)
	}

	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(fmt.Errorf("fetch %s: %w", table, err))
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[map[string]any])
	if err != nil {
		return nil, mapError(fmt.Errorf("fetch %s: %w", table, err))
	}
	return out, nil
}

func (c *Client) Upsert(ctx context.Context, table string, row realtime.Row) error {
	if _, ok := row["id"]; !ok {
		return fmt.Errorf("upsert %s: row has no id", table)
	}

	cols := make([]string, 0, len(row))
	for k := range row {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	idents := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	updates := make([]string, 0, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		idents[i] = pgx.Identifier{col}.Sanitize()
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row[col]
		if col != "id" {
			updates = append(updates, idents[i]+" = EXCLUDED."+idents[i])
		}
	}

	query := "INSERT INTO " + tableIdent(table) +
		" (" + strings.Join(idents, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ")" +
		" ON CONFLICT (id) DO "
	if len(updates) == 0 {
		query += "NOTHING"
	} else {
		query += "UPDATE SET " + strings.Join(updates, ", ")
	}

	if _, err := c.pool.Exec(ctx, query, args...); err != nil {
		return mapError(fmt.Errorf("upsert %s: %w", table, err))
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, table string, id string) error {
	tag, err := c.pool.Exec(ctx, "DELETE FROM "+tableIdent(table)+" WHERE id::text = $1", id)
	if err != nil {
		return mapError(fmt.Errorf("delete %s/%s: %w", table, id, err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s", errors.ErrNotFound, table, id)
	}
	return nil
}

// Publish signals topic to every process listening on this database.
func (c *Client) Publish(ctx context.Context, topic string) error {
	if _, err := c.pool.Exec(ctx, "SELECT pg_notify($1, $2)", BroadcastChannel, topic); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (c *Client) Listen(topic string, fn func()) (cancel func()) {
	return c.hub.Listen(topic, fn)
}

// tableIdent quotes a "schema.table" or bare table name.
func tableIdent(table string) string {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return pgx.Identifier{schema, name}.Sanitize()
	}
	return pgx.Identifier{realtime.DefaultSchema, table}.Sanitize()
}

func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return fmt.Errorf("%w: %s", errors.ErrUnknownTable, err.Error())
	}
	return err
}
