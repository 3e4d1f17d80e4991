package pgrealtime

import (
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jrsteele09/go-portfolio/authurl"
	"github.com/jrsteele09/go-portfolio/internal/errors"
	"github.com/jrsteele09/go-portfolio/realtime"
	"github.com/stretchr/testify/require"
)

func TestDecodeChange(t *testing.T) {
	change, err := decodeChange(`{"type":"UPDATE","schema":"public","table":"site_settings","new":{"id":"site","title":"b"},"old":{"id":"site","title":"a"},"commit_time":"2026-01-02T03:04:05.123456+00:00"}`)
	require.NoError(t, err)
	require.Equal(t, realtime.EventUpdate, change.EventType)
	require.Equal(t, "site_settings", change.Table)
	require.Equal(t, "b", change.New["title"])
	require.Equal(t, "a", change.Old["title"])
	require.Equal(t, 2026, change.CommitTime.Year())

	_, err = decodeChange("not json")
	require.Error(t, err)
}

func TestTableIdent(t *testing.T) {
	require.Equal(t, `"public"."projects"`, tableIdent("projects"))
	require.Equal(t, `"content"."projects"`, tableIdent("content.projects"))
	require.Equal(t, `"public"."we""ird"`, tableIdent(`we"ird`))
}

func TestMapError(t *testing.T) {
	undefined := fmt.Errorf("fetch x: %w", &pgconn.PgError{Code: pgerrcode.UndefinedTable, Message: "relation does not exist"})
	require.ErrorIs(t, mapError(undefined), errors.ErrUnknownTable)

	other := fmt.Errorf("fetch x: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation})
	require.NotErrorIs(t, mapError(other), errors.ErrUnknownTable)
}

func TestDispatch_RoutesToMatchingChannels(t *testing.T) {
	c := &Client{channels: make(map[*realtime.LocalChannel]struct{}), hub: nil}
	got := make(chan realtime.Change, 2)
	ch := realtime.NewLocalChannel("projects-1", realtime.Params{Table: "projects"}, func(change realtime.Change) { got <- change }, nil, c.unregister)
	c.channels[ch] = struct{}{}
	defer ch.Close()

	c.dispatch(&pgconn.Notification{Channel: ChangesChannel, Payload: `{"type":"INSERT","schema":"public","table":"education","new":{"id":"1"}}`})
	c.dispatch(&pgconn.Notification{Channel: ChangesChannel, Payload: `{"type":"INSERT","schema":"public","table":"projects","new":{"id":"2"}}`})

	change := <-got
	require.Equal(t, "2", change.New["id"])
	require.Empty(t, got)
}

func TestDispatch_OversizedChangesReachFilteredChannels(t *testing.T) {
	c := &Client{channels: make(map[*realtime.LocalChannel]struct{})}
	got := make(chan realtime.Change, 4)
	params := realtime.Params{Table: "site_settings", Filter: authurl.MustParseFilter("id=eq.site")}
	ch := realtime.NewLocalChannel("site_settings-1", params, func(change realtime.Change) { got <- change }, nil, c.unregister)
	c.channels[ch] = struct{}{}
	defer ch.Close()

	// Truncated payloads for other rows are still ruled out by id.
	c.dispatch(&pgconn.Notification{Channel: ChangesChannel, Payload: `{"type":"UPDATE","schema":"public","table":"site_settings","new":{"id":"other"},"old":{"id":"other"},"truncated":true}`})
	c.dispatch(&pgconn.Notification{Channel: ChangesChannel, Payload: `{"type":"UPDATE","schema":"public","table":"site_settings","new":{"id":"site"},"old":{"id":"site"},"truncated":true}`})
	c.dispatch(&pgconn.Notification{Channel: ChangesChannel, Payload: `{"type":"UPDATE","schema":"public","table":"site_settings"}`})

	first := <-got
	require.True(t, first.Truncated)
	require.Equal(t, "site", first.New["id"])

	second := <-got
	require.Nil(t, second.New)
	require.Empty(t, got)
}
