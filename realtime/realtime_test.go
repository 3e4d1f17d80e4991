package realtime_test

import (
	"testing"

	"github.com/jrsteele09/go-portfolio/authurl"
	"github.com/jrsteele09/go-portfolio/realtime"
	"github.com/stretchr/testify/require"
)

func TestParams_Matches(t *testing.T) {
	site := realtime.Params{Table: "site_settings", Filter: authurl.MustParseFilter("id=eq.site")}

	tests := []struct {
		name   string
		params realtime.Params
		change realtime.Change
		want   bool
	}{
		{"other table", site, realtime.Change{EventType: realtime.EventUpdate, Table: "projects", New: realtime.Row{"id": "site"}}, false},
		{"filtered row", site, realtime.Change{EventType: realtime.EventUpdate, Table: "site_settings", New: realtime.Row{"id": "site"}}, true},
		{"other row", site, realtime.Change{EventType: realtime.EventUpdate, Table: "site_settings", New: realtime.Row{"id": "x"}}, false},
		{"delete checks old row", site, realtime.Change{EventType: realtime.EventDelete, Table: "site_settings", Old: realtime.Row{"id": "site"}}, true},
		{"row without column", site, realtime.Change{EventType: realtime.EventUpdate, Table: "site_settings", New: realtime.Row{"title": "t"}}, false},
		{"no row body", site, realtime.Change{EventType: realtime.EventUpdate, Table: "site_settings"}, true},
		{"truncated without column", site, realtime.Change{EventType: realtime.EventUpdate, Table: "site_settings", New: realtime.Row{}, Truncated: true}, true},
		{"truncated other id", site, realtime.Change{EventType: realtime.EventUpdate, Table: "site_settings", New: realtime.Row{"id": "x"}, Truncated: true}, false},
		{"unfiltered", realtime.Params{Table: "projects"}, realtime.Change{EventType: realtime.EventInsert, Table: "projects"}, true},
		{"event mismatch", realtime.Params{Table: "projects", Event: realtime.EventDelete}, realtime.Change{EventType: realtime.EventInsert, Table: "projects"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.params.Matches(tt.change))
		})
	}
}
