package authurl

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-portfolio/internal/errors"
)

// Filter restricts realtime notifications and fetches to rows where Column equals Value.
// The zero Filter matches every row.
type Filter struct {
	Column string
	Value  string
}

// ParseFilter parses the "column=eq.value" row filter syntax.
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Filter{}, nil
	}
	column, rest, ok := strings.Cut(s, "=")
	if !ok || column == "" {
		return Filter{}, fmt.Errorf("%w: %q", errors.ErrInvalidFilter, s)
	}
	op, value, ok := strings.Cut(rest, ".")
	if !ok {
		return Filter{}, fmt.Errorf("%w: %q", errors.ErrInvalidFilter, s)
	}
	if op != "eq" {
		return Filter{}, fmt.Errorf("%w: unsupported operator %q", errors.ErrInvalidFilter, op)
	}
	return Filter{Column: column, Value: value}, nil
}

// MustParseFilter is ParseFilter for literals; it panics on a bad filter.
func MustParseFilter(s string) Filter {
	f, err := ParseFilter(s)
	if err != nil {
		panic(err)
	}
	return f
}

// IsZero reports whether the filter matches every row.
func (f Filter) IsZero() bool {
	return f.Column == ""
}

func (f Filter) String() string {
	if f.IsZero() {
		return ""
	}
	return f.Column + "=eq." + f.Value
}

// Match reports whether row satisfies the filter. Values are compared by their
// fmt representation so numeric ids match their string form.
func (f Filter) Match(row map[string]any) bool {
	if f.IsZero() {
		return true
	}
	v, ok := row[f.Column]
	if !ok || v == nil {
		return false
	}
	return fmt.Sprint(v) == f.Value
}
