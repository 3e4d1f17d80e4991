package server

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprinter(t *testing.T) {
	a, err := NewFingerprinter("key-a")
	require.NoError(t, err)
	b, err := NewFingerprinter("key-b")
	require.NoError(t, err)

	require.Len(t, a.Hash("203.0.113.7"), 16)
	require.Equal(t, a.Hash("203.0.113.7"), a.Hash("203.0.113.7"))
	require.NotEqual(t, a.Hash("203.0.113.7"), a.Hash("203.0.113.8"))
	require.NotEqual(t, a.Hash("203.0.113.7"), b.Hash("203.0.113.7"))

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.7:5555"
	require.Equal(t, a.Hash("203.0.113.7"), a.Of(r))

	r.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	require.Equal(t, a.Hash("198.51.100.1"), a.Of(r))

	random, err := NewFingerprinter("")
	require.NoError(t, err)
	require.NotEqual(t, a.Hash("x"), random.Hash("x"))
}

func TestHeaderSafe(t *testing.T) {
	require.Equal(t, "Sam  Bcc: x@y", headerSafe("Sam\r\nBcc: x@y"))
}
