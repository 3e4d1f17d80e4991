package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-portfolio/session"
	"github.com/stretchr/testify/require"
)

func TestCookieStore(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.AddCookie(&http.Cookie{Name: session.CredentialCookieName, Value: session.EncodeCredential("abc123")})
	w := httptest.NewRecorder()

	store := session.NewCookieStore(w, r, time.Minute)
	cred, ok := store.Credential()
	require.True(t, ok)
	require.Equal(t, "abc123", cred)

	require.NoError(t, store.ClearCredential())
	_, ok = store.Credential()
	require.False(t, ok, "cleared credential must be visible within the same request")

	deadline := time.Unix(1_800_000_000, 0)
	require.NoError(t, store.SetPendingUntil(deadline))
	got, ok := store.PendingUntil()
	require.True(t, ok)
	require.True(t, deadline.Equal(got))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)
	require.Equal(t, session.CredentialCookieName, cookies[0].Name)
	require.Equal(t, -1, cookies[0].MaxAge)
	require.True(t, cookies[0].HttpOnly)
	require.Equal(t, session.PendingCookieName, cookies[1].Name)
	require.Equal(t, "1800000000", cookies[1].Value)
}

func TestCookieStore_CredentialSurvivesCookieUnsafeBytes(t *testing.T) {
	const token = `hub;token="a\\b" ,x`
	w := httptest.NewRecorder()
	store := session.NewCookieStore(w, httptest.NewRequest(http.MethodGet, "/admin/callback", nil), time.Minute)
	require.NoError(t, store.SetCredential(token))

	written := w.Result().Cookies()
	require.Len(t, written, 1)

	next := httptest.NewRequest(http.MethodGet, "/admin", nil)
	next.AddCookie(written[0])
	cred, ok := session.NewCookieStore(httptest.NewRecorder(), next, time.Minute).Credential()
	require.True(t, ok)
	require.Equal(t, token, cred)
}

func TestCookieStore_UndecodableCredentialIsAbsent(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.AddCookie(&http.Cookie{Name: session.CredentialCookieName, Value: "not*base64"})
	_, ok := session.NewCookieStore(httptest.NewRecorder(), r, time.Minute).Credential()
	require.False(t, ok)
}
