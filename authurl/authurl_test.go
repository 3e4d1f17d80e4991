package authurl_test

import (
	stderrors "errors"
	"net/url"
	"testing"

	"github.com/jrsteele09/go-portfolio/authurl"
	"github.com/jrsteele09/go-portfolio/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestLoginURL(t *testing.T) {
	t.Run("encodes redirect uri", func(t *testing.T) {
		got, err := authurl.LoginURL("https://hub.example.com/", "portfolio", "https://me.dev/admin/callback?x=1")
		require.NoError(t, err)
		require.Equal(t, "https://hub.example.com/login?client_id=portfolio&redirect_uri=https%3A%2F%2Fme.dev%2Fadmin%2Fcallback%3Fx%3D1", got)
	})

	t.Run("missing values", func(t *testing.T) {
		_, err := authurl.LoginURL("", "portfolio", "")
		require.ErrorIs(t, err, errors.ErrMissingConfig)
		require.Contains(t, err.Error(), "auth base URL")
		require.Contains(t, err.Error(), "redirect URI")
		require.NotContains(t, err.Error(), "client id")
	})
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    authurl.Credential
		wantErr error
	}{
		{name: "no params", query: "", wantErr: errors.ErrNoCredential},
		{name: "unrelated params", query: "state=xyz", wantErr: errors.ErrNoCredential},
		{name: "access token", query: "access_token=abc123", want: authurl.Credential{Kind: authurl.KindAccessToken, Value: "abc123"}},
		{name: "token beats access token", query: "access_token=a&token=t", want: authurl.Credential{Kind: authurl.KindToken, Value: "t"}},
		{name: "access token beats code", query: "code=c&access_token=a", want: authurl.Credential{Kind: authurl.KindAccessToken, Value: "a"}},
		{name: "code only", query: "code=c0de", want: authurl.Credential{Kind: authurl.KindAuthorizationCode, Value: "c0de"}},
		{name: "id token", query: "id_token=jwt", want: authurl.Credential{Kind: authurl.KindIDToken, Value: "jwt"}},
		{name: "blank token falls through", query: "token=&code=c", want: authurl.Credential{Kind: authurl.KindAuthorizationCode, Value: "c"}},
		{name: "present but blank", query: "token=&access_token=%20", wantErr: errors.ErrMalformedCallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := authurl.ParseCallback(q)
			if tt.wantErr != nil {
				require.True(t, stderrors.Is(err, tt.wantErr), "got %v", err)
				require.Equal(t, authurl.Credential{}, got)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilter(t *testing.T) {
	f, err := authurl.ParseFilter("id=eq.3")
	require.NoError(t, err)
	require.Equal(t, authurl.Filter{Column: "id", Value: "3"}, f)
	require.Equal(t, "id=eq.3", f.String())
	require.True(t, f.Match(map[string]any{"id": float64(3)}))
	require.False(t, f.Match(map[string]any{"id": "4"}))
	require.False(t, f.Match(map[string]any{}))

	empty, err := authurl.ParseFilter("")
	require.NoError(t, err)
	require.True(t, empty.IsZero())
	require.True(t, empty.Match(nil))

	for _, bad := range []string{"id", "=eq.1", "id=gt.1", "id=1"} {
		_, err := authurl.ParseFilter(bad)
		require.ErrorIs(t, err, errors.ErrInvalidFilter, bad)
	}
}
