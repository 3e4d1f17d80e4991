// Package authurl holds the URL primitives used by the session gate: the external
// login URL, the callback parameter contract and realtime row filters.
package authurl

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-portfolio/internal/errors"
)

// LoginPath is appended to the external auth base URL.
const LoginPath = "/login"

// LoginURL builds {authBaseURL}/login?client_id={id}&redirect_uri={urlencoded(redirectURI)}.
func LoginURL(authBaseURL, clientID, redirectURI string) (string, error) {
	var missing []string
	if strings.TrimSpace(authBaseURL) == "" {
		missing = append(missing, "auth base URL")
	}
	if strings.TrimSpace(clientID) == "" {
		missing = append(missing, "client id")
	}
	if strings.TrimSpace(redirectURI) == "" {
		missing = append(missing, "redirect URI")
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", errors.ErrMissingConfig, strings.Join(missing, ", "))
	}

	base := strings.TrimRight(authBaseURL, "/")
	if _, err := url.Parse(base); err != nil {
		return "", errors.Wrapf(errors.ErrInvalidConfig, "auth base URL %q: %v", base, err)
	}

	// Built by hand so the parameter order is stable.
	return base + LoginPath +
		"?client_id=" + url.QueryEscape(clientID) +
		"&redirect_uri=" + url.QueryEscape(redirectURI), nil
}
