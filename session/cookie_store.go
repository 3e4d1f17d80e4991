package session

import (
	"encoding/base64"
	"net/http"
	"time"
)

const (
	// CredentialCookieName holds the opaque credential for the admin boundary
	CredentialCookieName = "portfolio_credential"
	// PendingCookieName marks an external login round trip in progress
	PendingCookieName = "portfolio_login_pending"

	// credentialMaxAge keeps the credential across browser restarts; it is not an expiry check
	credentialMaxAge = 30 * 24 * 3600
)

// CookieStore is a Store bound to one HTTP request/response pair. Writes are applied to
// the response and also remembered so later reads in the same request see them.
// The credential is base64url encoded on the wire so any byte survives the cookie.
type CookieStore struct {
	w      http.ResponseWriter
	r      *http.Request
	secure bool
	maxAge int

	credential *string
	pending    *time.Time
}

var _ Store = (*CookieStore)(nil)

// NewCookieStore creates a store for one request. maxAge bounds the pending cookie.
func NewCookieStore(w http.ResponseWriter, r *http.Request, pendingMaxAge time.Duration) *CookieStore {
	return &CookieStore{
		w:      w,
		r:      r,
		secure: getScheme(r) == "https",
		maxAge: int(pendingMaxAge.Seconds()),
	}
}

func (c *CookieStore) Credential() (string, bool) {
	if c.credential != nil {
		return *c.credential, *c.credential != ""
	}
	cookie, err := c.r.Cookie(CredentialCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil || len(raw) == 0 {
		return "", false
	}
	return string(raw), true
}

// EncodeCredential returns the cookie value stored for credential.
func EncodeCredential(credential string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(credential))
}

func (c *CookieStore) SetCredential(credential string) error {
	c.credential = &credential
	c.setCookie(CredentialCookieName, EncodeCredential(credential), credentialMaxAge)
	return nil
}

func (c *CookieStore) ClearCredential() error {
	empty := ""
	c.credential = &empty
	c.setCookie(CredentialCookieName, "", -1)
	return nil
}

func (c *CookieStore) PendingUntil() (time.Time, bool) {
	if c.pending != nil {
		return *c.pending, !c.pending.IsZero()
	}
	cookie, err := c.r.Cookie(PendingCookieName)
	if err != nil {
		return time.Time{}, false
	}
	return parseDeadline(cookie.Value)
}

func (c *CookieStore) SetPendingUntil(deadline time.Time) error {
	c.pending = &deadline
	c.setCookie(PendingCookieName, formatDeadline(deadline), c.maxAge)
	return nil
}

func (c *CookieStore) ClearPending() error {
	zero := time.Time{}
	c.pending = &zero
	c.setCookie(PendingCookieName, "", -1)
	return nil
}

func (c *CookieStore) setCookie(name, value string, maxAge int) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// getScheme determines the scheme (http/https) of the request
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
