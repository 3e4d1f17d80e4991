// Package session implements the admin session gate: the external login round trip,
// the callback exchange and logout.
package session

import (
	"context"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-portfolio/authurl"
	"github.com/jrsteele09/go-portfolio/internal/errors"
	"github.com/jrsteele09/go-portfolio/internal/logging"
)

const (
	// RouteHome is where failed callbacks and logouts land
	RouteHome = "/"
	// RouteAdmin is where successful callbacks land
	RouteAdmin = "/admin"

	DefaultLoginTimeout = 2 * time.Minute
)

// State of the visitor relative to the admin boundary.
type State int

const (
	Unauthenticated State = iota
	PendingExternalAuth
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case PendingExternalAuth:
		return "pending_external_auth"
	case Authenticated:
		return "authenticated"
	default:
		return "invalid"
	}
}

// LoginConfig holds the external login hub coordinates.
type LoginConfig struct {
	AuthBaseURL string
	ClientID    string
	RedirectURI string
	// Timeout bounds the external round trip; after it the pending marker is ignored.
	Timeout time.Duration
}

// Exchanger turns a callback credential into the value that is stored.
type Exchanger interface {
	Exchange(ctx context.Context, cred authurl.Credential) (string, error)
}

// Gate answers whether a visitor may pass the admin boundary and performs the login
// round trip. A Gate is cheap; HTTP code builds one per request.
type Gate struct {
	cfg       LoginConfig
	store     Store
	nav       Navigator
	exchanger Exchanger
	logger    zerolog.Logger
	now       func() time.Time
}

type Option func(*Gate)

// WithExchanger exchanges callback credentials before they are stored.
func WithExchanger(e Exchanger) Option {
	return func(g *Gate) { g.exchanger = e }
}

func WithLogger(l zerolog.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

func NewGate(cfg LoginConfig, store Store, nav Navigator, opts ...Option) *Gate {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultLoginTimeout
	}
	g := &Gate{
		cfg:    cfg,
		store:  store,
		nav:    nav,
		logger: log.Logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsAuthenticated reports whether a credential is present in the store. The credential is
// not verified and has no local expiry.
func (g *Gate) IsAuthenticated() bool {
	_, ok := g.store.Credential()
	return ok
}

// Credential returns the stored credential.
func (g *Gate) Credential() (string, bool) {
	return g.store.Credential()
}

func (g *Gate) State() State {
	if g.IsAuthenticated() {
		return Authenticated
	}
	if deadline, ok := g.store.PendingUntil(); ok && g.now().Before(deadline) {
		return PendingExternalAuth
	}
	return Unauthenticated
}

// Login sends the visitor to the external login hub. A missing login setting is
// returned as errors.ErrMissingConfig and nothing navigates.
func (g *Gate) Login() error {
	loginURL, err := authurl.LoginURL(g.cfg.AuthBaseURL, g.cfg.ClientID, g.cfg.RedirectURI)
	if err != nil {
		g.logger.Error().Err(err).Msg("login is not configured")
		return err
	}
	if err := g.store.SetPendingUntil(g.now().Add(g.cfg.Timeout)); err != nil {
		return errors.Wrapf(err, "[Gate Login] record pending login")
	}
	g.logger.Debug().Str("url", loginURL).Msg("redirecting to external login")
	g.nav.Navigate(loginURL)
	return nil
}

// HandleCallback consumes the login hub's redirect. On any failure the visitor is sent
// home without a credential being written.
func (g *Gate) HandleCallback(ctx context.Context, query url.Values) error {
	cred, err := authurl.ParseCallback(query)
	if err != nil {
		return g.rejectCallback(err, "callback without usable credential")
	}

	value := cred.Value
	if g.exchanger != nil {
		value, err = g.exchanger.Exchange(ctx, cred)
		if err != nil {
			return g.rejectCallback(errors.Wrapf(errors.ErrExchangeFailed, "%s: %v", cred.Kind, err), "credential exchange failed")
		}
		if value == "" {
			return g.rejectCallback(errors.ErrExchangeFailed, "credential exchange returned nothing")
		}
	}

	if err := g.store.SetCredential(value); err != nil {
		g.logger.Error().Err(err).Msg("failed to store credential")
		g.nav.Navigate(RouteHome)
		return errors.Wrapf(err, "[Gate HandleCallback] store credential")
	}
	_ = g.store.ClearPending()

	g.logger.Info().Str("kind", cred.Kind.String()).Msg("admin session established")
	g.nav.Navigate(RouteAdmin)
	return nil
}

func (g *Gate) rejectCallback(err error, msg string) error {
	sec := logging.Security(g.logger)
	sec.Warn().Err(err).Msg(msg)
	_ = g.store.ClearPending()
	g.nav.Navigate(RouteHome)
	return err
}

// Logout removes the credential and navigates home. No server-side revocation is made.
func (g *Gate) Logout() error {
	clearErr := g.store.ClearCredential()
	_ = g.store.ClearPending()
	if clearErr != nil {
		g.logger.Error().Err(clearErr).Msg("failed to clear credential")
	}
	g.nav.Navigate(RouteHome)
	return clearErr
}
