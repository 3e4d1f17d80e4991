// Package guard gates HTTP handlers behind the session gate.
package guard

import (
	"context"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-portfolio/session"
	"github.com/jrsteele09/go-portfolio/users"
)

// GateFactory builds the session gate for one request.
type GateFactory func(w http.ResponseWriter, r *http.Request) *session.Gate

type contextKey string

const (
	contextKeyRole       contextKey = "role"
	contextKeyCredential contextKey = "credential"
)

// RoleFromContext returns the role resolved by the guard, RoleUnknown when no role check ran.
func RoleFromContext(ctx context.Context) users.Role {
	role, _ := ctx.Value(contextKeyRole).(users.Role)
	return role
}

// CredentialFromContext returns the credential the guard admitted.
func CredentialFromContext(ctx context.Context) string {
	cred, _ := ctx.Value(contextKeyCredential).(string)
	return cred
}

// Guard renders protected handlers only for authenticated visitors.
type Guard struct {
	gates    GateFactory
	roles    users.Roles
	resolver users.RoleResolver
	logger   zerolog.Logger
}

type Option func(*Guard)

// WithRoles restricts access to the permitted roles, resolved from the credential.
func WithRoles(resolver users.RoleResolver, roles ...users.Role) Option {
	return func(g *Guard) {
		g.resolver = resolver
		g.roles = roles
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(g *Guard) { g.logger = l }
}

func New(gates GateFactory, opts ...Option) *Guard {
	g := &Guard{gates: gates, logger: log.Logger}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Middleware returns the guard in the server's middleware shape. Each request is one
// mount: login is triggered at most once, and not again while a login is pending.
func (g *Guard) Middleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			gate := g.gates(w, r)

			switch gate.State() {
			case session.PendingExternalAuth:
				renderPage(w, http.StatusOK, loadingPage)
				return
			case session.Unauthenticated:
				if err := gate.Login(); err != nil {
					renderPage(w, http.StatusInternalServerError, configErrorPage)
				}
				return
			case session.Authenticated:
				// handled below
			default:
				w.WriteHeader(http.StatusForbidden)
				return
			}

			cred, _ := gate.Credential()
			ctx := context.WithValue(r.Context(), contextKeyCredential, cred)

			if g.resolver != nil {
				role, err := g.resolver.Resolve(cred)
				if err != nil || !g.roles.Permits(role) {
					g.logger.Warn().Str("event", "security").Err(err).Str("role", role.String()).Str("path", r.URL.Path).Msg("role not permitted")
					w.WriteHeader(http.StatusForbidden)
					return
				}
				ctx = context.WithValue(ctx, contextKeyRole, role)
			}

			next(w, r.WithContext(ctx))
		}
	}
}

var (
	loadingPage = template.Must(template.New("loading").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><meta http-equiv="refresh" content="3"><title>Signing in</title></head>
<body><p>Signing in&hellip;</p></body></html>`))

	configErrorPage = template.Must(template.New("config-error").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Login unavailable</title></head>
<body><p>Admin login is not configured.</p></body></html>`))
)

func renderPage(w http.ResponseWriter, status int, tmpl *template.Template) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = tmpl.Execute(w, nil)
}
