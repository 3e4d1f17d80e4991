package server

import (
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-portfolio/content"
	"github.com/jrsteele09/go-portfolio/guard"
	"github.com/jrsteele09/go-portfolio/internal/config"
	"github.com/jrsteele09/go-portfolio/internal/errors"
	"github.com/jrsteele09/go-portfolio/session"
	"github.com/jrsteele09/go-portfolio/users"
)

type Server struct {
	env         string // Environment ("DEV" or "PROD")
	mux         *http.ServeMux
	routes      []string
	config      config.Config
	content     *content.Service
	logger      zerolog.Logger
	templates   templates
	fingerprint *Fingerprinter

	loginConfig session.LoginConfig
	exchanger   session.Exchanger
	resolver    users.RoleResolver
	mailer      Mailer
	guard       *guard.Guard

	stop     chan struct{}
	stopOnce sync.Once
}

type Option func(*Server)

// WithExchanger exchanges callback credentials with the login hub before storing them.
func WithExchanger(e session.Exchanger) Option {
	return func(s *Server) { s.exchanger = e }
}

// WithRoleResolver overrides the role resolver built from the JWT secret.
func WithRoleResolver(r users.RoleResolver) Option {
	return func(s *Server) { s.resolver = r }
}

// WithMailer enables the contact form.
func WithMailer(m Mailer) Option {
	return func(s *Server) { s.mailer = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func New(cfg config.Config, svc *content.Service, opts ...Option) (*Server, error) {
	if svc == nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "[Server New] content service is required")
	}

	s := &Server{
		env:     cfg.GetEnv(),
		mux:     http.NewServeMux(),
		config:  cfg,
		content: svc,
		logger:  log.Logger,
		loginConfig: session.LoginConfig{
			AuthBaseURL: cfg.GetAuthBaseURL(),
			ClientID:    cfg.GetAuthClientID(),
			RedirectURI: cfg.GetAuthRedirectURI(),
			Timeout:     cfg.GetLoginTimeout(),
		},
		stop: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = s.defaultResolver()
	}

	var err error
	if s.templates, err = parseTemplates(); err != nil {
		return nil, errors.Wrapf(err, "[Server New] parse templates")
	}
	if s.fingerprint, err = NewFingerprinter(cfg.GetFingerprintKey()); err != nil {
		return nil, errors.Wrapf(err, "[Server New] fingerprint key")
	}

	s.guard = guard.New(s.gateFor,
		guard.WithRoles(s.resolver, users.RoleAdmin, users.RoleTeacher),
		guard.WithLogger(s.logger),
	)

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close ends open event streams so a graceful shutdown does not wait on them.
func (s *Server) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// defaultResolver reads roles from JWT claims. Treating every credential as an admin
// needs both DEV and AUTH_DEV_ADMIN, and never applies once a secret is set.
func (s *Server) defaultResolver() users.RoleResolver {
	secret := s.config.GetJWTSecret()
	if secret == "" && s.env == config.EnvDev && s.config.GetDevAdmin() {
		s.logger.Warn().Msg("AUTH_DEV_ADMIN set without AUTH_JWT_SECRET, every login is treated as admin")
		return users.StaticRoleResolver(users.RoleAdmin)
	}
	return users.NewJWTRoleResolver(secret)
}

// gateFor builds the session gate for one request, backed by its cookies.
func (s *Server) gateFor(w http.ResponseWriter, r *http.Request) *session.Gate {
	store := session.NewCookieStore(w, r, s.loginConfig.Timeout)
	opts := []session.Option{session.WithLogger(s.logger)}
	if s.exchanger != nil {
		opts = append(opts, session.WithExchanger(s.exchanger))
	}
	return session.NewGate(s.loginConfig, store, session.NewHTTPNavigator(w, r), opts...)
}

func (s *Server) logRoutes() {
	if s.env != config.EnvDev {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path, ok := strings.Cut(route, " ")
		if !ok {
			method, path = "", route
		}
		s.logger.Debug().Msgf("[%-19s] %s", colourMethod(method), path)
	}
}
