package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/coreos/go-oidc/v3/oidc"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-portfolio/broadcast"
	"github.com/jrsteele09/go-portfolio/content"
	"github.com/jrsteele09/go-portfolio/internal/config"
	apperrors "github.com/jrsteele09/go-portfolio/internal/errors"
	"github.com/jrsteele09/go-portfolio/internal/logging"
	"github.com/jrsteele09/go-portfolio/realtime"
	"github.com/jrsteele09/go-portfolio/realtime/memrealtime"
	"github.com/jrsteele09/go-portfolio/realtime/pgrealtime"
	"github.com/jrsteele09/go-portfolio/server"
	"github.com/jrsteele09/go-portfolio/session"
	"github.com/jrsteele09/go-portfolio/storage/sqlitekv"
)

var errPanicRecovered = errors.New("panic recovered")

func main() {
	for {
		err := run()
		if err == nil {
			break
		}
		if !errors.Is(err, errPanicRecovered) {
			log.Fatal().Err(err).Msg("error running server")
		}
		log.Error().Err(err).Msg("restarting server")
		time.Sleep(1 * time.Second)
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errPanicRecovered
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	logger := logging.Init(c.GetEnv(), c.GetAppName())
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, bus, closeBackend, err := openBackend(ctx, c, logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	snapshots, err := sqlitekv.Open(c.GetLocalStorePath())
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer snapshots.Close()

	svc := content.NewService(ctx, content.ServiceConfig{
		Backend:      backend,
		Broadcaster:  bus,
		Snapshots:    snapshots,
		PollInterval: c.GetSettingsPollInterval(),
		Logger:       &logger,
	})
	defer svc.Close()

	handler, err := server.New(c, svc, serverOptions(ctx, c, logger)...)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}

	handler.Close()
	return shutdown(httpServer)
}

// openBackend selects Postgres when DATABASE_URL is set, otherwise an in-memory backend
// seeded with demo content.
func openBackend(ctx context.Context, c config.Config, logger zerolog.Logger) (content.Backend, realtime.Broadcaster, func(), error) {
	if databaseURL := c.GetDatabaseURL(); databaseURL != "" {
		pool, err := pgrealtime.Connect(ctx, databaseURL, 5*time.Second)
		if err != nil {
			return nil, nil, nil, err
		}
		if _, err := pool.Exec(ctx, content.PostgresSchema); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("create content schema: %w", err)
		}

		client := pgrealtime.New(pool, pgrealtime.WithLogger(logger))
		if err := client.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		for _, table := range content.Tables {
			if err := client.Watch(ctx, realtime.DefaultSchema, table); err != nil {
				pool.Close()
				return nil, nil, nil, err
			}
		}
		go client.Run(ctx)

		logger.Info().Msg("using postgres realtime backend")
		return client, client, pool.Close, nil
	}

	mem := memrealtime.New()
	mem.CreateTable(content.Tables...)
	if err := content.Seed(ctx, mem); err != nil {
		return nil, nil, nil, err
	}
	logger.Warn().Msg("DATABASE_URL not set, using in-memory backend with demo content")
	return mem, broadcast.NewHub(), func() {}, nil
}

func serverOptions(ctx context.Context, c config.Config, logger zerolog.Logger) []server.Option {
	opts := []server.Option{server.WithLogger(logger)}

	if c.GetAuthClientSecret() != "" {
		var verifier *oidc.IDTokenVerifier
		if issuer := c.GetOIDCIssuer(); issuer != "" {
			v, err := session.NewOIDCVerifier(ctx, issuer, c.GetAuthClientID())
			if err != nil {
				logger.Error().Err(err).Str("issuer", issuer).Msg("id_token verification disabled")
			} else {
				verifier = v
			}
		}
		opts = append(opts, server.WithExchanger(session.NewOAuth2Exchanger(
			c.GetAuthBaseURL(), c.GetAuthClientID(), c.GetAuthClientSecret(), c.GetAuthRedirectURI(), verifier)))
	}

	mailer, err := server.NewSMTPMailer(c)
	switch {
	case err == nil:
		opts = append(opts, server.WithMailer(mailer))
	case apperrors.Is(err, apperrors.ErrMissingConfig):
		logger.Info().Msg("SMTP not configured, contact form disabled")
	default:
		logger.Error().Err(err).Msg("SMTP mailer")
	}
	return opts
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
