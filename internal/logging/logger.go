package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-portfolio/internal/config"
)

// Init configures the global zerolog logger for the given environment and returns it.
// DEV logs at debug level through a console writer, everything else logs JSON at info.
func Init(env string, appName string) zerolog.Logger {
	zerolog.TimestampFieldName = "timestamp"

	var w io.Writer = os.Stdout
	switch env {
	case config.EnvDev:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = os.Stdout
		w = consoleWriter
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	logger := zerolog.New(w).
		With().
		Timestamp().
		Str("app", appName).
		Int("pid", os.Getpid()).
		Logger()

	log.Logger = logger
	logger.Info().Str("env", env).Msg("initialized application logger")
	return logger
}

// Security returns a child logger tagged for security diagnostics.
func Security(l zerolog.Logger) zerolog.Logger {
	return l.With().Str("event", "security").Logger()
}
