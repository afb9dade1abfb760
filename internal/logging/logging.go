// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup sets the global level and, outside production, switches to the
// human readable console writer.
func Setup(level, env string) error {
	return SetupWriter(os.Stderr, level, env)
}

func SetupWriter(w io.Writer, level, env string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return errors.Wrapf(err, "[logging.Setup] level %q", level)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	if strings.EqualFold(env, "PROD") {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return nil
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	return nil
}
