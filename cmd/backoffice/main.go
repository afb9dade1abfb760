package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-backoffice-core/app"
	"github.com/jrsteele09/go-backoffice-core/internal/config"
	"github.com/jrsteele09/go-backoffice-core/internal/logging"
	"github.com/jrsteele09/go-backoffice-core/server"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("backoffice", pflag.ContinueOnError)
	envFile := flagSet.String("env-file", ".env", "file of KEY=value pairs loaded before configuration")
	demo := flagSet.Bool("demo", false, "start the reference backend in-process and point the client at it")
	apiURL := flagSet.String("api", "", "backend base URL, overrides API_BASE_URL")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		return errors.Wrapf(err, "[run] load %s", *envFile)
	}
	c := config.New()
	if err := logging.Setup(c.GetLogLevel(), c.GetEnv()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *demo {
		baseURL, shutdown, err := startDemoBackend(c)
		if err != nil {
			return err
		}
		defer shutdown()
		*apiURL = baseURL
	}
	if *apiURL != "" {
		if err := os.Setenv("API_BASE_URL", *apiURL); err != nil {
			return errors.Wrap(err, "[run]")
		}
	}

	figure.NewFigure(c.GetAppName(), "cybermedium", true).Print()
	fmt.Println()

	a, err := app.New(ctx, c)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println(`type "help" for commands`)
	return newShell(a, os.Stdout).run(ctx, os.Stdin)
}

// startDemoBackend serves the reference backend on a free loopback port and
// returns its API base URL.
func startDemoBackend(c config.Config) (string, func(), error) {
	handler, err := server.NewInMemory(c)
	if err != nil {
		return "", nil, errors.Wrap(err, "[startDemoBackend]")
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, errors.Wrap(err, "[startDemoBackend] listen")
	}
	httpServer := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("demo backend stopped")
		}
	}()

	baseURL := "http://" + listener.Addr().String() + server.RouteAPIPrefix
	log.Info().Str("url", baseURL).Msg("demo backend started")
	return baseURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctx)
	}, nil
}
