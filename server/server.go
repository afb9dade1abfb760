package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-backoffice-core/internal/config"
	"github.com/jrsteele09/go-backoffice-core/server/resourcerepo"
	"github.com/jrsteele09/go-backoffice-core/token"
	"github.com/jrsteele09/go-backoffice-core/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Server is the reference REST backend: login, logout, identity and a
// role-gated CRUD API over the back-office resources.
type Server struct {
	env       string
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	users     users.UserRepo
	tokens    *token.Manager
	resources resourcerepo.Repo
}

func New(config config.Config, userRepo users.UserRepo, tokens *token.Manager, resources resourcerepo.Repo) (*Server, error) {
	if config == nil {
		return nil, errors.New("[server.New] config is required")
	}
	if userRepo == nil {
		return nil, errors.New("[server.New] user repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[server.New] token manager is required")
	}
	if resources == nil {
		return nil, errors.New("[server.New] resource repo is required")
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		users:     userRepo,
		tokens:    tokens,
		resources: resources,
	}
	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes returns the registered route patterns.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colouredMethod(method), path)
}

func logError(method, path string, err error) {
	log.Error().Err(err).Msgf("[%-19s] %s", colouredMethod(method), path)
}

func colouredMethod(method string) string {
	padded := fmt.Sprintf(" %-7s", method)
	if colour, ok := methodColours[method]; ok {
		return colour + padded + ResetColour
	}
	return Grey + padded + ResetColour
}
