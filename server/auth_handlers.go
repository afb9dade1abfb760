package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string   `json:"token"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

type meResponse struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// LoginHandler exchanges username and password for a bearer token.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid login payload")
			return
		}
		req.Username = strings.TrimSpace(req.Username)

		user, err := s.users.GetByUsername(req.Username)
		if err != nil || user.Blocked || !user.CheckPassword(req.Password) {
			log.Info().Str("username", req.Username).Msg("login rejected")
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
			return
		}

		signed, err := s.tokens.Issue(user)
		if err != nil {
			logError(r.Method, r.URL.Path, err)
			writeJSONError(w, http.StatusInternalServerError, "Server Error", "Could not issue token")
			return
		}
		if err := s.users.SetLastLogin(user.Username, time.Now()); err != nil {
			log.Warn().Err(err).Str("username", user.Username).Msg("[LoginHandler] SetLastLogin")
		}

		writeJSON(w, http.StatusOK, loginResponse{
			Token:    signed,
			Username: user.Username,
			Roles:    user.WireRoles(),
		})
	}
}

// LogoutHandler revokes the caller's token.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, _ := r.Context().Value(ContextKeyRawToken).(string)
		if err := s.tokens.Revoke(raw); err != nil {
			log.Warn().Err(err).Msg("[LogoutHandler] Revoke")
		}
		s.tokens.CleanupRevokedTokens()
		w.WriteHeader(http.StatusNoContent)
	}
}

// MeHandler returns the identity behind the caller's token.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, meResponse{Username: claims.Username, Roles: claims.Roles})
	}
}
