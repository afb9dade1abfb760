package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-backoffice-core/internal/errors"
	"github.com/jrsteele09/go-backoffice-core/server/resourcerepo"
)

// mutationResponse carries the stored record only; clients word the
// confirmation themselves.
type mutationResponse struct {
	Data resourcerepo.Record `json:"data,omitempty"`
}

func (s *Server) ListResourceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.resources.List(r.PathValue("resource"))
		if err != nil {
			s.writeRepoError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) GetResourceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := s.resources.Get(r.PathValue("resource"), r.PathValue("id"))
		if err != nil {
			s.writeRepoError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func (s *Server) CreateResourceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, ok := decodeRecord(w, r)
		if !ok {
			return
		}
		created, err := s.resources.Create(r.PathValue("resource"), record)
		if err != nil {
			s.writeRepoError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, mutationResponse{Data: created})
	}
}

func (s *Server) UpdateResourceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, ok := decodeRecord(w, r)
		if !ok {
			return
		}
		updated, err := s.resources.Update(r.PathValue("resource"), r.PathValue("id"), record)
		if err != nil {
			s.writeRepoError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mutationResponse{Data: updated})
	}
}

func (s *Server) DeleteResourceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.resources.Delete(r.PathValue("resource"), r.PathValue("id")); err != nil {
			s.writeRepoError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mutationResponse{})
	}
}

func decodeRecord(w http.ResponseWriter, r *http.Request) (resourcerepo.Record, bool) {
	var record resourcerepo.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Bad Request", "Body must be a JSON object")
		return nil, false
	}
	return record, true
}

func (s *Server) writeRepoError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errors.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	logError(r.Method, r.URL.Path, err)
	writeJSONError(w, http.StatusInternalServerError, "Server Error", "Internal server error")
}
