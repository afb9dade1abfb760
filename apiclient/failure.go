package apiclient

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-backoffice-core/internal/errors"
	"github.com/jrsteele09/go-backoffice-core/internal/utils"
)

// Failure is a non-2xx response, or a transport error, from the REST backend.
// Status is 0 when no response was received.
type Failure struct {
	Status            int
	Method            string
	Path              string
	StructuredTitle   *string // "title" from the JSON error body
	StructuredMessage *string // "message" (or a string "error") from the JSON error body
	TransportMessage  string  // HTTP status text or transport error text
	Err               error   // underlying transport error, if any
}

func (f *Failure) Error() string {
	msg := f.TransportMessage
	if f.StructuredMessage != nil {
		msg = *f.StructuredMessage
	}
	if f.Status == 0 {
		return fmt.Sprintf("%s %s: %s", f.Method, f.Path, msg)
	}
	return fmt.Sprintf("%s %s: %d %s", f.Method, f.Path, f.Status, msg)
}

func (f *Failure) Unwrap() []error {
	if f.Err != nil {
		return []error{errors.ErrCollaboratorFailure, f.Err}
	}
	return []error{errors.ErrCollaboratorFailure}
}

// IsStatus reports whether err is a Failure with the given HTTP status.
func IsStatus(err error, status int) bool {
	var f *Failure
	return errors.As(err, &f) && f.Status == status
}

// errorBody covers the shapes the backend uses for errors:
// {"title": "...", "message": "..."}, {"error": "..."} and {"error": {"title": "...", "message": "..."}}.
type errorBody struct {
	Title   string          `json:"title"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

type nestedErrorBody struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// parseErrorBody extracts the structured title and message, if any.
func parseErrorBody(body []byte) (title, message *string) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return nil, nil
	}
	title, message = utils.NonBlank(eb.Title), utils.NonBlank(eb.Message)

	if len(eb.Error) == 0 {
		return title, message
	}
	var s string
	if err := json.Unmarshal(eb.Error, &s); err == nil {
		if message == nil {
			message = utils.NonBlank(s)
		}
		return title, message
	}
	var nested nestedErrorBody
	if err := json.Unmarshal(eb.Error, &nested); err == nil {
		if title == nil {
			title = utils.NonBlank(nested.Title)
		}
		if message == nil {
			message = utils.NonBlank(nested.Message)
		}
	}
	return title, message
}
