package notifications

import (
	"net/http"

	"github.com/jrsteele09/go-backoffice-core/apiclient"
	"github.com/jrsteele09/go-backoffice-core/internal/utils"
	"github.com/rs/zerolog/log"
)

var _ apiclient.Reporter = (*Bus)(nil)

const (
	defaultFailureTitle   = "System Error"
	defaultFailureMessage = "An unexpected error has occurred"
	defaultSuccessTitle   = "Operation Successful"
	defaultSuccessMessage = "The operation completed successfully"
)

type statusText struct {
	title   string
	message string
}

var statusOverrides = map[int]statusText{
	http.StatusUnauthorized:        {"Access Denied", "You do not have permission to perform this action"},
	http.StatusForbidden:           {"Insufficient Permissions", "Your user role does not allow this operation"},
	http.StatusNotFound:            {"Resource Not Found", "The requested item does not exist"},
	http.StatusInternalServerError: {"Server Error", "Internal server error. Contact the administrator"},
}

// Classify maps a collaborator failure to a notification title and message.
// A structured body wins over the transport message, and the well known
// status codes win over both.
func Classify(f apiclient.Failure) (title, message string) {
	title, message = defaultFailureTitle, defaultFailureMessage

	if f.StructuredTitle != nil || f.StructuredMessage != nil {
		if m := utils.Value(f.StructuredMessage); m != "" {
			message = m
		}
		if t := utils.Value(f.StructuredTitle); t != "" {
			title = t
		}
	} else if f.TransportMessage != "" {
		message = f.TransportMessage
	}

	if override, ok := statusOverrides[f.Status]; ok {
		title, message = override.title, override.message
	}
	return title, message
}

// ReportCollaboratorFailure publishes a classified error notification.
// Failures of the login request are left to the login surface.
func (b *Bus) ReportCollaboratorFailure(f apiclient.Failure) {
	if b.isLoginPath(f.Path) {
		log.Debug().Int("status", f.Status).Str("path", f.Path).Msg("login failure not reported")
		return
	}
	title, message := Classify(f)
	b.Error(title, message)
}

// ReportCollaboratorSuccess publishes a success notification, preferring the
// title and message carried by the response body.
func (b *Bus) ReportCollaboratorSuccess(body apiclient.SuccessBody, defaultMessage string) string {
	title, message := defaultSuccessTitle, defaultMessage
	if message == "" {
		message = defaultSuccessMessage
	}
	if body.Message != "" {
		message = body.Message
	}
	if body.Title != "" {
		title = body.Title
	}
	return b.Success(title, message)
}
