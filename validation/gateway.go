// Package validation stops an action before it reaches the backend when a
// precondition fails. Every failed check publishes one notification and
// returns false so the caller can abort.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/jrsteele09/go-backoffice-core/notifications"
	"github.com/jrsteele09/go-backoffice-core/roles"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Operation is a CRUD mutation kind.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

type operationText struct {
	verb  string // infinitive, used in denials
	past  string // used in success messages
	title string
}

var operations = map[Operation]operationText{
	OperationCreate: {verb: "create", past: "created", title: "Item Created"},
	OperationUpdate: {verb: "edit", past: "updated", title: "Item Updated"},
	OperationDelete: {verb: "delete", past: "deleted", title: "Item Deleted"},
}

func (o Operation) IsValid() bool {
	_, ok := operations[o]
	return ok
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type RoleReader interface {
	CurrentRole() roles.Role
}

type Notifier interface {
	Success(title, message string, options ...notifications.PublishOption) string
	Error(title, message string, options ...notifications.PublishOption) string
	Warning(title, message string, options ...notifications.PublishOption) string
}

type Gateway struct {
	roles    RoleReader
	notifier Notifier
}

func NewGateway(roleReader RoleReader, notifier Notifier) (*Gateway, error) {
	if roleReader == nil {
		return nil, errors.New("[NewGateway] role reader is required")
	}
	if notifier == nil {
		return nil, errors.New("[NewGateway] notifier is required")
	}
	return &Gateway{roles: roleReader, notifier: notifier}, nil
}

// CanPerformOperation allows CRUD mutations for administrators only.
func (g *Gateway) CanPerformOperation(op Operation, entity string) bool {
	if g.roles.CurrentRole() == roles.RoleAdmin {
		return true
	}
	text, ok := operations[op]
	if !ok {
		text.verb = string(op)
	}
	log.Debug().Str("operation", string(op)).Str("entity", entity).Msg("operation denied")
	g.notifier.Error("Access Denied", fmt.Sprintf("Only administrators can %s %s", text.verb, entity))
	return false
}

// CanAccessFeature checks the current role against required using the role hierarchy.
func (g *Gateway) CanAccessFeature(feature string, required roles.Role) bool {
	if roles.HasPermission(g.roles.CurrentRole(), required) {
		return true
	}
	g.notifier.Error("Access Denied", fmt.Sprintf("You do not have permission to access %s", feature))
	return false
}

// RequireFields checks that every named field of record is present and not
// blank. All missing fields are listed in a single warning.
func (g *Gateway) RequireFields(record map[string]any, fields ...string) bool {
	var missing []string
	for _, field := range fields {
		if isBlank(record[field]) {
			missing = append(missing, field)
		}
	}
	if len(missing) == 0 {
		return true
	}
	g.notifier.Warning("Required Fields", "Please complete the following fields: "+strings.Join(missing, ", "))
	return false
}

func isBlank(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return true
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.String {
		return strings.TrimSpace(v.String()) == ""
	}
	return false
}

// RequireEmail checks for a local@domain.tld shape.
func (g *Gateway) RequireEmail(value string) bool {
	if emailPattern.MatchString(value) {
		return true
	}
	g.notifier.Warning("Invalid Email", "Please enter a valid email address")
	return false
}

type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// RequirePositive checks value > 0. It is a function rather than a method
// because methods cannot take type parameters.
func RequirePositive[N Number](g *Gateway, value N, label string) bool {
	if value > 0 {
		return true
	}
	g.notifier.Warning("Invalid Value", fmt.Sprintf("%s must be a positive number", label))
	return false
}

// SuccessText returns the title and message announcing a completed mutation.
func SuccessText(op Operation, entity, itemName string) (title, message string) {
	text, ok := operations[op]
	if !ok {
		text = operationText{past: string(op), title: "Operation Successful"}
	}
	if itemName != "" {
		return text.title, fmt.Sprintf("%s %q was %s successfully", entity, itemName, text.past)
	}
	return text.title, fmt.Sprintf("%s was %s successfully", entity, text.past)
}

// AnnounceSuccess publishes the success notification for a completed mutation.
func (g *Gateway) AnnounceSuccess(op Operation, entity, itemName string) {
	title, message := SuccessText(op, entity, itemName)
	g.notifier.Success(title, message)
}
