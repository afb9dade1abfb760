package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-backoffice-core/apiclient"
	"github.com/jrsteele09/go-backoffice-core/internal/errors"
	"github.com/jrsteele09/go-backoffice-core/validation"
)

// Record is a generic back-office entity as exchanged with the backend.
type Record = map[string]any

// nameFields are tried in order when a success message names the item.
var nameFields = []string{"nombre", "name", "username", "id"}

func itemName(record Record) string {
	for _, field := range nameFields {
		if v, ok := record[field]; ok && v != nil {
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func resourcePath(resource string, id ...string) string {
	path := "/" + url.PathEscape(resource)
	for _, part := range id {
		path += "/" + url.PathEscape(part)
	}
	return path
}

// List fetches every record of resource.
func (a *App) List(ctx context.Context, resource string) ([]Record, error) {
	var out []Record
	if err := a.Client.Do(ctx, http.MethodGet, resourcePath(resource), nil, &out); err != nil {
		return nil, errors.Wrapf(err, "[App.List] %s", resource)
	}
	return out, nil
}

// Create checks the actor's role and the required fields before posting the
// record. A failed check publishes one notification and makes no request.
func (a *App) Create(ctx context.Context, resource string, record Record, required ...string) (Record, error) {
	if err := a.precheck(validation.OperationCreate, resource, record, required); err != nil {
		return nil, err
	}
	resp, err := a.send(ctx, http.MethodPost, resourcePath(resource), record)
	if err != nil {
		return nil, errors.Wrapf(err, "[App.Create] %s", resource)
	}
	a.announce(validation.OperationCreate, resource, itemName(record), resp)
	return resp.Data, nil
}

func (a *App) Update(ctx context.Context, resource, id string, record Record, required ...string) (Record, error) {
	if err := a.precheck(validation.OperationUpdate, resource, record, required); err != nil {
		return nil, err
	}
	resp, err := a.send(ctx, http.MethodPut, resourcePath(resource, id), record)
	if err != nil {
		return nil, errors.Wrapf(err, "[App.Update] %s/%s", resource, id)
	}
	a.announce(validation.OperationUpdate, resource, itemName(record), resp)
	return resp.Data, nil
}

// Delete removes a record. name is only used in the success message.
func (a *App) Delete(ctx context.Context, resource, id, name string) error {
	if !a.Gateway.CanPerformOperation(validation.OperationDelete, resource) {
		return fmt.Errorf("[App.Delete] %w: delete %s", errors.ErrAuthorizationDenied, resource)
	}
	resp, err := a.send(ctx, http.MethodDelete, resourcePath(resource, id), nil)
	if err != nil {
		return errors.Wrapf(err, "[App.Delete] %s/%s", resource, id)
	}
	a.announce(validation.OperationDelete, resource, name, resp)
	return nil
}

func (a *App) precheck(op validation.Operation, resource string, record Record, required []string) error {
	if !a.Gateway.CanPerformOperation(op, resource) {
		return fmt.Errorf("[App.precheck] %w: %s %s", errors.ErrAuthorizationDenied, op, resource)
	}
	if !a.Gateway.RequireFields(record, required...) {
		return fmt.Errorf("[App.precheck] %w: %s %s", errors.ErrValidationFailure, op, resource)
	}
	if email, ok := record["email"].(string); ok && email != "" && !a.Gateway.RequireEmail(email) {
		return fmt.Errorf("[App.precheck] %w: %s %s", errors.ErrValidationFailure, op, resource)
	}
	return nil
}

// mutationResponse mirrors the {title, message, data} body of the backend.
type mutationResponse struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Data    Record `json:"data"`
}

func (a *App) send(ctx context.Context, method, path string, record Record) (*mutationResponse, error) {
	var in any
	if record != nil {
		in = record
	}
	var out mutationResponse
	if err := a.Client.Do(ctx, method, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// announce prefers the wording of the backend's success body and falls back
// to the gateway's message.
func (a *App) announce(op validation.Operation, resource, name string, resp *mutationResponse) {
	if resp.Title == "" && resp.Message == "" {
		a.Gateway.AnnounceSuccess(op, resource, name)
		return
	}
	_, message := validation.SuccessText(op, resource, name)
	a.Bus.ReportCollaboratorSuccess(apiclient.SuccessBody{Title: resp.Title, Message: resp.Message}, message)
}
