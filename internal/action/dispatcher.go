// ABOUTME: Action-envelope dispatcher posting {action, payload} to one endpoint
// ABOUTME: Failures other than session-required surface as results, never as errors

// Package action multiplexes many server operations through one endpoint.
// Each call is a JSON envelope {"action": ..., "payload": ...} or a multipart
// form whose first field is "action".
package action

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/2389/edgecall/internal/apiclient"
	"github.com/2389/edgecall/internal/apierr"
)

// Envelope is the JSON body sent for a non-multipart action. Payload is
// omitted entirely for list-style actions that take no arguments.
type Envelope struct {
	Action  Name `json:"action"`
	Payload any  `json:"payload,omitempty"`
}

// Dispatcher posts action envelopes to one fixed endpoint.
type Dispatcher struct {
	sender   apiclient.Sender
	endpoint string
	logger   *slog.Logger
}

// NewDispatcher binds a sender to a multiplexing endpoint.
func NewDispatcher(sender apiclient.Sender, endpoint string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sender:   sender,
		endpoint: endpoint,
		logger:   logger.With("component", "action", "endpoint", endpoint),
	}
}

// Endpoint returns the multiplexing endpoint.
func (d *Dispatcher) Endpoint() string {
	return d.endpoint
}

// Send posts one envelope and returns the untyped response. Pipeline errors
// other than the session-required signal become NETWORK_ERROR responses.
func (d *Dispatcher) Send(ctx context.Context, name Name, payload any, opts ...apiclient.Option) (apiclient.Response, error) {
	return d.send(ctx, name, Envelope{Action: name, Payload: payload}, opts)
}

// SendForm posts a multipart form with the action field first.
func (d *Dispatcher) SendForm(ctx context.Context, name Name, form *apiclient.Form, opts ...apiclient.Option) (apiclient.Response, error) {
	body := apiclient.NewForm().Field("action", string(name))
	if form != nil {
		body.Append(form)
	}
	return d.send(ctx, name, body, opts)
}

func (d *Dispatcher) send(ctx context.Context, name Name, body any, opts []apiclient.Option) (apiclient.Response, error) {
	if !name.Valid() {
		d.logger.Error("unknown action", "action", string(name))
		return apiclient.Response{Error: apierr.Network(fmt.Sprintf("unknown action %q", name))}, nil
	}

	o := apiclient.Options{Method: http.MethodPost, Body: body}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	d.logger.Debug("dispatching action", "action", string(name))
	resp, err := d.sender.Send(ctx, d.endpoint, o)
	if err != nil {
		if apierr.IsSessionRequired(err) {
			return apiclient.Response{}, err
		}
		d.logger.Error("action failed before a response", "action", string(name), "error", err)
		return apiclient.Response{Error: apierr.Network(err.Error())}, nil
	}
	if resp.Error != nil {
		d.logger.Warn("action returned an error", "action", string(name), "status", resp.Status, "code", resp.Error.Code)
	}
	return resp, nil
}

// Call dispatches name with payload and decodes the result into T.
func Call[T any](ctx context.Context, d *Dispatcher, name Name, payload any, opts ...apiclient.Option) (apiclient.Result[T], error) {
	resp, err := d.Send(ctx, name, payload, opts...)
	if err != nil {
		return apiclient.Result[T]{}, err
	}
	return apiclient.Decode[T](resp), nil
}

// CallForm dispatches name as multipart and decodes the result into T.
func CallForm[T any](ctx context.Context, d *Dispatcher, name Name, form *apiclient.Form, opts ...apiclient.Option) (apiclient.Result[T], error) {
	resp, err := d.SendForm(ctx, name, form, opts...)
	if err != nil {
		return apiclient.Result[T]{}, err
	}
	return apiclient.Decode[T](resp), nil
}
