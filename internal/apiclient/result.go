// ABOUTME: Result envelope and parsed response bodies
// ABOUTME: A result carries either data or an error record, never both

package apiclient

import (
	"encoding/json"

	"github.com/2389/edgecall/internal/apierr"
)

// Result is the outcome of one call. Status is the protocol status, or 0
// when the call never reached the remote. When Error is set, Data is the
// zero value of T.
type Result[T any] struct {
	Status int
	Data   T
	Error  *apierr.Record
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.Error == nil
}

// Fail builds a failed result.
func Fail[T any](status int, rec *apierr.Record) Result[T] {
	return Result[T]{Status: status, Error: rec}
}

// NetworkFailure builds the status-0 result for a call that never completed.
func NetworkFailure[T any](msg string) Result[T] {
	return Result[T]{Status: 0, Error: apierr.Network(msg)}
}

// Response is the untyped outcome produced by the pipeline.
type Response struct {
	Status int
	Body   Body
	Error  *apierr.Record
}

// Body is a parsed response body.
type Body struct {
	ContentType string
	Raw         []byte

	json  bool
	value any
}

// JSONBody builds a body from an already-encoded JSON document.
// It is mostly useful for fakes standing in for the pipeline.
func JSONBody(raw []byte) (Body, error) {
	b := Body{ContentType: "application/json", Raw: raw, json: true}
	if len(raw) == 0 {
		return b, nil
	}
	if err := json.Unmarshal(raw, &b.value); err != nil {
		return Body{}, err
	}
	return b, nil
}

// MustJSONBody marshals v into a JSON body and panics on failure.
func MustJSONBody(v any) Body {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	b, err := JSONBody(raw)
	if err != nil {
		panic(err)
	}
	return b
}

// TextBody builds a non-JSON body.
func TextBody(text string) Body {
	return Body{ContentType: "text/plain", Raw: []byte(text), value: text}
}

// Empty reports whether the body carried no bytes.
func (b Body) Empty() bool {
	return len(b.Raw) == 0
}

// IsJSON reports whether the body was decoded as JSON.
func (b Body) IsJSON() bool {
	return b.json
}

// Value is the decoded body: a JSON value, the text for non-JSON bodies,
// or nil when empty.
func (b Body) Value() any {
	if b.Empty() {
		return nil
	}
	return b.value
}

// Text is the raw body as a string.
func (b Body) Text() string {
	return string(b.Raw)
}
