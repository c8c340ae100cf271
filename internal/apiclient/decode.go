// ABOUTME: Typed views over untyped pipeline responses
// ABOUTME: Verb helpers wrap Send and decode the body into the caller's type

package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"

	"github.com/2389/edgecall/internal/apierr"
)

// Decode converts a pipeline response into a typed result. An empty body
// yields the zero value of T, and so does any body when T is struct{}.
// A text body is treated as a JSON string. A body that does not fit T is
// reported as an error record carrying the status code.
func Decode[T any](resp Response) Result[T] {
	if resp.Error != nil {
		return Fail[T](resp.Status, resp.Error)
	}

	out := Result[T]{Status: resp.Status}
	if resp.Body.Empty() {
		return out
	}

	switch dst := any(&out.Data).(type) {
	case *string:
		*dst = resp.Body.Text()
		return out
	case *[]byte:
		*dst = append([]byte(nil), resp.Body.Raw...)
		return out
	case *json.RawMessage:
		if resp.Body.IsJSON() {
			*dst = append(json.RawMessage(nil), resp.Body.Raw...)
		} else {
			*dst, _ = json.Marshal(resp.Body.Text())
		}
		return out
	case *any:
		*dst = resp.Body.Value()
		return out
	}

	if t := reflect.TypeFor[T](); t.Kind() == reflect.Struct && t.NumField() == 0 {
		return out
	}

	raw := resp.Body.Raw
	if !resp.Body.IsJSON() {
		raw, _ = json.Marshal(resp.Body.Text())
	}
	if err := json.Unmarshal(raw, &out.Data); err != nil {
		var zero T
		return Fail[T](resp.Status, &apierr.Record{
			Code:    apierr.StatusCode(resp.Status),
			Message: fmt.Sprintf("decoding response into %T: %v", zero, err),
		})
	}
	return out
}

// Do sends a call through s and decodes the result. The only error returned
// is *apierr.SessionRequiredError.
func Do[T any](ctx context.Context, s Sender, endpoint string, opts Options) (Result[T], error) {
	resp, err := s.Send(ctx, endpoint, opts)
	if err != nil {
		return Result[T]{}, err
	}
	return Decode[T](resp), nil
}

// Get issues a GET.
func Get[T any](ctx context.Context, s Sender, endpoint string, opts ...Option) (Result[T], error) {
	return Do[T](ctx, s, endpoint, buildOptions(http.MethodGet, nil, opts))
}

// Post issues a POST with body.
func Post[T any](ctx context.Context, s Sender, endpoint string, body any, opts ...Option) (Result[T], error) {
	return Do[T](ctx, s, endpoint, buildOptions(http.MethodPost, body, opts))
}

// Put issues a PUT with body.
func Put[T any](ctx context.Context, s Sender, endpoint string, body any, opts ...Option) (Result[T], error) {
	return Do[T](ctx, s, endpoint, buildOptions(http.MethodPut, body, opts))
}

// Patch issues a PATCH with body.
func Patch[T any](ctx context.Context, s Sender, endpoint string, body any, opts ...Option) (Result[T], error) {
	return Do[T](ctx, s, endpoint, buildOptions(http.MethodPatch, body, opts))
}

// Delete issues a DELETE.
func Delete[T any](ctx context.Context, s Sender, endpoint string, opts ...Option) (Result[T], error) {
	return Do[T](ctx, s, endpoint, buildOptions(http.MethodDelete, nil, opts))
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, endpoint string, opts Options) (Response, error)

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, endpoint string, opts Options) (Response, error) {
	return f(ctx, endpoint, opts)
}
