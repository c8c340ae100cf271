// ABOUTME: Recording fake Sender for tests of code built on the request pipeline
// ABOUTME: Captures every call and replies with queued or default responses

// Package apiclienttest provides a fake apiclient.Sender.
package apiclienttest

import (
	"context"
	"sync"

	"github.com/2389/edgecall/internal/apiclient"
	"github.com/2389/edgecall/internal/apierr"
)

// Call is one recorded Send.
type Call struct {
	Endpoint string
	Options  apiclient.Options
}

// Reply is what the recorder answers with.
type Reply struct {
	Response apiclient.Response
	Err      error
}

// Recorder implements apiclient.Sender. Replies are consumed in order; once
// exhausted, Default is returned.
type Recorder struct {
	mu      sync.Mutex
	calls   []Call
	replies []Reply
	Default Reply
}

// New returns a Recorder that answers 200 with an empty body by default.
func New() *Recorder {
	return &Recorder{Default: Reply{Response: apiclient.Response{Status: 200}}}
}

// Send records the call.
func (r *Recorder) Send(_ context.Context, endpoint string, opts apiclient.Options) (apiclient.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, Call{Endpoint: endpoint, Options: opts})
	if len(r.replies) == 0 {
		return r.Default.Response, r.Default.Err
	}
	next := r.replies[0]
	r.replies = r.replies[1:]
	return next.Response, next.Err
}

// JSON queues a successful JSON reply.
func (r *Recorder) JSON(status int, v any) *Recorder {
	return r.queue(Reply{Response: apiclient.Response{Status: status, Body: apiclient.MustJSONBody(v)}})
}

// Fail queues a classified failure.
func (r *Recorder) Fail(status int, code, message string) *Recorder {
	return r.queue(Reply{Response: apiclient.Response{Status: status, Error: &apierr.Record{Code: code, Message: message}}})
}

// Err queues a pipeline error, typically a session-required signal.
func (r *Recorder) Err(err error) *Recorder {
	return r.queue(Reply{Err: err})
}

func (r *Recorder) queue(reply Reply) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, reply)
	return r
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Last returns the most recent call, or the zero Call.
func (r *Recorder) Last() Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Call{}
	}
	return r.calls[len(r.calls)-1]
}
