// ABOUTME: Per-call request options and the functional options that build them
// ABOUTME: Public calls skip credentials; an explicit token overrides the source

package apiclient

import (
	"net/http"
	"net/url"
	"strings"
)

// Options describes one outbound call.
type Options struct {
	Method  string
	Headers http.Header
	Query   url.Values

	// Body is JSON-encoded unless it is a *Form, which is sent as multipart.
	Body any

	// Token overrides the client's token source for this call only.
	Token string

	// Public suppresses credential attachment and the session-required signal.
	Public bool
}

// Option mutates Options.
type Option func(*Options)

// Public marks the call as not requiring authentication.
func Public() Option {
	return func(o *Options) { o.Public = true }
}

// WithToken uses token for this call instead of the token source.
func WithToken(token string) Option {
	return func(o *Options) { o.Token = token }
}

// WithQuery adds query parameters to the call.
func WithQuery(q url.Values) Option {
	return func(o *Options) {
		if o.Query == nil {
			o.Query = url.Values{}
		}
		for k, vs := range q {
			for _, v := range vs {
				o.Query.Add(k, v)
			}
		}
	}
}

// WithHeader sets a header on the call.
func WithHeader(key, value string) Option {
	return func(o *Options) {
		if o.Headers == nil {
			o.Headers = http.Header{}
		}
		o.Headers.Set(key, value)
	}
}

// buildOptions applies opts over a base method and body.
func buildOptions(method string, body any, opts []Option) Options {
	o := Options{Method: method, Body: body}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Path joins endpoint segments, escaping each one, so callers never build
// paths by hand.
func Path(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s == "" {
			continue
		}
		escaped = append(escaped, url.PathEscape(s))
	}
	return strings.Join(escaped, "/")
}
