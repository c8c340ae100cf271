// ABOUTME: Request pipeline that builds, authenticates, sends and classifies calls
// ABOUTME: Network failures become status-0 results; expired sessions become an error

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/2389/edgecall/internal/apierr"
	"github.com/2389/edgecall/internal/auth"
)

// DefaultFunctionsPath is appended to the base URL to reach remote functions.
const DefaultFunctionsPath = "functions/v1"

// DefaultUserAgent identifies the client when Config.UserAgent is empty.
const DefaultUserAgent = "edgecall/1.0"

// Configuration errors
var (
	ErrMissingBaseURL = errors.New("base URL is required")
	ErrMissingAnonKey = errors.New("anon key is required")
)

// Sender sends one call and returns its untyped response. The only error it
// returns is *apierr.SessionRequiredError.
type Sender interface {
	Send(ctx context.Context, endpoint string, opts Options) (Response, error)
}

// Config configures a Client. It is fixed once the client is built.
type Config struct {
	BaseURL       string
	AnonKey       string
	FunctionsPath string
	UserAgent     string
	HTTPClient    *http.Client
	Tokens        auth.TokenSource
	Logger        *slog.Logger
}

// Client is the request pipeline. It holds no state beyond its configuration.
type Client struct {
	functionsURL string
	anonKey      string
	userAgent    string
	http         *http.Client
	tokens       auth.TokenSource
	logger       *slog.Logger
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrMissingBaseURL
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}
	if cfg.AnonKey == "" {
		return nil, ErrMissingAnonKey
	}

	fnPath := strings.Trim(cfg.FunctionsPath, "/")
	if fnPath == "" {
		fnPath = DefaultFunctionsPath
	}

	c := &Client{
		functionsURL: base + "/" + fnPath,
		anonKey:      cfg.AnonKey,
		userAgent:    cfg.UserAgent,
		http:         cfg.HTTPClient,
		tokens:       cfg.Tokens,
		logger:       cfg.Logger,
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.tokens == nil {
		c.tokens = auth.None
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "apiclient")

	c.logger.Info("API client constructed", "functions_url", c.functionsURL)
	return c, nil
}

// FunctionsURL returns the base URL for remote functions.
func (c *Client) FunctionsURL() string {
	return c.functionsURL
}

// AnonKey returns the anonymous API identity sent with every call.
func (c *Client) AnonKey() string {
	return c.anonKey
}

// Tokens returns the credential source shared with push streams.
func (c *Client) Tokens() auth.TokenSource {
	return c.tokens
}

// HTTPClient returns the underlying transport.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// URL composes the absolute URL for endpoint. Leading slashes are ignored.
func (c *Client) URL(endpoint string) string {
	return c.functionsURL + "/" + strings.TrimLeft(endpoint, "/")
}

// Send runs the pipeline for one call.
func (c *Client) Send(ctx context.Context, endpoint string, opts Options) (Response, error) {
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}
	requestID := uuid.New().String()
	logger := c.logger.With("method", opts.Method, "endpoint", endpoint, "request_id", requestID)

	req, authed, err := c.newRequest(ctx, endpoint, opts, requestID)
	if err != nil {
		logger.Error("building request", "error", err)
		return networkResponse(err), nil
	}
	logger.Debug("sending request", "url", req.URL.Redacted(), "authenticated", authed)

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error("network or transport error", "error", err)
		return networkResponse(err), nil
	}
	defer resp.Body.Close()

	logger.Debug("response received", "status", resp.StatusCode)

	body, err := readBody(resp)
	if err != nil {
		logger.Error("failed to parse response body", "status", resp.StatusCode, "error", err)
		return Response{
			Status: resp.StatusCode,
			Error:  &apierr.Record{Code: apierr.StatusCode(resp.StatusCode), Message: err.Error()},
		}, nil
	}

	if resp.StatusCode == http.StatusUnauthorized {
		logger.Warn("unauthorized response", "body", body.Text())
		if !opts.Public {
			if msg, ok := authRequired(body); ok {
				logger.Warn("session required")
				return Response{}, apierr.NewSessionRequired(msg)
			}
		}
	}

	if !successful(resp.StatusCode) {
		rec := apierr.Classify(body.Value(), resp.StatusCode)
		logger.Error("API error", "status", resp.StatusCode, "code", rec.Code, "message", rec.Message)
		return Response{Status: resp.StatusCode, Error: &rec}, nil
	}

	return Response{Status: resp.StatusCode, Body: body}, nil
}

// newRequest builds the outbound request and reports whether a bearer
// credential was attached.
func (c *Client) newRequest(ctx context.Context, endpoint string, opts Options, requestID string) (*http.Request, bool, error) {
	target, err := url.Parse(c.URL(endpoint))
	if err != nil {
		return nil, false, fmt.Errorf("parsing url: %w", err)
	}
	if len(opts.Query) > 0 {
		q := target.Query()
		for k, vs := range opts.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		target.RawQuery = q.Encode()
	}

	var (
		body        io.Reader
		contentType = "application/json"
	)
	switch b := opts.Body.(type) {
	case nil:
	case *Form:
		body, contentType, err = b.encode()
		if err != nil {
			return nil, false, err
		}
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, false, fmt.Errorf("encoding body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, target.String(), body)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}

	for k, vs := range opts.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", requestID)

	authed := req.Header.Get("Authorization") != ""
	if !opts.Public && !authed {
		token := opts.Token
		if token == "" {
			token, _ = c.tokens.Token(ctx)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
			authed = true
		}
	}

	return req, authed, nil
}

// readBody reads and parses the body according to its declared content type.
func readBody(resp *http.Response) (Body, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Body{}, fmt.Errorf("reading response body: %w", err)
	}

	b := Body{ContentType: resp.Header.Get("Content-Type"), Raw: raw}
	if resp.StatusCode == http.StatusNoContent || len(raw) == 0 {
		b.Raw = nil
		return b, nil
	}

	if isJSON(b.ContentType) {
		b.json = true
		if err := json.Unmarshal(raw, &b.value); err != nil {
			return Body{}, fmt.Errorf("decoding JSON response: %w", err)
		}
		return b, nil
	}

	b.value = string(raw)
	return b, nil
}

// authRequired reports whether body marks the failure as "must re-authenticate".
func authRequired(body Body) (string, bool) {
	obj, ok := body.Value().(map[string]any)
	if !ok {
		return "", false
	}
	if _, hasMsg := obj["message"]; !hasMsg {
		return "", false
	}
	code, _ := obj["code"].(string)
	if code != apierr.CodeAuthRequired {
		return "", false
	}
	msg, _ := obj["message"].(string)
	return msg, true
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func successful(status int) bool {
	return status >= 200 && status < 300
}

func networkResponse(err error) Response {
	return Response{Status: 0, Error: apierr.Network(err.Error())}
}
