// ABOUTME: Tests for the request pipeline against an httptest server
// ABOUTME: Covers auth headers, error classification, empty bodies and multipart

package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/edgecall/internal/apierr"
	"github.com/2389/edgecall/internal/auth"
)

type captured struct {
	method  string
	path    string
	query   url.Values
	header  http.Header
	body    []byte
	form    map[string]string
	files   map[string]string
	reqSeen bool
}

func newTestServer(t *testing.T, status int, contentType, body string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.reqSeen = true
		c.method = r.Method
		c.path = r.URL.Path
		c.query = r.URL.Query()
		c.header = r.Header.Clone()
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			c.form = map[string]string{}
			for k, v := range r.MultipartForm.Value {
				c.form[k] = v[0]
			}
			c.files = map[string]string{}
			for k, fhs := range r.MultipartForm.File {
				f, err := fhs[0].Open()
				require.NoError(t, err)
				data, _ := io.ReadAll(f)
				f.Close()
				c.files[k] = fhs[0].Filename + ":" + string(data)
			}
		} else {
			c.body, _ = io.ReadAll(r.Body)
		}
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func newTestClient(t *testing.T, baseURL string, tokens auth.TokenSource) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: baseURL, AnonKey: "anon-key", Tokens: tokens})
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{AnonKey: "k"})
	assert.ErrorIs(t, err, ErrMissingBaseURL)

	_, err = New(Config{BaseURL: "http://example.test"})
	assert.ErrorIs(t, err, ErrMissingAnonKey)

	_, err = New(Config{BaseURL: "not a url", AnonKey: "k"})
	assert.Error(t, err)
}

func TestNew_FunctionsURL(t *testing.T) {
	c, err := New(Config{BaseURL: "https://project.example.test/", AnonKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "https://project.example.test/functions/v1", c.FunctionsURL())

	c, err = New(Config{BaseURL: "https://project.example.test", AnonKey: "k", FunctionsPath: "/edge/"})
	require.NoError(t, err)
	assert.Equal(t, "https://project.example.test/edge", c.FunctionsURL())
	assert.Equal(t, "https://project.example.test/edge/me", c.URL("/me"))
}

func TestSend_StructuredError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusBadRequest, "application/json", `{"message":"Invalid request","code":"INVALID_INPUT"}`)
	c := newTestClient(t, srv.URL, nil)

	res, err := Get[map[string]any](context.Background(), c, "things")

	require.NoError(t, err)
	assert.Equal(t, 400, res.Status)
	require.NotNil(t, res.Error)
	assert.Equal(t, "INVALID_INPUT", res.Error.Code)
	assert.Equal(t, "Invalid request", res.Error.Message)
	assert.Nil(t, res.Data)
}

func TestSend_TextError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, "text/plain", "Internal Server Error")
	c := newTestClient(t, srv.URL, nil)

	res, err := Get[map[string]any](context.Background(), c, "things")

	require.NoError(t, err)
	assert.Equal(t, 500, res.Status)
	require.NotNil(t, res.Error)
	assert.Equal(t, "500", res.Error.Code)
	assert.Equal(t, "Internal Server Error", res.Error.Message)
}

func TestSend_AuthRequiredRaisesSignal(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusUnauthorized, "application/json", `{"message":"Please log in","code":"AUTH_REQUIRED"}`)
	c := newTestClient(t, srv.URL, auth.Static("tok"))

	_, err := Get[map[string]any](context.Background(), c, "me")

	require.Error(t, err)
	assert.True(t, apierr.IsSessionRequired(err))
	assert.Equal(t, "Please log in", err.Error())
}

func TestSend_AuthRequiredOnPublicCallIsAResult(t *testing.T) {
	srv, c2 := newTestServer(t, http.StatusUnauthorized, "application/json", `{"message":"Please log in","code":"AUTH_REQUIRED"}`)
	c := newTestClient(t, srv.URL, auth.Static("tok"))

	res, err := Get[map[string]any](context.Background(), c, "catalog", Public())

	require.NoError(t, err)
	assert.Equal(t, 401, res.Status)
	require.NotNil(t, res.Error)
	assert.Equal(t, "AUTH_REQUIRED", res.Error.Code)
	assert.Empty(t, c2.header.Get("Authorization"))
}

func TestSend_PlainUnauthorized(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusUnauthorized, "application/json", `{"message":"Invalid token"}`)
	c := newTestClient(t, srv.URL, auth.Static("tok"))

	res, err := Get[map[string]any](context.Background(), c, "me")

	require.NoError(t, err)
	assert.Equal(t, 401, res.Status)
	require.NotNil(t, res.Error)
	assert.Equal(t, "401", res.Error.Code)
	assert.Equal(t, "Invalid token", res.Error.Message)
}

func TestSend_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()
	c := newTestClient(t, base, nil)

	res, err := Post[map[string]any](context.Background(), c, "things", map[string]string{"a": "b"})

	require.NoError(t, err)
	assert.Equal(t, 0, res.Status)
	require.NotNil(t, res.Error)
	assert.Equal(t, apierr.CodeNetwork, res.Error.Code)
	assert.NotEmpty(t, res.Error.Message)
}

func TestSend_NoContent(t *testing.T) {
	srv, c2 := newTestServer(t, http.StatusNoContent, "", "")
	c := newTestClient(t, srv.URL, auth.Static("tok"))

	res, err := Delete[map[string]any](context.Background(), c, "things/1")

	require.NoError(t, err)
	assert.Equal(t, 204, res.Status)
	assert.Nil(t, res.Error)
	assert.Nil(t, res.Data)
	assert.Equal(t, http.MethodDelete, c2.method)
}

func TestSend_InvalidJSONBody(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, "application/json", `{"broken":`)
	c := newTestClient(t, srv.URL, nil)

	res, err := Get[map[string]any](context.Background(), c, "things")

	require.NoError(t, err)
	assert.Equal(t, 200, res.Status)
	require.NotNil(t, res.Error)
	assert.Equal(t, "200", res.Error.Code)
}

func TestSend_HeadersAndBearer(t *testing.T) {
	srv, c2 := newTestServer(t, http.StatusOK, "application/json", `{"id":"u1"}`)
	c := newTestClient(t, srv.URL, auth.Static("session-token"))

	type user struct {
		ID string `json:"id"`
	}
	res, err := Post[user](context.Background(), c, "/me", map[string]string{"name": "x"})

	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, "u1", res.Data.ID)

	assert.Equal(t, "/functions/v1/me", c2.path)
	assert.Equal(t, "anon-key", c2.header.Get("apikey"))
	assert.Equal(t, "Bearer session-token", c2.header.Get("Authorization"))
	assert.Equal(t, "application/json", c2.header.Get("Content-Type"))
	assert.NotEmpty(t, c2.header.Get("X-Request-Id"))
	assert.JSONEq(t, `{"name":"x"}`, string(c2.body))
}

func TestSend_PublicSkipsBearer(t *testing.T) {
	srv, c2 := newTestServer(t, http.StatusOK, "application/json", `[]`)
	c := newTestClient(t, srv.URL, auth.Static("session-token"))

	res, err := Get[[]string](context.Background(), c, "ai-providers", Public())

	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Empty(t, c2.header.Get("Authorization"))
	assert.Equal(t, "anon-key", c2.header.Get("apikey"))
}

func TestSend_NoSessionSendsNoBearer(t *testing.T) {
	srv, c2 := newTestServer(t, http.StatusOK, "application/json", `{}`)
	c := newTestClient(t, srv.URL, nil)

	_, err := Get[any](context.Background(), c, "things")

	require.NoError(t, err)
	assert.Empty(t, c2.header.Get("Authorization"))
}

func TestSend_TokenOverride(t *testing.T) {
	srv, c2 := newTestServer(t, http.StatusOK, "application/json", `{}`)
	c := newTestClient(t, srv.URL, auth.Static("session-token"))

	_, err := Get[any](context.Background(), c, "chat-history", WithToken("explicit"))

	require.NoError(t, err)
	assert.Equal(t, "Bearer explicit", c2.header.Get("Authorization"))
}

func TestSend_CallerAuthorizationWins(t *testing.T) {
	srv, c2 := newTestServer(t, http.StatusOK, "application/json", `{}`)
	c := newTestClient(t, srv.URL, auth.Static("session-token"))

	_, err := Get[any](context.Background(), c, "things", WithHeader("Authorization", "Bearer caller"))

	require.NoError(t, err)
	assert.Equal(t, "Bearer caller", c2.header.Get("Authorization"))
}

func TestSend_QueryMerging(t *testing.T) {
	srv, c2 := newTestServer(t, http.StatusOK, "application/json", `{}`)
	c := newTestClient(t, srv.URL, nil)

	_, err := Get[any](context.Background(), c, "chat-history?limit=5", WithQuery(url.Values{"organizationId": {"org-1"}}))

	require.NoError(t, err)
	assert.Equal(t, "/functions/v1/chat-history", c2.path)
	assert.Equal(t, "5", c2.query.Get("limit"))
	assert.Equal(t, "org-1", c2.query.Get("organizationId"))
}

func TestSend_Multipart(t *testing.T) {
	srv, c2 := newTestServer(t, http.StatusOK, "application/json", `{"id":"p1"}`)
	c := newTestClient(t, srv.URL, auth.Static("tok"))

	form := NewForm().
		Field("action", "createProject").
		Field("projectName", "Demo").
		File("promptFile", "prompt.md", "text/markdown", []byte("# hello"))

	res, err := Post[map[string]any](context.Background(), c, "dialectic-service", form)

	require.NoError(t, err)
	require.True(t, res.OK())
	assert.True(t, strings.HasPrefix(c2.header.Get("Content-Type"), "multipart/form-data; boundary="))
	assert.Equal(t, "createProject", c2.form["action"])
	assert.Equal(t, "Demo", c2.form["projectName"])
	assert.Equal(t, "prompt.md:# hello", c2.files["promptFile"])
	assert.Equal(t, []string{"action", "projectName", "promptFile"}, form.Names())
}

func TestDecode_Shapes(t *testing.T) {
	resp := Response{Status: 200, Body: MustJSONBody(map[string]int{"n": 1})}

	raw := Decode[json.RawMessage](resp)
	assert.JSONEq(t, `{"n":1}`, string(raw.Data))

	s := Decode[string](Response{Status: 200, Body: TextBody("plain")})
	assert.Equal(t, "plain", s.Data)

	anyRes := Decode[any](resp)
	assert.Equal(t, map[string]any{"n": float64(1)}, anyRes.Data)

	bad := Decode[[]string](resp)
	require.NotNil(t, bad.Error)
	assert.Equal(t, "200", bad.Error.Code)
	assert.Nil(t, bad.Data)

	text := Response{Status: 200, Body: TextBody("Organization deleted")}

	void := Decode[struct{}](text)
	assert.Nil(t, void.Error)
	assert.Equal(t, 200, void.Status)

	rawText := Decode[json.RawMessage](text)
	require.Nil(t, rawText.Error)
	assert.JSONEq(t, `"Organization deleted"`, string(rawText.Data))
	_, err := json.Marshal(rawText.Data)
	assert.NoError(t, err)

	type label string
	named := Decode[label](text)
	require.Nil(t, named.Error)
	assert.Equal(t, label("Organization deleted"), named.Data)

	notText := Decode[map[string]any](text)
	require.NotNil(t, notText.Error)
	assert.Equal(t, "200", notText.Error.Code)

	arrayVoid := Decode[struct{}](Response{Status: 200, Body: MustJSONBody([]int{1})})
	assert.Nil(t, arrayVoid.Error)
}

func TestVoidCall_TextBodySucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("Organization deleted"))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, AnonKey: "anon"})
	require.NoError(t, err)

	res, err := Delete[struct{}](context.Background(), c, "organizations/org-1")
	require.NoError(t, err)
	assert.Nil(t, res.Error)
	assert.Equal(t, 200, res.Status)

	raw, err := Get[json.RawMessage](context.Background(), c, "organizations/org-1")
	require.NoError(t, err)
	require.Nil(t, raw.Error)
	assert.JSONEq(t, `"Organization deleted"`, string(raw.Data))
}

func TestDecode_ErrorPassesThrough(t *testing.T) {
	rec := &apierr.Record{Code: "X", Message: "nope"}
	res := Decode[map[string]any](Response{Status: 418, Error: rec})
	assert.Equal(t, 418, res.Status)
	assert.Same(t, rec, res.Error)
}

func TestDo_PropagatesSessionSignal(t *testing.T) {
	s := SenderFunc(func(context.Context, string, Options) (Response, error) {
		return Response{}, apierr.NewSessionRequired("")
	})

	_, err := Get[any](context.Background(), s, "x")

	assert.True(t, apierr.IsSessionRequired(err))
	assert.Equal(t, "Authentication required", err.Error())
}

func TestPath(t *testing.T) {
	assert.Equal(t, "organizations/org%201/members", Path("organizations", "org 1", "members"))
	assert.Equal(t, "organizations/a%2Fb", Path("/organizations/", "a/b"))
	assert.Equal(t, "organizations", Path("organizations", ""))
}
