// ABOUTME: Tests for the push-stream manager against a flushing httptest server
// ABOUTME: Covers open, ordering, bad frames, replacement, disconnect and remote close

package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/edgecall/internal/auth"
)

const wait = 2 * time.Second

// endStream tells the server handler to return, ending the response.
const endStream = "\x00end"

type sseConn struct {
	query  url.Values
	frames chan string
	gone   chan struct{}
}

type sseServer struct {
	*httptest.Server
	status int
	conns  chan *sseConn
	quit   chan struct{}
}

func newSSEServer(t *testing.T, status int) *sseServer {
	t.Helper()
	s := &sseServer{status: status, conns: make(chan *sseConn, 8), quit: make(chan struct{})}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.status != http.StatusOK {
			http.Error(w, "nope", s.status)
			return
		}
		c := &sseConn{query: r.URL.Query(), frames: make(chan string, 16), gone: make(chan struct{})}
		defer close(c.gone)

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)
		flusher.Flush()
		s.conns <- c

		for {
			select {
			case frame := <-c.frames:
				if frame == endStream {
					return
				}
				_, _ = fmt.Fprint(w, frame)
				flusher.Flush()
			case <-r.Context().Done():
				return
			case <-s.quit:
				return
			}
		}
	}))
	t.Cleanup(func() {
		close(s.quit)
		s.CloseClientConnections()
		s.Close()
	})
	return s
}

func (s *sseServer) next(t *testing.T) *sseConn {
	t.Helper()
	select {
	case c := <-s.conns:
		return c
	case <-time.After(wait):
		t.Fatal("no stream connection arrived")
		return nil
	}
}

type recorder struct {
	messages chan json.RawMessage
	errs     chan error
	opens    chan struct{}
	closes   chan struct{}
}

func newRecorder() *recorder {
	return &recorder{
		messages: make(chan json.RawMessage, 16),
		errs:     make(chan error, 16),
		opens:    make(chan struct{}, 16),
		closes:   make(chan struct{}, 16),
	}
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnMessage: func(m json.RawMessage) { r.messages <- m },
		OnError:   func(err error) { r.errs <- err },
		OnOpen:    func() { r.opens <- struct{}{} },
		OnClose:   func() { r.closes <- struct{}{} },
	}
}

func (r *recorder) message(t *testing.T) string {
	t.Helper()
	select {
	case m := <-r.messages:
		return string(m)
	case <-time.After(wait):
		t.Fatal("no message")
		return ""
	}
}

func (r *recorder) err(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.errs:
		return err
	case <-time.After(wait):
		t.Fatal("no error")
		return nil
	}
}

func newTestManager(t *testing.T, baseURL string, tokens auth.TokenSource) *Manager {
	t.Helper()
	m := NewManager(Config{FunctionsURL: baseURL + "/functions/v1", Tokens: tokens})
	t.Cleanup(m.Close)
	return m
}

func TestConnect_OpensAndDeliversInOrder(t *testing.T) {
	srv := newSSEServer(t, http.StatusOK)
	m := newTestManager(t, srv.URL, auth.Static("tok"))
	rec := newRecorder()

	stop := m.Connect(Subscription{
		Key:      "notifications:u1",
		Endpoint: "notifications-stream",
		Params:   url.Values{"userId": {"u1"}},
	}, rec.callbacks())
	require.NotNil(t, stop)

	c := srv.next(t)
	assert.Equal(t, "tok", c.query.Get("token"))
	assert.Equal(t, "u1", c.query.Get("userId"))

	select {
	case <-rec.opens:
	case <-time.After(wait):
		t.Fatal("OnOpen not called")
	}

	c.frames <- ": keep-alive\n\n"
	c.frames <- "data: {\"n\":1}\n\n"
	c.frames <- "event: message\ndata: {\"n\":2}\n\n"

	assert.JSONEq(t, `{"n":1}`, rec.message(t))
	assert.JSONEq(t, `{"n":2}`, rec.message(t))
	assert.Len(t, rec.opens, 0)
	assert.True(t, m.Active("notifications:u1"))
}

func TestConnect_BadJSONKeepsConnection(t *testing.T) {
	srv := newSSEServer(t, http.StatusOK)
	m := newTestManager(t, srv.URL, auth.Static("tok"))
	rec := newRecorder()

	m.Connect(Subscription{Key: "k", Endpoint: "s"}, rec.callbacks())
	c := srv.next(t)

	c.frames <- "data: not json\n\n"
	var msgErr *MessageError
	require.ErrorAs(t, rec.err(t), &msgErr)
	assert.Equal(t, "not json", msgErr.Raw)

	c.frames <- "data: {\"ok\":true}\n\n"
	assert.JSONEq(t, `{"ok":true}`, rec.message(t))
	assert.True(t, m.Active("k"))
}

func TestConnect_ReplacesExistingKey(t *testing.T) {
	srv := newSSEServer(t, http.StatusOK)
	m := newTestManager(t, srv.URL, auth.Static("tok"))
	first, second := newRecorder(), newRecorder()

	stopFirst := m.Connect(Subscription{Key: "k", Endpoint: "s"}, first.callbacks())
	c1 := srv.next(t)
	old := m.handle("k")
	require.NotNil(t, old)

	stopSecond := m.Connect(Subscription{Key: "k", Endpoint: "s"}, second.callbacks())
	require.NotNil(t, stopSecond)
	c2 := srv.next(t)

	select {
	case <-c1.gone:
	case <-time.After(wait):
		t.Fatal("old stream was not torn down")
	}
	assert.True(t, old.stopped())
	assert.Len(t, m.Keys(), 1)
	assert.NotEqual(t, old.ID, m.handle("k").ID)

	// The stale disconnect must not touch the replacement.
	stopFirst()
	assert.True(t, m.Active("k"))

	c2.frames <- "data: {\"from\":\"second\"}\n\n"
	assert.JSONEq(t, `{"from":"second"}`, second.message(t))
	assert.Len(t, first.messages, 0)
	assert.Len(t, first.errs, 0)
}

func TestDisconnect_Idempotent(t *testing.T) {
	srv := newSSEServer(t, http.StatusOK)
	m := newTestManager(t, srv.URL, auth.Static("tok"))
	rec := newRecorder()

	stop := m.Connect(Subscription{Key: "k", Endpoint: "s"}, rec.callbacks())
	c := srv.next(t)

	stop()
	stop()
	m.Disconnect("k")
	m.Disconnect("never-connected")

	select {
	case <-c.gone:
	case <-time.After(wait):
		t.Fatal("transport not released")
	}
	assert.False(t, m.Active("k"))
	assert.Len(t, rec.errs, 0)
	assert.Len(t, rec.closes, 0)
}

func TestConnect_NoCredential(t *testing.T) {
	srv := newSSEServer(t, http.StatusOK)
	m := newTestManager(t, srv.URL, auth.None)
	rec := newRecorder()

	stop := m.Connect(Subscription{Key: "k", Endpoint: "s"}, rec.callbacks())
	require.NotNil(t, stop)

	assert.ErrorIs(t, rec.err(t), ErrNoCredential)
	require.Eventually(t, func() bool { return !m.Active("k") }, wait, 10*time.Millisecond)
	assert.Len(t, srv.conns, 0)
}

func TestConnect_SubscriptionTokenOverride(t *testing.T) {
	srv := newSSEServer(t, http.StatusOK)
	m := newTestManager(t, srv.URL, auth.None)

	m.Connect(Subscription{Key: "k", Endpoint: "s", Token: "explicit"}, newRecorder().callbacks())

	c := srv.next(t)
	assert.Equal(t, "explicit", c.query.Get("token"))
}

func TestConnect_OpenRefused(t *testing.T) {
	srv := newSSEServer(t, http.StatusUnauthorized)
	m := newTestManager(t, srv.URL, auth.Static("tok"))
	rec := newRecorder()

	m.Connect(Subscription{Key: "k", Endpoint: "s"}, rec.callbacks())

	var openErr *OpenError
	require.ErrorAs(t, rec.err(t), &openErr)
	assert.Equal(t, http.StatusUnauthorized, openErr.Status)
	require.Eventually(t, func() bool { return !m.Active("k") }, wait, 10*time.Millisecond)
	assert.Len(t, rec.opens, 0)
}

func TestConnect_CloseFrameEndsGracefully(t *testing.T) {
	srv := newSSEServer(t, http.StatusOK)
	m := newTestManager(t, srv.URL, auth.Static("tok"))
	rec := newRecorder()

	m.Connect(Subscription{Key: "k", Endpoint: "s"}, rec.callbacks())
	c := srv.next(t)

	c.frames <- "event: close\ndata: {}\n\n"

	select {
	case <-rec.closes:
	case <-time.After(wait):
		t.Fatal("OnClose not called")
	}
	require.Eventually(t, func() bool { return !m.Active("k") }, wait, 10*time.Millisecond)
	assert.Len(t, rec.errs, 0)
}

func TestConnect_RemoteEOFRemovesHandle(t *testing.T) {
	srv := newSSEServer(t, http.StatusOK)
	m := newTestManager(t, srv.URL, auth.Static("tok"))
	rec := newRecorder()

	m.Connect(Subscription{Key: "k", Endpoint: "s"}, rec.callbacks())
	c := srv.next(t)

	c.frames <- endStream

	assert.True(t, errors.Is(rec.err(t), ErrStreamEnded))
	require.Eventually(t, func() bool { return !m.Active("k") }, wait, 10*time.Millisecond)
}

func TestConnect_RefusesInvalidSubscriptions(t *testing.T) {
	m := NewManager(Config{FunctionsURL: "http://127.0.0.1:1/functions/v1", Tokens: auth.Static("tok")})

	assert.Nil(t, m.Connect(Subscription{Endpoint: "s"}, newRecorder().callbacks()))
	assert.Nil(t, m.Connect(Subscription{Key: "k", Endpoint: "s"}, Callbacks{}))

	m.Close()
	assert.Nil(t, m.Connect(Subscription{Key: "k", Endpoint: "s"}, newRecorder().callbacks()))
	assert.Empty(t, m.Keys())
}

func TestClose_StopsEveryStream(t *testing.T) {
	srv := newSSEServer(t, http.StatusOK)
	m := newTestManager(t, srv.URL, auth.Static("tok"))

	var wg sync.WaitGroup
	for _, key := range []string{"a", "b"} {
		m.Connect(Subscription{Key: key, Endpoint: "s"}, newRecorder().callbacks())
	}
	conns := []*sseConn{srv.next(t), srv.next(t)}

	m.Close()

	for _, c := range conns {
		wg.Add(1)
		go func(c *sseConn) {
			defer wg.Done()
			<-c.gone
		}(c)
	}
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(wait):
		t.Fatal("streams still open after Close")
	}
	assert.Empty(t, m.Keys())
}
