// ABOUTME: Tests for the notifications sub-client with a fake streamer and recording sender
// ABOUTME: Covers REST calls, subscription keys, decoding, dedupe and error forwarding

package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/edgecall/internal/apiclient/apiclienttest"
	"github.com/2389/edgecall/internal/dedupe"
	"github.com/2389/edgecall/internal/stream"
)

type fakeStreamer struct {
	subs         []stream.Subscription
	cbs          []stream.Callbacks
	disconnected []string
	refuse       bool
}

func (f *fakeStreamer) Connect(sub stream.Subscription, cb stream.Callbacks) stream.DisconnectFunc {
	if f.refuse {
		return nil
	}
	f.subs = append(f.subs, sub)
	f.cbs = append(f.cbs, cb)
	return func() { f.disconnected = append(f.disconnected, sub.Key) }
}

func (f *fakeStreamer) Disconnect(key string) {
	f.disconnected = append(f.disconnected, key)
}

func (f *fakeStreamer) push(t *testing.T, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	f.cbs[len(f.cbs)-1].OnMessage(raw)
}

func newClient(t *testing.T, rec *apiclienttest.Recorder, fs *fakeStreamer) *Client {
	t.Helper()
	c := New(Config{
		Sender:  rec,
		Streams: fs,
		Seen:    dedupe.New(dedupe.Options{TTL: time.Hour, MaxSize: 16, Interval: -1}),
	})
	t.Cleanup(c.Close)
	return c
}

func TestList(t *testing.T) {
	rec := apiclienttest.New().JSON(200, []map[string]any{{"id": "uuid-1", "type": "test", "read": false}})
	c := newClient(t, rec, &fakeStreamer{})

	res, err := c.List(context.Background())

	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "uuid-1", res.Data[0].ID)
	assert.Equal(t, "notifications", rec.Last().Endpoint)
}

func TestList_EmptyNormalized(t *testing.T) {
	c := newClient(t, apiclienttest.New(), &fakeStreamer{})

	res, err := c.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []Notification{}, res.Data)
}

func TestMarkRead(t *testing.T) {
	rec := apiclienttest.New()
	c := newClient(t, rec, &fakeStreamer{})

	_, err := c.MarkRead(context.Background(), "uuid-1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, rec.Last().Options.Method)
	assert.Equal(t, "notifications/uuid-1", rec.Last().Endpoint)
	assert.Equal(t, map[string]bool{"read": true}, rec.Last().Options.Body)

	_, err = c.MarkAllRead(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, rec.Last().Options.Method)
	assert.Equal(t, "notifications/mark-all-read", rec.Last().Endpoint)
}

func TestSubscribe_KeyAndEndpoint(t *testing.T) {
	fs := &fakeStreamer{}
	c := newClient(t, apiclienttest.New(), fs)

	stop := c.Subscribe("user-abc", Handler{OnNotification: func(Notification) {}})

	require.NotNil(t, stop)
	require.Len(t, fs.subs, 1)
	assert.Equal(t, "notifications:user-abc", fs.subs[0].Key)
	assert.Equal(t, DefaultEndpoint, fs.subs[0].Endpoint)
	assert.Equal(t, "user-abc", fs.subs[0].Params.Get("userId"))

	stop()
	c.Unsubscribe("user-abc")
	assert.Equal(t, []string{"notifications:user-abc", "notifications:user-abc"}, fs.disconnected)
}

func TestSubscribe_Refusals(t *testing.T) {
	fs := &fakeStreamer{}
	c := newClient(t, apiclienttest.New(), fs)

	assert.Nil(t, c.Subscribe("", Handler{OnNotification: func(Notification) {}}))
	assert.Nil(t, c.Subscribe("u1", Handler{}))
	assert.Empty(t, fs.subs)

	fs.refuse = true
	assert.Nil(t, c.Subscribe("u1", Handler{OnNotification: func(Notification) {}}))
}

func TestSubscribe_DeliversOnceByID(t *testing.T) {
	fs := &fakeStreamer{}
	c := newClient(t, apiclienttest.New(), fs)

	var got []Notification
	c.Subscribe("user-abc", Handler{OnNotification: func(n Notification) { got = append(got, n) }})

	note := map[string]any{"id": "noti-123", "user_id": "user-abc", "type": "test_event", "data": map[string]string{"message": "Hello SSE"}}
	fs.push(t, note)
	fs.push(t, note)
	fs.push(t, map[string]any{"id": "noti-124", "type": "test_event"})

	require.Len(t, got, 2)
	assert.Equal(t, "noti-123", got[0].ID)
	assert.JSONEq(t, `{"message":"Hello SSE"}`, string(got[0].Data))
	assert.Equal(t, "noti-124", got[1].ID)
}

func TestSubscribe_BadPayloadsReported(t *testing.T) {
	fs := &fakeStreamer{}
	c := newClient(t, apiclienttest.New(), fs)

	var errs []error
	delivered := 0
	c.Subscribe("u1", Handler{
		OnNotification: func(Notification) { delivered++ },
		OnError:        func(err error) { errs = append(errs, err) },
	})

	fs.cbs[0].OnMessage(json.RawMessage(`[1,2]`))
	fs.push(t, map[string]any{"type": "no-id"})
	fs.cbs[0].OnError(errors.New("transport dropped"))

	require.Len(t, errs, 3)
	assert.ErrorIs(t, errs[1], ErrMissingID)
	assert.EqualError(t, errs[2], "transport dropped")
	assert.Zero(t, delivered)
}

func TestSubscribe_LifecycleForwarded(t *testing.T) {
	fs := &fakeStreamer{}
	c := newClient(t, apiclienttest.New(), fs)

	opened, closed := false, false
	c.Subscribe("u1", Handler{
		OnNotification: func(Notification) {},
		OnOpen:         func() { opened = true },
		OnClose:        func() { closed = true },
	})
	fs.cbs[0].OnOpen()
	fs.cbs[0].OnClose()

	assert.True(t, opened)
	assert.True(t, closed)
}

func TestSubscribe_OptionalCallbacksMayBeNil(t *testing.T) {
	fs := &fakeStreamer{}
	c := newClient(t, apiclienttest.New(), fs)

	c.Subscribe("u1", Handler{OnNotification: func(Notification) {}})

	assert.NotPanics(t, func() {
		fs.cbs[0].OnOpen()
		fs.cbs[0].OnClose()
		fs.cbs[0].OnError(errors.New("boom"))
	})
}
