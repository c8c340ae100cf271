// ABOUTME: Notifications sub-client: list and mark-read calls plus a live push subscription
// ABOUTME: Pushed notifications are decoded, deduplicated by ID and handed to the subscriber

// Package notifications reads a user's notifications and follows new ones
// over a push stream.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/2389/edgecall/internal/apiclient"
	"github.com/2389/edgecall/internal/dedupe"
	"github.com/2389/edgecall/internal/stream"
)

const base = "notifications"

// DefaultEndpoint is the push endpoint used when none is configured.
const DefaultEndpoint = "notifications-stream"

// ErrMissingID is reported for a pushed notification without an id.
var ErrMissingID = errors.New("notification has no id")

// Notification is one user notification.
type Notification struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"created_at"`
}

// Streamer opens keyed push streams. *stream.Manager implements it.
type Streamer interface {
	Connect(sub stream.Subscription, cb stream.Callbacks) stream.DisconnectFunc
	Disconnect(key string)
}

// Handler receives pushed notifications. OnNotification is required.
type Handler struct {
	OnNotification func(Notification)
	OnError        func(error)
	OnOpen         func()
	OnClose        func()
}

// Config configures a Client.
type Config struct {
	Sender   apiclient.Sender
	Streams  Streamer
	Endpoint string
	Seen     *dedupe.Cache
	Logger   *slog.Logger
}

// Client is the notifications sub-client.
type Client struct {
	sender   apiclient.Sender
	streams  Streamer
	endpoint string
	seen     *dedupe.Cache
	logger   *slog.Logger
}

// New builds a Client. A nil Seen cache gets a default one.
func New(cfg Config) *Client {
	c := &Client{
		sender:   cfg.Sender,
		streams:  cfg.Streams,
		endpoint: cfg.Endpoint,
		seen:     cfg.Seen,
		logger:   cfg.Logger,
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.seen == nil {
		c.seen = dedupe.New(dedupe.Options{})
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "notifications")
	return c
}

// Key is the stream key for userID's notifications.
func Key(userID string) string {
	return "notifications:" + userID
}

// List returns the caller's notifications, never nil on success.
func (c *Client) List(ctx context.Context) (apiclient.Result[[]Notification], error) {
	res, err := apiclient.Get[[]Notification](ctx, c.sender, base)
	if err != nil {
		return res, err
	}
	if res.OK() && res.Data == nil {
		res.Data = []Notification{}
	}
	return res, nil
}

// MarkRead marks one notification read.
func (c *Client) MarkRead(ctx context.Context, id string) (apiclient.Result[struct{}], error) {
	return apiclient.Put[struct{}](ctx, c.sender, apiclient.Path(base, id), map[string]bool{"read": true})
}

// MarkAllRead marks every notification read.
func (c *Client) MarkAllRead(ctx context.Context) (apiclient.Result[struct{}], error) {
	return apiclient.Post[struct{}](ctx, c.sender, apiclient.Path(base, "mark-all-read"), nil)
}

// Subscribe follows userID's notifications. Subscribing again for the same
// user replaces the earlier subscription. It returns nil when userID is
// empty, h has no OnNotification, or the stream could not be registered.
func (c *Client) Subscribe(userID string, h Handler) stream.DisconnectFunc {
	if userID == "" || h.OnNotification == nil {
		c.logger.Warn("refusing notification subscription", "user_id", userID)
		return nil
	}

	stop := c.streams.Connect(stream.Subscription{
		Key:      Key(userID),
		Endpoint: c.endpoint,
		Params:   url.Values{"userId": {userID}},
	}, stream.Callbacks{
		OnMessage: func(raw json.RawMessage) { c.deliver(raw, h) },
		OnError: func(err error) {
			c.logger.Warn("notification stream error", "user_id", userID, "error", err)
			if h.OnError != nil {
				h.OnError(err)
			}
		},
		OnOpen: func() {
			c.logger.Info("subscribed to notifications", "user_id", userID)
			if h.OnOpen != nil {
				h.OnOpen()
			}
		},
		OnClose: func() {
			c.logger.Info("notification stream closed by remote", "user_id", userID)
			if h.OnClose != nil {
				h.OnClose()
			}
		},
	})
	if stop == nil {
		c.logger.Error("notification subscription was not registered", "user_id", userID)
	}
	return stop
}

// Unsubscribe stops following userID's notifications.
func (c *Client) Unsubscribe(userID string) {
	c.streams.Disconnect(Key(userID))
}

// Close releases the dedupe cache.
func (c *Client) Close() {
	c.seen.Close()
}

func (c *Client) deliver(raw json.RawMessage, h Handler) {
	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		c.report(h, fmt.Errorf("decoding notification: %w", err))
		return
	}
	if n.ID == "" {
		c.report(h, ErrMissingID)
		return
	}
	if c.seen.Seen(n.ID) {
		c.logger.Warn("dropping duplicate notification", "id", n.ID)
		return
	}
	h.OnNotification(n)
}

func (c *Client) report(h Handler, err error) {
	c.logger.Warn("bad notification", "error", err)
	if h.OnError != nil {
		h.OnError(err)
	}
}
