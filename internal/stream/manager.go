// ABOUTME: Push-stream manager keeping at most one live stream per logical key
// ABOUTME: Connecting an existing key replaces the old stream; disconnect is idempotent

package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/2389/edgecall/internal/auth"
)

// closeEvent is the frame type the remote sends to end a stream gracefully.
const closeEvent = "close"

// maxErrorBody bounds how much of a refused open's body is kept.
const maxErrorBody = 4096

// Callbacks receive stream events. OnMessage is required; the rest are
// optional. Callbacks for one stream run sequentially on that stream's
// goroutine in arrival order.
type Callbacks struct {
	OnMessage func(json.RawMessage)
	OnError   func(error)
	OnOpen    func()
	OnClose   func()
}

// Subscription names the stream to open.
type Subscription struct {
	// Key is the single-flight unit. Connecting a key that already has a
	// live stream disconnects the old one first.
	Key      string
	Endpoint string
	Params   url.Values

	// Token overrides the manager's token source for this stream.
	Token string
}

// DisconnectFunc tears down the stream it was returned for. Calling it more
// than once, or after the stream was replaced, has no effect.
type DisconnectFunc func()

// Config configures a Manager.
type Config struct {
	FunctionsURL string
	Tokens       auth.TokenSource
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// Manager owns the registry of live streams.
type Manager struct {
	functionsURL string
	tokens       auth.TokenSource
	http         *http.Client
	logger       *slog.Logger

	mu      sync.Mutex
	handles map[string]*Handle
	closed  bool
}

// NewManager builds a Manager.
func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = auth.None
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Manager{
		functionsURL: strings.TrimRight(cfg.FunctionsURL, "/"),
		tokens:       tokens,
		http:         client,
		logger:       logger.With("component", "stream"),
		handles:      make(map[string]*Handle),
	}
}

// Connect opens a stream for sub and returns its disconnect function. It
// returns nil when the key is empty, OnMessage is nil, or the manager is
// closed. The connection is established in the background; setup failures
// are reported through OnError and leave nothing registered.
func (m *Manager) Connect(sub Subscription, cb Callbacks) DisconnectFunc {
	if sub.Key == "" || cb.OnMessage == nil {
		m.logger.Warn("refusing stream without key or message callback", "key", sub.Key)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		Key:      sub.Key,
		ID:       uuid.New().String(),
		Endpoint: sub.Endpoint,
		cb:       cb,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		cancel()
		m.logger.Warn("refusing stream on closed manager", "key", sub.Key)
		return nil
	}
	old := m.handles[sub.Key]
	m.handles[sub.Key] = h
	m.mu.Unlock()

	if old != nil {
		m.logger.Info("replacing stream", "key", sub.Key, "old_id", old.ID, "new_id", h.ID)
		old.stop()
	}

	m.logger.Debug("connecting stream", "key", sub.Key, "id", h.ID, "endpoint", sub.Endpoint)
	go m.run(h, sub)

	return func() { m.remove(h) }
}

// Disconnect tears down whatever stream is registered for key. It is a
// no-op when there is none.
func (m *Manager) Disconnect(key string) {
	m.mu.Lock()
	h, ok := m.handles[key]
	if ok {
		delete(m.handles, key)
	}
	m.mu.Unlock()

	if ok {
		m.logger.Info("stream disconnected", "key", key, "id", h.ID)
		h.stop()
	}
}

// Active reports whether a stream is registered for key.
func (m *Manager) Active(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.handles[key]
	return ok
}

// Keys returns the keys with registered streams.
func (m *Manager) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.handles))
	for k := range m.handles {
		keys = append(keys, k)
	}
	return keys
}

// Close disconnects every stream and refuses new ones.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	handles := m.handles
	m.handles = make(map[string]*Handle)
	m.mu.Unlock()

	for _, h := range handles {
		h.stop()
	}
	m.logger.Info("stream manager closed", "streams", len(handles))
}

// handle returns the handle registered for key.
func (m *Manager) handle(key string) *Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handles[key]
}

// remove unregisters h if it is still the live handle for its key, then
// stops it. A stale handle is stopped but never removes its replacement.
func (m *Manager) remove(h *Handle) {
	m.mu.Lock()
	if cur, ok := m.handles[h.Key]; ok && cur.ID == h.ID {
		delete(m.handles, h.Key)
	}
	m.mu.Unlock()
	h.stop()
}

// fail reports err and removes h.
func (m *Manager) fail(h *Handle, err error) {
	m.logger.Warn("stream failed", "key", h.Key, "id", h.ID, "error", err)
	h.emitError(err)
	m.remove(h)
}

func (m *Manager) streamURL(sub Subscription, token string) string {
	q := url.Values{}
	for k, vs := range sub.Params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("token", token)
	return m.functionsURL + "/" + strings.TrimLeft(sub.Endpoint, "/") + "?" + q.Encode()
}

func (m *Manager) run(h *Handle, sub Subscription) {
	defer close(h.done)

	token := sub.Token
	if token == "" {
		token, _ = m.tokens.Token(h.ctx)
	}
	if token == "" {
		m.fail(h, ErrNoCredential)
		return
	}

	req, err := http.NewRequestWithContext(h.ctx, http.MethodGet, m.streamURL(sub, token), nil)
	if err != nil {
		m.fail(h, fmt.Errorf("building stream request: %w", err))
		return
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := m.http.Do(req)
	if err != nil {
		if h.ctx.Err() != nil {
			return
		}
		m.fail(h, fmt.Errorf("opening stream: %w", err))
		return
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		m.fail(h, &OpenError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))})
		return
	}

	if !h.attach(resp.Body) {
		resp.Body.Close()
		return
	}
	defer resp.Body.Close()

	m.logger.Info("stream open", "key", h.Key, "id", h.ID)
	h.emitOpen()

	graceful := false
	err = readEvents(h.ctx, resp.Body, func(ev Event) bool {
		if ev.Type == closeEvent {
			graceful = true
			return false
		}
		if ev.Data == "" {
			return true
		}
		var msg json.RawMessage
		if err := json.Unmarshal([]byte(ev.Data), &msg); err != nil {
			m.logger.Warn("invalid stream message", "key", h.Key, "error", err)
			h.emitError(&MessageError{Raw: ev.Data, Err: err})
			return true
		}
		h.emitMessage(msg)
		return true
	})

	if graceful {
		m.logger.Info("stream closed by remote", "key", h.Key, "id", h.ID)
		h.emitClose()
		m.remove(h)
		return
	}
	if h.stopped() {
		return
	}
	if err == nil {
		err = ErrStreamEnded
	}
	m.fail(h, err)
}
