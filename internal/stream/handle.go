// ABOUTME: One live push stream and its callbacks
// ABOUTME: Stopping silences every later callback and releases the transport once

package stream

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
)

// Handle is the registry entry for one stream. ID distinguishes successive
// streams registered under the same Key.
type Handle struct {
	Key      string
	ID       string
	Endpoint string

	cb     Callbacks
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	body   io.Closer
	halted bool

	// deliverMu is held from the halted check through the callback.
	deliverMu  sync.Mutex
	delivering atomic.Bool
}

// Done is closed when the stream's goroutine has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// attach records the open response body. It reports false if the handle was
// stopped while the connection was being established.
func (h *Handle) attach(body io.Closer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.halted {
		return false
	}
	h.body = body
	return true
}

// stop cancels the stream and releases its transport synchronously. No
// callback starts after stop returns. A callback already running is not
// waited for, which lets a callback stop or replace its own stream.
func (h *Handle) stop() {
	if !h.delivering.Load() {
		h.deliverMu.Lock()
		defer h.deliverMu.Unlock()
	}
	body := h.halt()
	h.cancel()
	if body != nil {
		_ = body.Close()
	}
}

// halt marks the handle stopped. It returns the body only to the first caller.
func (h *Handle) halt() io.Closer {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.halted {
		return nil
	}
	h.halted = true
	return h.body
}

func (h *Handle) stopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.halted
}

// deliver runs fn unless the handle is stopped.
func (h *Handle) deliver(fn func()) {
	h.deliverMu.Lock()
	defer h.deliverMu.Unlock()
	if h.stopped() {
		return
	}
	h.delivering.Store(true)
	defer h.delivering.Store(false)
	fn()
}

func (h *Handle) emitOpen() {
	if h.cb.OnOpen != nil {
		h.deliver(h.cb.OnOpen)
	}
}

func (h *Handle) emitMessage(msg json.RawMessage) {
	h.deliver(func() { h.cb.OnMessage(msg) })
}

func (h *Handle) emitError(err error) {
	if h.cb.OnError != nil {
		h.deliver(func() { h.cb.OnError(err) })
	}
}

func (h *Handle) emitClose() {
	if h.cb.OnClose != nil {
		h.deliver(h.cb.OnClose)
	}
}
