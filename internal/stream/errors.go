// ABOUTME: Errors delivered to push-stream OnError callbacks
// ABOUTME: Streams never return errors to callers; they report them here

package stream

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredential means no bearer token was available when opening a stream.
	ErrNoCredential = errors.New("no credential available for stream")

	// ErrStreamEnded means the remote closed the stream without a close frame.
	ErrStreamEnded = errors.New("stream ended without close frame")
)

// OpenError reports a stream the remote refused to open.
type OpenError struct {
	Status int
	Body   string
}

func (e *OpenError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("stream open failed with status %d", e.Status)
	}
	return fmt.Sprintf("stream open failed with status %d: %s", e.Status, e.Body)
}

// MessageError reports a frame whose data was not valid JSON. The stream
// stays open.
type MessageError struct {
	Raw string
	Err error
}

func (e *MessageError) Error() string {
	return fmt.Sprintf("invalid stream message %q: %v", e.Raw, e.Err)
}

func (e *MessageError) Unwrap() error {
	return e.Err
}
