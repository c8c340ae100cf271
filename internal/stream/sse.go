// ABOUTME: Server-sent event frame reader for push streams
// ABOUTME: Blank lines end a frame; multi-line data is joined with newlines

package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// maxFrameLine bounds a single SSE line.
const maxFrameLine = 1 << 20

// Event is one server-sent event frame.
type Event struct {
	Type string
	ID   string
	Data string
}

// readEvents reads frames from r and hands each to fn until fn returns false,
// the context ends, or the reader is exhausted. It returns nil on a clean
// stop by fn or a clean EOF.
func readEvents(ctx context.Context, r io.Reader, fn func(Event) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameLine)

	var (
		ev        Event
		dataLines []string
		seen      bool
	)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := strings.TrimSuffix(scanner.Text(), "\r")

		// Empty line signals end of event
		if line == "" {
			if seen {
				ev.Data = strings.Join(dataLines, "\n")
				if !fn(ev) {
					return nil
				}
			}
			ev = Event{}
			dataLines = nil
			seen = false
			continue
		}

		// Comments are keep-alives
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			ev.Type = strings.TrimSpace(value)
			seen = true
		case "data":
			dataLines = append(dataLines, value)
			seen = true
		case "id":
			ev.ID = value
			seen = true
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading event stream: %w", err)
	}
	return nil
}
