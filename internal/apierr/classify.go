// ABOUTME: Error classifier mapping arbitrary response bodies to a Record
// ABOUTME: Ordered chain of shape rules; pure, total, never panics on odd shapes

package apierr

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// messageFields are the keys, in priority order, that other services use to
// carry a human-readable message when they do not follow the code+message shape.
var messageFields = []string{"message", "msg", "error_description", "detail", "description"}

// rule inspects a decoded body and returns a record when its shape matches.
type rule struct {
	name  string
	match func(body any, status int) (*Record, bool)
}

// ladder is evaluated top to bottom; the first matching rule wins.
var ladder = []rule{
	{name: "code_and_message", match: matchCodeAndMessage},
	{name: "error_string", match: matchErrorString},
	{name: "message_field", match: matchMessageField},
	{name: "text", match: matchText},
	{name: "fallback", match: matchFallback},
}

// Classify maps a decoded response body and its protocol status to a Record.
// body is whatever the pipeline parsed: a map for JSON objects, a string for
// text bodies, nil for empty bodies, or any other JSON value.
func Classify(body any, status int) Record {
	r, _ := classify(body, status)
	return r
}

// classify also reports which rule fired, for logging and tests.
func classify(body any, status int) (Record, string) {
	for _, rl := range ladder {
		if rec, ok := rl.match(body, status); ok {
			return *rec, rl.name
		}
	}
	// matchFallback always matches; this is unreachable.
	return Record{Code: StatusCode(status), Message: ReasonPhrase(status)}, "fallback"
}

// ReasonPhrase returns the standard reason phrase for status, or a generic
// message when the status has none.
func ReasonPhrase(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return genericMessage
}

func matchCodeAndMessage(body any, status int) (*Record, bool) {
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, false
	}
	code, hasCode := obj["code"]
	msg, hasMsg := obj["message"]
	if !hasCode || !hasMsg {
		return nil, false
	}

	rec := &Record{
		Code:    stringify(code),
		Message: stringify(msg),
		Details: obj["details"],
	}
	if rec.Code == "" {
		rec.Code = StatusCode(status)
	}
	if strings.TrimSpace(rec.Message) == "" {
		rec.Message = ReasonPhrase(status)
	}
	return rec, true
}

func matchErrorString(body any, status int) (*Record, bool) {
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, false
	}
	msg, ok := obj["error"].(string)
	if !ok || strings.TrimSpace(msg) == "" {
		return nil, false
	}
	return &Record{Code: StatusCode(status), Message: msg}, true
}

func matchMessageField(body any, status int) (*Record, bool) {
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, false
	}

	// {"error": {"message": "..."}} is common from proxies in front of functions.
	if nested, ok := obj["error"].(map[string]any); ok {
		if msg := stringify(nested["message"]); strings.TrimSpace(msg) != "" {
			return &Record{Code: StatusCode(status), Message: msg}, true
		}
	}

	for _, field := range messageFields {
		v, present := obj[field]
		if !present {
			continue
		}
		msg := stringify(v)
		if strings.TrimSpace(msg) == "" {
			msg = ReasonPhrase(status)
		}
		return &Record{Code: StatusCode(status), Message: msg}, true
	}
	return nil, false
}

func matchText(body any, status int) (*Record, bool) {
	s, ok := body.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil, false
	}
	return &Record{Code: StatusCode(status), Message: s}, true
}

func matchFallback(_ any, status int) (*Record, bool) {
	return &Record{Code: StatusCode(status), Message: ReasonPhrase(status)}, true
}

// stringify renders a decoded JSON scalar as text. nil becomes "".
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
