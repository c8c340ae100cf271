// ABOUTME: Rendering of call results for the terminal
// ABOUTME: Successes print indented JSON; failures print the error record with its status

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/edgecall/internal/apiclient"
	"github.com/2389/edgecall/internal/apierr"
)

// errCallFailed is returned after a failed result has been printed.
var errCallFailed = errors.New("call failed")

// printResult writes the result to stdout, or its error record to stderr.
// The session-required signal is passed through to main untouched.
func printResult[T any](res apiclient.Result[T], err error) error {
	if err != nil {
		return err
	}
	if !res.OK() {
		printRecord(os.Stderr, res.Status, res.Error)
		return errCallFailed
	}
	return printJSON(os.Stdout, res.Status, res.Data)
}

func printJSON(w io.Writer, status int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		buf.Reset()
		buf.Write(data)
	}

	if !flags.JSON {
		green := color.New(color.FgGreen)
		green.Fprint(w, "    ▶ ")
		fmt.Fprintf(w, "status %d\n", status)
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

func printRecord(w io.Writer, status int, rec *apierr.Record) {
	if flags.JSON {
		_ = json.NewEncoder(w).Encode(struct {
			Status int            `json:"status"`
			Error  *apierr.Record `json:"error"`
		}{status, rec})
		return
	}

	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	red.Fprint(w, "    ✗ ")
	if status == 0 {
		fmt.Fprint(w, "no response ")
	} else {
		fmt.Fprintf(w, "status %d ", status)
	}
	yellow.Fprintf(w, "%s", rec.Code)
	fmt.Fprintf(w, ": %s\n", rec.Message)
	if rec.Details != nil {
		if data, err := json.Marshal(rec.Details); err == nil {
			fmt.Fprintf(w, "      details: %s\n", data)
		}
	}
}

// parsePayload decodes a JSON argument. An empty argument means no payload.
func parsePayload(arg string) (any, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, nil
	}
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading payload from stdin: %w", err)
		}
		arg = string(data)
	}
	var v any
	if err := json.Unmarshal([]byte(arg), &v); err != nil {
		return nil, fmt.Errorf("payload is not valid JSON: %w", err)
	}
	return v, nil
}

// printJSONLine writes v as one compact JSON line, for streaming output.
func printJSONLine(v any) error {
	return json.NewEncoder(os.Stdout).Encode(v)
}
