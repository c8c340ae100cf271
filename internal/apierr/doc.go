// Package apierr defines the error taxonomy shared by every edgecall client.
//
// # Overview
//
// Remote functions do not share an error schema. Some return JSON objects
// with a code and message, some return {"error": "..."}, some return plain
// text, and some return nothing at all. Classify folds all of these into a
// single Record so callers only ever inspect one shape.
//
// # Taxonomy
//
//   - Connectivity failure: Code NETWORK_ERROR, result status 0.
//   - Remote rejection: Code is the remote's code or the stringified status.
//   - Session required: *SessionRequiredError, returned as an error value
//     (never inside a Record) so it cannot be mistaken for ordinary data.
//
// # Classification ladder
//
// Classify evaluates an ordered list of shape rules and uses the first one
// that matches:
//
//  1. object with both code and message
//  2. object with a string "error" field
//  3. object with another message-bearing field
//  4. non-empty text body
//  5. status reason phrase, then a generic message
package apierr
