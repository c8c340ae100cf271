// ABOUTME: Normalized error record and well-known error codes for remote calls
// ABOUTME: Every failed result carries exactly one Record with a code and message

package apierr

import "strconv"

// Well-known codes produced on the client side or matched from the remote.
const (
	// CodeNetwork marks a call that never received a response.
	CodeNetwork = "NETWORK_ERROR"

	// CodeAuthRequired is the remote's "must re-authenticate" code.
	CodeAuthRequired = "AUTH_REQUIRED"
)

// genericMessage is the last-resort message when nothing better is known.
const genericMessage = "Unknown API Error"

// Record is the normalized error carried by a failed result.
type Record struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error implements the error interface so a Record can be logged or wrapped.
func (r *Record) Error() string {
	return r.Code + ": " + r.Message
}

// Network builds the record for a call that never reached the remote.
func Network(msg string) *Record {
	if msg == "" {
		msg = "Network error"
	}
	return &Record{Code: CodeNetwork, Message: msg}
}

// StatusCode renders a protocol status as a record code.
func StatusCode(status int) string {
	return strconv.Itoa(status)
}
