package task

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed transfer.
type ErrorKind int

const (
	// ErrorTransport covers connection failures, timeouts and anything
	// else without an HTTP status code.
	ErrorTransport ErrorKind = iota
	// ErrorHTTPStatus marks a response with a non-success status code.
	ErrorHTTPStatus
)

// ErrorInfo is the typed form of a per-item failure. The user-facing text
// is rendered by Message; downstream consumers pattern-match on that text,
// so its wording is a contract.
type ErrorInfo struct {
	Kind   ErrorKind
	Status int
	Detail string
}

// Message renders the classification exactly as it is surfaced per item.
func (e ErrorInfo) Message() string {
	if e.Kind == ErrorHTTPStatus {
		if e.Status == http.StatusNotFound {
			return "Download failed: Status code: 404 Not found"
		}
		return fmt.Sprintf("Download failed: Status code: %d", e.Status)
	}
	return "Download failed: " + e.Detail
}
