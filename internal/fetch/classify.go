package fetch

import (
	"errors"

	"stockpile/internal/task"
)

// Classify maps a transfer error to the typed form recorded on the
// result. Rendering to user-facing text happens at the boundary via
// ErrorInfo.Message.
func Classify(err error) *task.ErrorInfo {
	if err == nil {
		return nil
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return &task.ErrorInfo{Kind: task.ErrorHTTPStatus, Status: statusErr.Code}
	}

	return &task.ErrorInfo{Kind: task.ErrorTransport, Detail: err.Error()}
}
