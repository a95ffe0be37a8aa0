// internal/common/errors/handler.go
package errors

import (
	"context"
	"time"
)

// ErrorHandler normalizes task failures and applies the retry policy.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Normalize ensures we always have a StandardError.
func (h *ErrorHandler) Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Run executes fn, retrying with exponential backoff according to the
// error code's retry policy. Non-retryable errors return immediately.
func (h *ErrorHandler) Run(ctx context.Context, task string, fn func(ctx context.Context) error) error {
	var lastErr *StandardError
	backoff := time.Second

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = h.Normalize(err)
		retries := GetRetryCount(lastErr.Code)
		if !lastErr.Retryable || attempt >= retries {
			h.logError(task, lastErr, attempt)
			return lastErr
		}

		h.logger.Warn("Task attempt failed, retrying", map[string]interface{}{
			"task":      task,
			"attempt":   attempt + 1,
			"errorCode": string(lastErr.Code),
			"details":   lastErr.Details,
			"backoff":   backoff.String(),
		})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (h *ErrorHandler) logError(task string, stdErr *StandardError, attempts int) {
	h.logger.Error("Task failed", map[string]interface{}{
		"task":          task,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"attempts":      attempts + 1,
		"errorCategory": GetErrorCategory(stdErr.Code),
	})
}
