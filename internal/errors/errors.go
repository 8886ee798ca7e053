package errors

import (
	"fmt"
	"time"
)

/**
 * Custom error types for the document viewer client
 *
 * Every failure crossing a package boundary is wrapped in a ClientError so
 * callers can branch on the code instead of matching message strings.
 */

// ErrorCode enum for structured error handling
type ErrorCode string

const (
	// Network / transport errors
	ErrorNetworkFailed ErrorCode = "NETWORK_FAILED"
	ErrorHTTPStatus    ErrorCode = "HTTP_STATUS"

	// Server returned {success:false, error}
	ErrorServerLogic ErrorCode = "SERVER_LOGIC"

	// Local validation (empty clipboard text, missing container, bad config)
	ErrorValidation ErrorCode = "VALIDATION"

	// Polling loops that hit their attempt ceiling
	ErrorPollTimeout ErrorCode = "POLL_TIMEOUT"

	// Streamed summary chunk carried an error prefix
	ErrorStreamFailed ErrorCode = "STREAM_FAILED"
)

// ClientError represents a structured client-side error
type ClientError struct {
	Code      ErrorCode
	Message   string
	DocID     string
	Status    int // HTTP status, when relevant
	Timestamp time.Time
	Details   map[string]interface{}
	Cause     error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Factory functions for common errors

func NewNetworkError(docID string, cause error) *ClientError {
	return &ClientError{
		Code:      ErrorNetworkFailed,
		Message:   "Request to server failed",
		DocID:     docID,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewHTTPStatusError(docID string, status int, body string) *ClientError {
	return &ClientError{
		Code:      ErrorHTTPStatus,
		Message:   fmt.Sprintf("HTTP %d", status),
		DocID:     docID,
		Status:    status,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"body": body,
		},
	}
}

func NewServerLogicError(docID string, serverMessage string) *ClientError {
	msg := serverMessage
	if msg == "" {
		msg = "Nieznany błąd"
	}
	return &ClientError{
		Code:      ErrorServerLogic,
		Message:   msg,
		DocID:     docID,
		Timestamp: time.Now(),
	}
}

func NewValidationError(message string) *ClientError {
	return &ClientError{
		Code:      ErrorValidation,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func NewPollTimeoutError(id string, attempts int, interval time.Duration) *ClientError {
	return &ClientError{
		Code:      ErrorPollTimeout,
		Message:   fmt.Sprintf("Polling gave up after %d attempts", attempts),
		DocID:     id,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"attempts": attempts,
			"interval": interval.String(),
		},
	}
}

func NewStreamError(docID string, chunk string) *ClientError {
	return &ClientError{
		Code:      ErrorStreamFailed,
		Message:   chunk,
		DocID:     docID,
		Timestamp: time.Now(),
	}
}

// CodeOf returns the ErrorCode of err when it is a ClientError, or an empty
// code otherwise.
func CodeOf(err error) ErrorCode {
	if ce, ok := err.(*ClientError); ok {
		return ce.Code
	}
	return ""
}
