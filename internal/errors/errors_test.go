package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestErrorFormatting(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := NewNetworkError("doc-1", cause)

	if !strings.Contains(err.Error(), "NETWORK_FAILED") {
		t.Errorf("code missing from message: %q", err.Error())
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("cause missing from message: %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
}

func TestServerLogicErrorDefaultMessage(t *testing.T) {
	err := NewServerLogicError("doc-1", "")
	if err.Message != "Nieznany błąd" {
		t.Errorf("unexpected default message: %q", err.Message)
	}

	err = NewServerLogicError("doc-1", "dokument zablokowany")
	if err.Message != "dokument zablokowany" {
		t.Errorf("server message lost: %q", err.Message)
	}
}

func TestCodeOf(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"http status", NewHTTPStatusError("d", 502, "bad gateway"), ErrorHTTPStatus},
		{"validation", NewValidationError("puste"), ErrorValidation},
		{"poll timeout", NewPollTimeoutError("d", 300, 2*time.Second), ErrorPollTimeout},
		{"stream", NewStreamError("d", "BŁĄD: x"), ErrorStreamFailed},
		{"plain error", fmt.Errorf("zwykły"), ""},
		{"nil", nil, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CodeOf(tc.err); got != tc.want {
				t.Errorf("CodeOf = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestHTTPStatusErrorCarriesStatus(t *testing.T) {
	err := NewHTTPStatusError("doc-1", 404, "not found")
	if err.Status != 404 {
		t.Errorf("status: %d", err.Status)
	}
	if err.Details["body"] != "not found" {
		t.Errorf("body detail: %v", err.Details["body"])
	}
}
