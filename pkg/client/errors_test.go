package client

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorClass
	}{
		{200, ""},
		{204, ""},
		{304, ""},
		{400, ErrorClassClient},
		{401, ErrorClassAuth},
		{403, ErrorClassAuth},
		{404, ErrorClassClient},
		{429, ErrorClassRateLimit},
		{500, ErrorClassServer},
		{503, ErrorClassServer},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.status), func(t *testing.T) {
			if got := classifyStatus(tt.status); got != tt.want {
				t.Errorf("classifyStatus(%d) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		errorClass ErrorClass
		expected   bool
	}{
		{ErrorClassAuth, false},
		{ErrorClassClient, false},
		{ErrorClassServer, true},
		{ErrorClassRateLimit, true},
		{ErrorClassNetwork, true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.errorClass), func(t *testing.T) {
			if got := shouldRetry(tt.errorClass); got != tt.expected {
				t.Errorf("shouldRetry(%q) = %v, want %v", tt.errorClass, got, tt.expected)
			}
		})
	}
}

func TestUpstreamError_Error(t *testing.T) {
	err := &UpstreamError{StatusCode: 500, ErrorClass: ErrorClassServer, Message: "500 Internal Server Error"}
	want := "upstream server error (status 500): 500 Internal Server Error"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	inner := errors.New("dial tcp: refused")
	wrapped := &UpstreamError{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: inner}
	if !errors.Is(wrapped, inner) {
		t.Error("UpstreamError should unwrap to inner error")
	}
}

func TestAuthStatus(t *testing.T) {
	auth := fmt.Errorf("batch 3: %w", &UpstreamError{StatusCode: 403, ErrorClass: ErrorClassAuth})
	if status, ok := AuthStatus(auth); !ok || status != 403 {
		t.Errorf("AuthStatus() = (%d, %v), want (403, true)", status, ok)
	}

	server := &UpstreamError{StatusCode: 502, ErrorClass: ErrorClassServer}
	if _, ok := AuthStatus(server); ok {
		t.Error("server error reported as auth error")
	}

	if _, ok := AuthStatus(errors.New("plain")); ok {
		t.Error("plain error reported as auth error")
	}
}
