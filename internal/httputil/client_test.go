package httputil

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestNewStandardClient_NilDefaults(t *testing.T) {
	t.Parallel()

	c := NewStandardClient(nil)
	if c.Client != http.DefaultClient {
		t.Error("nil client should fall back to http.DefaultClient")
	}
}

func TestNewStandardClient_Custom(t *testing.T) {
	t.Parallel()

	custom := &http.Client{}
	c := NewStandardClient(custom)
	if c.Client != custom {
		t.Error("custom client not retained")
	}
}

func TestMockHTTPClient_QueuedResponses(t *testing.T) {
	t.Parallel()

	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, `{"status":"ok"}`)
	mock.AddResponse(http.StatusBadRequest, `{"error":"bad frame"}`)

	resp, err := mock.Get("http://example.test/api/health")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	resp, err = mock.Post("http://example.test/api/detect", "application/json",
		strings.NewReader(`{"detections":[]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	if mock.RequestCount() != 2 {
		t.Errorf("request count = %d, want 2", mock.RequestCount())
	}
}

func TestMockHTTPClient_RecordsRequestBody(t *testing.T) {
	t.Parallel()

	mock := NewMockHTTPClient()
	_, err := mock.Post("http://example.test/api/detect", "application/json",
		strings.NewReader(`{"frame":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := string(mock.RequestBody(0)); got != `{"frame":1}` {
		t.Errorf("recorded body = %q", got)
	}
	if mock.RequestBody(5) != nil {
		t.Error("out-of-range body should be nil")
	}

	req := mock.Requests[0]
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}
}

func TestMockHTTPClient_ErrorResponse(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("connection refused")
	mock := NewMockHTTPClient()
	mock.AddErrorResponse(wantErr)

	_, err := mock.Get("http://example.test/api/health")
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
}

func TestMockHTTPClient_DefaultResponse(t *testing.T) {
	t.Parallel()

	mock := NewMockHTTPClient()
	resp, err := mock.Get("http://example.test/anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("default status = %d, want 200", resp.StatusCode)
	}
}
